package models

import "time"

// TemperatureUnit is the display unit chosen for a room
type TemperatureUnit string

const (
	UnitCelsius    TemperatureUnit = "celsius"
	UnitFahrenheit TemperatureUnit = "fahrenheit"
	UnitKelvin     TemperatureUnit = "kelvin"
)

// Valid reports whether u is a supported unit
func (u TemperatureUnit) Valid() bool {
	switch u {
	case UnitCelsius, UnitFahrenheit, UnitKelvin:
		return true
	}
	return false
}

// FromCelsius converts a stored Celsius value into the unit
func (u TemperatureUnit) FromCelsius(c float64) float64 {
	switch u {
	case UnitFahrenheit:
		return c*9/5 + 32
	case UnitKelvin:
		return c + 273.15
	default:
		return c
	}
}

// Setpoint bounds accepted for a room's default setpoint, in Celsius
const (
	MinSetpoint = 15.0
	MaxSetpoint = 30.0
)

// Room is a physical space owned by zero or one user.
// Rooms created by admins or technicians may have no owner.
type Room struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          *uint           `gorm:"uniqueIndex:idx_rooms_owner_name" json:"user_id"`
	Name            string          `gorm:"size:100;not null;uniqueIndex:idx_rooms_owner_name" json:"name"`
	Location        string          `gorm:"size:255" json:"location"`
	TemperatureUnit TemperatureUnit `gorm:"size:20;not null;default:celsius" json:"temperature_unit"`
	BMSZoneID       string          `gorm:"column:bms_zone_id;size:50" json:"bms_zone_id,omitempty"`
	DefaultSetpoint *float64        `json:"default_setpoint,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relationships
	Owner *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
}

// TableName specifies the table name for Room model
func (Room) TableName() string {
	return "rooms"
}

// UserRoom grants room visibility to a user who is not the owner
type UserRoom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_rooms_pair" json:"user_id"`
	RoomID    uint      `gorm:"not null;uniqueIndex:idx_user_rooms_pair;index" json:"room_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Room *Room `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
}

// TableName specifies the table name for UserRoom model
func (UserRoom) TableName() string {
	return "user_rooms"
}
