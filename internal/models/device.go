package models

import "time"

// DeviceStatus tracks whether a device is currently reporting
type DeviceStatus string

const (
	DeviceActive   DeviceStatus = "active"
	DeviceInactive DeviceStatus = "inactive"
)

// Valid reports whether s is a known device status
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceActive, DeviceInactive:
		return true
	}
	return false
}

// Device is a sensor or actuator installed in a room
type Device struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	RoomID      uint         `gorm:"not null;index" json:"room_id"`
	Name        string       `gorm:"size:100" json:"name"`
	DeviceUID   string       `gorm:"column:device_uid;size:100;not null;uniqueIndex" json:"device_uid"`
	Type        string       `gorm:"size:50" json:"type"`
	Status      DeviceStatus `gorm:"size:20;not null;default:active;index" json:"status"`
	InstalledAt time.Time    `json:"installed_at"`
	LastSeenAt  *time.Time   `json:"last_seen_at"`

	// Relationships
	Room *Room `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
}

// TableName specifies the table name for Device model
func (Device) TableName() string {
	return "devices"
}
