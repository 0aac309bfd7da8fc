package models

import "time"

// Reading is one immutable sample reported by a device.
// Every measurement is optional; sensors only fill what they measure.
type Reading struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DeviceID       uint      `gorm:"not null;index:idx_readings_device_recorded,priority:1" json:"device_id"`
	Temperature    *float64  `json:"temperature"`
	Humidity       *float64  `json:"humidity"`
	Pressure       *float64  `json:"pressure"`
	LightLevel     *float64  `json:"light_level"`
	MotionDetected bool      `gorm:"default:false" json:"motion_detected"`
	RecordedAt     time.Time `gorm:"not null;index:idx_readings_device_recorded,priority:2" json:"recorded_at"`

	// Relationships
	Device *Device `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE" json:"device,omitempty"`
}

// TableName specifies the table name for Reading model
func (Reading) TableName() string {
	return "readings"
}

// AlertSeverity grades how urgent an alert is
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Valid reports whether s is a known severity
func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// NotificationType maps the severity onto the notification palette
func (s AlertSeverity) NotificationType() NotificationType {
	switch s {
	case SeverityCritical:
		return NotificationError
	case SeverityWarning:
		return NotificationWarning
	default:
		return NotificationInfo
	}
}

// Alert is raised when a reading crosses a threshold.
// RoomID and ReadingID survive the deletion of their targets as NULL.
type Alert struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	DeviceID  uint          `gorm:"not null;index" json:"device_id"`
	RoomID    *uint         `gorm:"index" json:"room_id"`
	ReadingID *uint         `gorm:"index" json:"reading_id"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Severity  AlertSeverity `gorm:"size:20;not null;default:info" json:"severity"`
	CreatedAt time.Time     `json:"created_at"`

	// Relationships
	Device  *Device  `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE" json:"-"`
	Room    *Room    `gorm:"foreignKey:RoomID;constraint:OnDelete:SET NULL" json:"-"`
	Reading *Reading `gorm:"foreignKey:ReadingID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for Alert model
func (Alert) TableName() string {
	return "alerts"
}
