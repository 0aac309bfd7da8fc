package models

import "time"

// RequestType is the kind of change a user asks for
type RequestType string

const (
	RequestTemperatureChange RequestType = "temperature_change"
	RequestFanAdjustment     RequestType = "fan_adjustment"
	RequestAirQuality        RequestType = "air_quality"
)

// Valid reports whether t is a known request type
func (t RequestType) Valid() bool {
	switch t {
	case RequestTemperatureChange, RequestFanAdjustment, RequestAirQuality:
		return true
	}
	return false
}

// Label is the human readable form used in notification titles
func (t RequestType) Label() string {
	switch t {
	case RequestTemperatureChange:
		return "Temperature change"
	case RequestFanAdjustment:
		return "Fan adjustment"
	case RequestAirQuality:
		return "Air quality"
	}
	return string(t)
}

// FanLevel is the direction of a fan adjustment
type FanLevel string

const (
	FanMoreAir FanLevel = "more_air"
	FanLessAir FanLevel = "less_air"
)

// Valid reports whether f is a known fan level
func (f FanLevel) Valid() bool {
	switch f {
	case FanMoreAir, FanLessAir:
		return true
	}
	return false
}

// RequestStatus is a state of the room condition request workflow
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusViewed    RequestStatus = "viewed"
	StatusApproved  RequestStatus = "approved"
	StatusDenied    RequestStatus = "denied"
	StatusCompleted RequestStatus = "completed"
)

// Valid reports whether s is a known status
func (s RequestStatus) Valid() bool {
	return s.rank() >= 0
}

// rank orders statuses along the workflow; approved and denied share a rank
func (s RequestStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusViewed:
		return 1
	case StatusApproved, StatusDenied:
		return 2
	case StatusCompleted:
		return 3
	}
	return -1
}

// Terminal reports whether no transition may leave s
func (s RequestStatus) Terminal() bool {
	return s == StatusDenied || s == StatusCompleted
}

// CanTransition reports whether the workflow allows moving from s to next.
// Moves only go forward, never leave a terminal state, and a denied
// request cannot be completed.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}

// NotificationType maps the status onto the notification palette
func (s RequestStatus) NotificationType() NotificationType {
	switch s {
	case StatusApproved, StatusCompleted:
		return NotificationSuccess
	case StatusDenied:
		return NotificationError
	default:
		return NotificationInfo
	}
}

// RoomConditionRequest is a user's ask to change a room's environment
type RoomConditionRequest struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	UserID              uint          `gorm:"not null;index" json:"user_id"`
	RoomID              uint          `gorm:"not null;index" json:"room_id"`
	RequestType         RequestType   `gorm:"size:30;not null" json:"request_type"`
	CurrentTemperature  *float64      `json:"current_temperature"`
	TargetTemperature   *float64      `json:"target_temperature"`
	FanLevelRequest     *FanLevel     `gorm:"size:20" json:"fan_level_request"`
	Notes               string        `gorm:"type:text" json:"notes"`
	Status              RequestStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	EstimatedCompletion *time.Time    `json:"estimated_completion"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Room *Room `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
}

// TableName specifies the table name for RoomConditionRequest model
func (RoomConditionRequest) TableName() string {
	return "room_condition_requests"
}
