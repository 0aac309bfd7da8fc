package models

// All lists every persisted model in dependency order for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&AuditLog{},
		&Room{},
		&UserRoom{},
		&Device{},
		&DeviceAPIKey{},
		&Reading{},
		&Alert{},
		&RoomConditionRequest{},
		&UserNotification{},
	}
}
