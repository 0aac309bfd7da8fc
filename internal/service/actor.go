package service

import "thermotrack/internal/models"

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID uint
	Role   models.Role
}
