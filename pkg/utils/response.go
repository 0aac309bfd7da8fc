package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "thermotrack/pkg/errors"
)

// SuccessResponse sends a standard success JSON response
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// CreatedResponse sends a standard success JSON response with 201
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// ErrorResponse sends a standard error JSON response
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// MessageResponse sends a simple message response
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// StatusFromError maps an application error type to an HTTP status
func StatusFromError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFromApp writes err with the status of its type. Infrastructure
// failures are reported without their cause and attached to the gin context.
func ErrorFromApp(c *gin.Context, err error) {
	status := StatusFromError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		ErrorResponse(c, status, "Internal server error")
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		ErrorResponse(c, status, appErr.Message)
		return
	}
	ErrorResponse(c, status, err.Error())
}
