package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewValidationError("target_temperature is required")
	assert.Equal(t, "VALIDATION_ERROR: target_temperature is required", err.Error())

	cause := stderrors.New("connection refused")
	wrapped := NewDatabaseError("failed to insert reading", cause)
	assert.Equal(t, "DATABASE_ERROR: failed to insert reading (caused by: connection refused)", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestTypeOf_WrappedChain(t *testing.T) {
	err := fmt.Errorf("create request: %w", NewForbiddenError("no access to room"))

	assert.Equal(t, ErrorTypeForbidden, TypeOf(err))
	assert.True(t, IsForbiddenError(err))
	assert.False(t, IsNotFoundError(err))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
}

func TestErrorType_String(t *testing.T) {
	tests := map[ErrorType]string{
		ErrorTypeValidation:      "VALIDATION_ERROR",
		ErrorTypeNotFound:        "NOT_FOUND_ERROR",
		ErrorTypeForbidden:       "FORBIDDEN_ERROR",
		ErrorTypeConflict:        "CONFLICT_ERROR",
		ErrorTypeUnauthorized:    "UNAUTHORIZED_ERROR",
		ErrorTypeDatabase:        "DATABASE_ERROR",
		ErrorTypeExternalService: "EXTERNAL_SERVICE_ERROR",
		ErrorTypeConfiguration:   "CONFIGURATION_ERROR",
		ErrorTypeUnknown:         "UNKNOWN_ERROR",
	}
	for typ, want := range tests {
		assert.Equal(t, want, typ.String())
	}
}
