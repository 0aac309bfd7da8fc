package repository

import (
	"errors"

	"gorm.io/gorm"

	apperrors "thermotrack/pkg/errors"
)

// translate maps driver errors onto the application taxonomy.
// With TranslateError enabled every dialect reports unique and foreign key
// violations through the gorm sentinels.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(entity + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewConflictError(entity + " already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewNotFoundError("referenced record for " + entity + " does not exist")
	default:
		return apperrors.NewDatabaseError(entity+" query failed", err)
	}
}

// affected turns a zero-row write into a not found error
func affected(result *gorm.DB, entity string) error {
	if result.Error != nil {
		return translate(result.Error, entity)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError(entity + " not found")
	}
	return nil
}
