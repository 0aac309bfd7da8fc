package database

import (
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"thermotrack/internal/config"
	"thermotrack/internal/models"
	apperrors "thermotrack/pkg/errors"
)

// Connect initializes and returns a GORM database connection
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN())
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}

	db, err := gorm.Open(dialector, GormConfig(cfg.Server.GinMode))
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to connect to database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to get database instance", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, apperrors.NewDatabaseError("failed to ping database", err)
	}

	log.Info("connected to database", "driver", cfg.Database.Driver, "host", cfg.Database.Host)

	return db, nil
}

// GormConfig is shared by every dialect, including the sqlite test store.
// TranslateError turns unique violations into gorm.ErrDuplicatedKey.
func GormConfig(ginMode string) *gorm.Config {
	gormLogger := logger.Default.LogMode(logger.Info)
	if ginMode == "release" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	return &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Migrate creates or updates every table, index and foreign key
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return apperrors.NewDatabaseError("failed to migrate schema", err)
	}
	return nil
}
