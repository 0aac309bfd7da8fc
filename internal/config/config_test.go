package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "thermotrack/pkg/errors"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, []string{"admin", "technician"}, cfg.Access.ElevatedRoles)
	assert.Equal(t, 24.0, cfg.Thresholds.TemperatureWarning)
	assert.Equal(t, "sensor.readings", cfg.AMQP.Queue)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_LATEST_TTL", "10s")
	t.Setenv("ELEVATED_ROLES", "admin")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"admin"}, cfg.Access.ElevatedRoles)
	assert.Contains(t, cfg.Database.DSN(), "port=5432")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "UnknownDriver", key: "DB_DRIVER", val: "oracle"},
		{name: "BadDuration", key: "ACCESS_TOKEN_EXPIRY", val: "soon"},
		{name: "CriticalBelowWarning", key: "ALERT_TEMP_CRITICAL", val: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			cfg, err := LoadConfig()
			assert.Nil(t, cfg)
			assert.Equal(t, apperrors.ErrorTypeConfiguration, apperrors.TypeOf(err))
		})
	}
}

func TestDatabaseConfig_MySQLDSN(t *testing.T) {
	c := DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", Database: "tt"}
	assert.Equal(t, "u:p@tcp(db:3306)/tt?charset=utf8mb4&parseTime=True&loc=UTC", c.DSN())
}

func TestBootstrapConfig_Enabled(t *testing.T) {
	assert.False(t, BootstrapConfig{AdminUsername: "root"}.Enabled())
	assert.True(t, BootstrapConfig{AdminUsername: "root", AdminEmail: "root@example.com", AdminPassword: "Secr3t!pass"}.Enabled())
}
