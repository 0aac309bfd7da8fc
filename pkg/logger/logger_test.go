package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewWithWriter_AddsServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{ServiceName: "thermotrack", Environment: "test", Level: "info"}, &buf)

	log.Debug("dropped")
	log.Info("reading stored", "device_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "thermotrack", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "reading stored", entry["msg"])
	assert.EqualValues(t, 7, entry["device_id"])
}
