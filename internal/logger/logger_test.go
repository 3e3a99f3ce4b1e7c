package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{SilentLevel, "SILENT"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, SilentLevel, ParseLevel("silent"))
	assert.Equal(t, InfoLevel, ParseLevel("info"))
	assert.Equal(t, InfoLevel, ParseLevel("bogus"))
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Debug("should not appear")
	l.Info("should not appear either")
	require.Equal(t, 0, buf.Len())

	l.Warn("visible")
	require.Greater(t, buf.Len(), 0)
}

func TestLoggerEmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel)

	l.Info("connected", String("endpoint", "wss://example"), Int("retry", 3), Bool("ack", true))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "connected", entry["message"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "wss://example", entry["endpoint"])
	assert.Equal(t, float64(3), entry["retry"])
	assert.Equal(t, true, entry["ack"])
}

func TestErrField(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel)

	l.Error("decrypt failed", Err(errors.New("boom")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

func TestWithFieldsMerges(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, DebugLevel).WithFields(String("conn_id", "abc"))
	base.Info("hello", String("extra", "1"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["conn_id"])
	assert.Equal(t, "1", entry["extra"])
}

func TestDiscardLoggerIsSilent(t *testing.T) {
	l := Discard()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
