package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")

	log.Info("hidden")
	log.Warn("shown", slog.String("contract", "CT-1"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"contract":"CT-1"`)

	buf.Reset()
	NewWithWriter(&buf, "info", "text").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
