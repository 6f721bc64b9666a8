package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   LogLevel
		want slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), string(tt.in))
	}
}

func TestNew(t *testing.T) {
	log := New(LoggerConfig{Level: LevelDebug, Format: FormatJSON})
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))

	log = New(LoggerConfig{Level: LevelError, Format: FormatText})
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
}

func TestAddRequestIDToContext(t *testing.T) {
	ctx := AddRequestIDToContext(context.Background(), "req-123")
	id, ok := ctx.Value(RequestIDKey).(string)
	require.True(t, ok)
	assert.Equal(t, "req-123", id)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, "wireguard-exporter", cfg.Component)
}
