package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	for _, format := range []string{"json", "text", "TEXT"} {
		logger := NewLogger("info", format)
		require.NotNil(t, logger, format)
		assert.Same(t, logger.Handler(), slog.Default().Handler(), format)
	}
}

func TestTextHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := newTextHandler(&buf, "warn")

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))

	slog.New(h).Warn("frame dropped", "session", "abc")
	assert.Contains(t, buf.String(), "frame dropped")
	assert.Contains(t, buf.String(), "abc")
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.Ticks.Inc()
	assert.NotSame(t, a.Ticks, b.Ticks)
}
