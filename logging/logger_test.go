package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestTickLogger_ScopedAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	scoped := l.WithComponent("runner").WithTick("abc", 42).WithEntity("W1N1")
	scoped.Info("tick started", "budget", 5000)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "tick started", lines[0]["msg"])
	assert.Equal(t, "runner", lines[0]["component"])
	assert.Equal(t, "abc", lines[0]["tick_id"])
	assert.EqualValues(t, 42, lines[0]["tick"])
	assert.Equal(t, "W1N1", lines[0]["entity"])
	assert.EqualValues(t, 5000, lines[0]["budget"])
}

func TestTickLogger_CloneDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})

	_ = base.WithContext("shard", 3)
	base.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "shard")
}

func TestTickLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.StartTimer("build")()
	l.ErrorWithStack(errors.New("boom"), "Shard failed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Shard failed", lines[0]["msg"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Contains(t, lines[0]["stack_trace"], "goroutine")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"verbose", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}

	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
	})
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

	l.Info("Tick completed", "budget", 4200)
	l.Debug("hidden")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Tick completed", lines[0]["msg"])
	assert.Equal(t, 4200.0, lines[0]["budget"])

	assert.NotNil(t, NewDefaultSlogLogger())
}
