package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestNew_WritesJSONAtLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Info("hidden")
	l.Warn("shown", slog.String("component", "test"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "test", entry["component"])
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	_, fallback := NewTestLogger(t)
	_, scoped := NewTestLogger(t)

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))

	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContextOrDefault(ctx, fallback))
	assert.Same(t, scoped, FromContext(ctx))

	assert.Same(t, ctx, WithLogger(ctx, nil), "nil logger leaves the context alone")
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
}

func TestTestLogBuffer_Entries(t *testing.T) {
	t.Parallel()

	buf, l := NewTestLogger(t)
	l.Debug("first", slog.Int("n", 1))
	l.Info("second")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0]["msg"])
	assert.InDelta(t, 1, entries[0]["n"], 0)
	assert.Equal(t, "second", entries[1]["msg"])
}
