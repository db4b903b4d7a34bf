package logging

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
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range tests {
		assert.Equalf(t, tc.want, ParseLevel(tc.in), "level %q", tc.in)
	}
}

func TestNew_WritesAllLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")
	ctx := context.Background()

	log.Debug(ctx, "trace detail", "unit", "u-1")
	log.Info(ctx, "committed", "accounts", 3)
	log.Warn(ctx, "slow store", "elapsed", "2s")
	log.Error(ctx, "rejected", "code", 6)

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "msg=committed")
	require.Contains(t, out, "accounts=3")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "code=6")
}

func TestNew_FiltersBelowConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.Info(ctx, "hidden")
	log.Warn(ctx, "visible")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "msg=visible")
}

func TestWith_AttachesPairsToEveryLine(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	ctx := context.Background()

	child := log.With("component", "bank", "unit", "u-9")
	child.Info(ctx, "first")
	child.Info(ctx, "second")

	out := buf.String()
	require.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("component=bank")))
	require.Contains(t, out, "unit=u-9")
}
