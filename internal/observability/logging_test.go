package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = WithBuildID(ctx, "b-1")
	ctx = WithStage(ctx, "render")
	ctx = WithEnvironment(ctx, "production")

	lc := GetContext(ctx)
	require.Equal(t, LogContext{BuildID: "b-1", Stage: "render", Environment: "production"}, lc)

	// a later stage replaces the earlier one without touching the parent
	next := WithStage(ctx, "write")
	require.Equal(t, "write", GetContext(next).Stage)
	require.Equal(t, "render", GetContext(ctx).Stage)
}

func TestLoggingWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), jsonLogger(&buf))
	ctx = WithBuildID(ctx, "b-2")
	ctx = WithStage(ctx, "load")

	InfoContext(ctx, "loaded", slog.Int("count", 3))
	DebugContext(ctx, "detail")
	WarnContext(ctx, "careful")
	ErrorContext(ctx, "broken")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	for _, l := range lines {
		require.Equal(t, "b-2", l["build_id"])
		require.Equal(t, "load", l["stage"])
	}
	require.InDelta(t, 3, lines[0]["count"], 0)
	require.Equal(t, "ERROR", lines[3]["level"])
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), jsonLogger(&buf))
	ctx = WithBuildID(ctx, "b-3")

	ContextLogger(ctx).Info("plain")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "b-3", lines[0]["build_id"])
}

func TestLoggerDefaults(t *testing.T) {
	require.Same(t, slog.Default(), Logger(context.Background()))
	ctx := WithLogger(context.Background(), nil)
	require.Same(t, slog.Default(), Logger(ctx))
}
