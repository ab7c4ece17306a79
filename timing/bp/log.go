package bp

import (
	"context"
	"log/slog"
)

// LevelTrace is below slog.LevelDebug. Per-branch predictor messages are
// logged at this level.
const LevelTrace slog.Level = slog.LevelDebug - 4

func tracing() bool {
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

func trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
