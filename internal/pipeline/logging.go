package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// LogFailure records a failed run with its kind and stage. Validation
// failures are user mistakes and are logged at Info, the rest at Error.
// attrs carry surface specific keys such as requestID or chatID.
func LogFailure(
	ctx context.Context,
	log *slog.Logger,
	err error,
	elapsed time.Duration,
	attrs ...any,
) {
	kind := KindOf(err)

	level := slog.LevelError
	if kind.IsValidation() {
		level = slog.LevelInfo
	}

	var stage string
	var pErr *Error
	if errors.As(err, &pErr) {
		stage = pErr.Stage.String()
	}

	args := append([]any{
		"error", err,
		"kind", kind.String(),
		"stage", stage,
		"durationSeconds", elapsed.Seconds(),
	}, attrs...)

	log.Log(ctx, level, "Pipeline failed", args...)
}
