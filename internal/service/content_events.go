package service

import (
	"context"
	"log/slog"

	"github.com/inkwell-ai/inkwell-api/internal/events"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// contentCompletion builds the executor completion callback that announces a
// successful task's result on the event stream. Emission failures are logged
// and swallowed: asset tracking is a side path and must never reach back into
// the task outcome.
func contentCompletion(emitter events.EventEmitter, logger *slog.Logger, userID string) task.CompletionFunc {
	if emitter == nil {
		return nil
	}
	return func(ctx context.Context, snap task.Snapshot) {
		if snap.Status != task.StatusCompleted {
			return
		}
		event, err := events.NewContentEvent(snap.ID, snap.Type, userID, snap.Result)
		if err != nil {
			logger.Warn("failed to build content event",
				slog.String("task_id", snap.ID.String()),
				slog.String("error", err.Error()))
			return
		}
		if err := emitter.EmitEvent(ctx, event); err != nil {
			logger.Warn("content event emission failed",
				slog.String("task_id", snap.ID.String()),
				slog.String("error", err.Error()))
		}
	}
}
