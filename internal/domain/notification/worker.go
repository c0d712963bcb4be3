package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Worker processes queued events. Delivery itself is the Dispatcher's job;
// a task only fails when its payload is unusable or settings cannot be loaded,
// and failed tasks are never retried.
type Worker struct {
	dispatcher *Dispatcher
}

// NewWorker creates a new event worker.
func NewWorker(dispatcher *Dispatcher) *Worker {
	return &Worker{dispatcher: dispatcher}
}

// ProcessTask handles a dispatch task from the queue.
func (w *Worker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	payload, err := ParseDispatchEventPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	ev, err := payload.ToEvent()
	if err != nil {
		slog.Error("discarding invalid event", "kind", payload.Kind, "error", err)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	entries, err := w.dispatcher.Dispatch(ctx, ev)
	if err != nil {
		return fmt.Errorf("dispatching %s: %w", ev.StatusKey, err)
	}

	failed := 0
	for _, e := range entries {
		if e.Status == StatusFailure {
			failed++
		}
	}

	slog.Info("event processed",
		"kind", ev.Kind,
		"status_key", ev.StatusKey,
		"subject_id", ev.Context.SubjectID(),
		"attempts", len(entries),
		"failed", failed,
		"duration", time.Since(start),
	)

	return nil
}
