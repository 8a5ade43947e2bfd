package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/resumeflow/pkg/events"
)

// LogLifecycle registers handlers that log every run lifecycle event and
// starts consuming from sub. Delivery stops when ctx is done or the bus
// is closed.
func LogLifecycle(ctx context.Context, sub EventSubscriber, logger *slog.Logger) error {
	logger = logger.With("component", "lifecycle")

	handlers := map[events.EventType]EventHandler{
		events.RunStartedEvent: func(ctx context.Context, event any) error {
			e, ok := event.(*events.RunStarted)
			if !ok {
				return fmt.Errorf("unexpected %T for %s", event, events.RunStartedEvent)
			}

			logger.InfoContext(ctx, "Run started",
				"request_id", e.RequestID,
				"steps", len(e.Steps),
				"has_job_description", e.HasJobDescription)

			return nil
		},
		events.StepStatusChangedEvent: func(ctx context.Context, event any) error {
			e, ok := event.(*events.StepStatusChanged)
			if !ok {
				return fmt.Errorf("unexpected %T for %s", event, events.StepStatusChangedEvent)
			}

			logger.InfoContext(ctx, "Step status changed",
				"request_id", e.RequestID,
				"step", e.Step,
				"agent", e.Agent,
				"status", e.Status,
				"retry_count", e.RetryCount,
				"reason", e.Reason)

			return nil
		},
		events.RunFinishedEvent: func(ctx context.Context, event any) error {
			e, ok := event.(*events.RunFinished)
			if !ok {
				return fmt.Errorf("unexpected %T for %s", event, events.RunFinishedEvent)
			}

			level := slog.LevelInfo
			if e.FailureReason != "" {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "Run finished",
				"request_id", e.RequestID,
				"status", e.Status,
				"failed_step", e.FailedStep,
				"error_kind", e.ErrorKind,
				"failure_reason", e.FailureReason,
				"steps_completed", e.StepsCompleted,
				"duration_ms", e.DurationMs)

			return nil
		},
	}

	for eventType, handler := range handlers {
		if err := sub.Handle(eventType, handler); err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	return sub.Subscribe(ctx)
}
