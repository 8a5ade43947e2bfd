package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/resumeflow/pkg/eventbus"
	"github.com/dukex/resumeflow/pkg/events"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/otelhelper"
	"github.com/dukex/resumeflow/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracker mirrors step transitions of one run into the run store, the
// active span and the event publisher. It is owned by the run goroutine.
type tracker struct {
	status    *models.RunStatus
	store     persistence.RunStore
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func newTracker(rc *models.RunContext, plan []Step, store persistence.RunStore, publisher eventbus.EventPublisher, logger *slog.Logger) *tracker {
	now := time.Now().UTC()

	steps := make([]models.StepState, 0, len(plan))
	for _, step := range plan {
		steps = append(steps, models.StepState{
			Step:      step.Name,
			Agent:     step.Agent,
			Status:    models.StepStatusPending,
			UpdatedAt: now,
		})
	}

	return &tracker{
		status: &models.RunStatus{
			RequestID: rc.RequestID(),
			Status:    models.WorkflowStatusRunning,
			Steps:     steps,
			CreatedAt: rc.CreatedAt(),
			UpdatedAt: now,
		},
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

func (t *tracker) transition(ctx context.Context, step Step, status models.StepStatus, retryCount int, reason string) {
	now := time.Now().UTC()

	for i := range t.status.Steps {
		st := &t.status.Steps[i]
		if st.Step != step.Name {
			continue
		}

		if st.Status != status && !models.CanTransition(st.Status, status) {
			t.logger.WarnContext(ctx, "Unexpected step transition", "step", step.Name, "from", st.Status, "to", status)
		}

		st.Status = status
		st.RetryCount = retryCount
		st.Reason = reason
		st.UpdatedAt = now
	}

	t.status.CurrentStep = step.Name
	t.status.UpdatedAt = now
	t.save(ctx)

	trace.SpanFromContext(ctx).AddEvent("step.transition", trace.WithAttributes(
		attribute.String(otelhelper.StepNameKey, string(step.Name)),
		attribute.String(otelhelper.StepStatusKey, string(status)),
		attribute.Int(otelhelper.RetryCountKey, retryCount),
	))

	t.publish(ctx, events.StepStatusChanged{
		BaseEvent:  events.NewBaseEvent(events.StepStatusChangedEvent, t.status.RequestID),
		Step:       step.Name,
		Agent:      step.Agent,
		Status:     status,
		RetryCount: retryCount,
		Reason:     reason,
	})
}

func (t *tracker) started(ctx context.Context, rc *models.RunContext) {
	t.save(ctx)

	steps := make([]models.StepName, 0, len(t.status.Steps))
	for _, st := range t.status.Steps {
		steps = append(steps, st.Step)
	}

	t.publish(ctx, events.RunStarted{
		BaseEvent:         events.NewBaseEvent(events.RunStartedEvent, t.status.RequestID),
		Steps:             steps,
		HasJobDescription: rc.HasJobDescription(),
	})
}

func (t *tracker) finished(ctx context.Context, result *models.WorkflowResult) {
	t.status.Status = result.Status
	t.status.Result = result
	t.status.UpdatedAt = result.FinishedAt
	t.save(ctx)

	t.publish(ctx, events.RunFinished{
		BaseEvent:      events.NewBaseEvent(events.RunFinishedEvent, t.status.RequestID),
		Status:         result.Status,
		FailedStep:     result.FailedStep,
		ErrorKind:      result.ErrorKind,
		FailureReason:  result.FailureReason,
		StepsCompleted: result.CompletedSteps(),
		DurationMs:     result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	})
}

// save and publish log failures; status tracking never fails a run. Both
// outlive caller cancellation so a cancelled run still records its outcome.
func (t *tracker) save(ctx context.Context) {
	if err := t.store.SaveRun(context.WithoutCancel(ctx), t.status); err != nil {
		t.logger.WarnContext(ctx, "Failed to save run status", "error", err)
	}
}

func (t *tracker) publish(ctx context.Context, event eventbus.Event) {
	if err := t.publisher.Publish(context.WithoutCancel(ctx), t.status.RequestID, event); err != nil {
		t.logger.WarnContext(ctx, "Failed to publish run event", "event_type", event.GetType(), "error", err)
	}
}
