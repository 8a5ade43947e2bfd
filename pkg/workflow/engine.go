package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/eventbus"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/otelhelper"
	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/persistence/memory"
	"github.com/dukex/resumeflow/pkg/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	reasonCancelled      = "cancelled"
	reasonAgentNotFound  = "agent_not_found"
	reasonInputFailed    = "input_unavailable"
	reasonApplyFailed    = "apply_failed"
	reasonDegradedOutput = "degraded"
)

// ErrTooManyRuns is returned by Submit when every background slot is busy.
var ErrTooManyRuns = errors.New("too many concurrent runs")

// Request is the caller input for one tailoring run.
type Request struct {
	Profile        *models.Profile `json:"profile"                   validate:"required"`
	Instructions   string          `json:"instructions"              validate:"required"`
	JobDescription string          `json:"job_description,omitempty"`
}

// Engine runs the plan step by step over a run context. Runs are independent
// and may execute concurrently; steps within a run are strictly sequential.
type Engine struct {
	registry  *registry.Registry
	cfg       *config.Config
	plan      []Step
	retry     RetryPolicy
	store     persistence.RunStore
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger

	// slots caps concurrent Submit runs; nil means unlimited.
	slots chan struct{}
	wg    sync.WaitGroup
}

type Option func(*Engine)

func WithStatusStore(store persistence.RunStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithPlan(plan []Step) Option {
	return func(e *Engine) {
		e.plan = plan
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(e *Engine) {
		e.retry = policy
	}
}

// WithMaxConcurrentRuns caps the runs started by Submit that may execute at
// once. n <= 0 removes the cap.
func WithMaxConcurrentRuns(n int) Option {
	return func(e *Engine) {
		e.slots = nil
		if n > 0 {
			e.slots = make(chan struct{}, n)
		}
	}
}

func NewEngine(registry *registry.Registry, cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}

	e := &Engine{
		registry:  registry,
		cfg:       cfg,
		plan:      DefaultPlan(),
		retry:     NewRetryPolicy(cfg.Retry),
		store:     memory.NewStore(),
		publisher: eventbus.Discard{},
		tracer:    otelhelper.NoopTracer(),
		logger:    slog.Default(),
	}

	WithMaxConcurrentRuns(cfg.Workflow.MaxConcurrentRuns)(e)

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.With("module", "workflow_engine")

	return e
}

// Plan returns the steps the engine runs.
func (e *Engine) Plan() []Step {
	return e.plan
}

// Run builds a fresh run context from req and runs the plan to completion.
func (e *Engine) Run(ctx context.Context, req Request) *models.WorkflowResult {
	return e.RunWorkflow(ctx, models.NewRunContext(req.Profile, req.Instructions, req.JobDescription))
}

// RunWorkflow runs the plan over rc. Step failures never escape as errors:
// they are reported through a partial result.
func (e *Engine) RunWorkflow(ctx context.Context, rc *models.RunContext) *models.WorkflowResult {
	t := newTracker(rc, e.plan, e.store, e.publisher, e.logger)

	return e.run(ctx, rc, t)
}

// Submit starts a run in the background and returns its request id at once.
// The run outlives ctx cancellation; poll it with GetStepStatus. When every
// slot is busy it returns ErrTooManyRuns without starting anything.
func (e *Engine) Submit(ctx context.Context, req Request) (string, error) {
	if e.slots != nil {
		select {
		case e.slots <- struct{}{}:
		default:
			e.logger.WarnContext(ctx, "Rejecting run, all slots busy", "max_concurrent_runs", cap(e.slots))

			return "", ErrTooManyRuns
		}
	}

	rc := models.NewRunContext(req.Profile, req.Instructions, req.JobDescription)
	t := newTracker(rc, e.plan, e.store, e.publisher, e.logger)
	t.save(ctx)

	runCtx := context.WithoutCancel(ctx)

	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		defer e.release()

		e.run(runCtx, rc, t)
	}()

	return rc.RequestID(), nil
}

func (e *Engine) release() {
	if e.slots != nil {
		<-e.slots
	}
}

// Wait blocks until every submitted run has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// GetStepStatus returns the latest tracked status of a run.
func (e *Engine) GetStepStatus(ctx context.Context, requestID string) (*models.RunStatus, error) {
	return e.store.GetRun(ctx, requestID)
}

func (e *Engine) run(ctx context.Context, rc *models.RunContext, t *tracker) *models.WorkflowResult {
	logger := e.logger.With("request_id", rc.RequestID())

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.run",
		attribute.String(otelhelper.RequestIDKey, rc.RequestID()),
	)
	defer span.End()

	result := &models.WorkflowResult{
		RequestID: rc.RequestID(),
		Status:    models.WorkflowStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	logger.InfoContext(ctx, "Starting workflow run", "steps", len(e.plan), "has_job_description", rc.HasJobDescription())
	t.started(ctx, rc)

	degraded := false

	for _, step := range e.plan {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "Workflow cancelled", "step", step.Name, "error", err)
			t.transition(ctx, step, models.StepStatusFailed, 0, reasonCancelled)
			fail(result, step.Name, models.ErrorKindCancelled, reasonCancelled)

			return e.finish(ctx, rc, t, result, logger)
		}

		if step.skipped(rc) {
			logger.InfoContext(ctx, "Skipping step", "step", step.Name)
			t.transition(ctx, step, models.StepStatusSkipped, 0, "")

			continue
		}

		record, stepErr := e.runStep(ctx, step, rc, t, logger)
		if stepErr != nil {
			fail(result, step.Name, stepErr.Kind, stepErr.Reason)

			return e.finish(ctx, rc, t, result, logger)
		}

		degraded = degraded || record.Degraded
	}

	result.Status = models.WorkflowStatusCompleted
	if degraded {
		result.Status = models.WorkflowStatusDegraded
	}

	result.FinalProfile = rc.Profile
	result.TailoringNotes = rc.TailoringNotes

	return e.finish(ctx, rc, t, result, logger)
}

// runStep resolves, invokes and applies one step. A nil error means the step
// completed and its output was applied to rc.
func (e *Engine) runStep(ctx context.Context, step Step, rc *models.RunContext, t *tracker, logger *slog.Logger) (models.AgentInvocationRecord, *models.StepError) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.step",
		attribute.String(otelhelper.RequestIDKey, rc.RequestID()),
		attribute.String(otelhelper.StepNameKey, string(step.Name)),
		attribute.String(otelhelper.AgentNameKey, step.Agent),
	)
	defer span.End()

	logger = logger.With("step", step.Name, "agent", step.Agent)

	agent, err := e.registry.Resolve(step.Agent)
	if err != nil {
		logger.ErrorContext(ctx, "Agent not registered", "error", err)

		return e.abort(ctx, span, t, step, models.ErrorKindConfiguration, reasonAgentNotFound, err)
	}

	payload, err := agent.Input(rc)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build step input", "error", err)

		return e.abort(ctx, span, t, step, models.ErrorKindConfiguration, reasonInputFailed, err)
	}

	record := agents.Invoke(context.WithoutCancel(ctx), agent, payload, rc, agents.InvokeOptions{
		Step:   step.Name,
		Retry:  e.retry.Do,
		Logger: logger,
		OnTransition: func(status models.StepStatus, retryCount int) {
			if !status.IsTerminal() {
				t.transition(ctx, step, status, retryCount, "")
			}
		},
	})

	rc.AppendRecord(record)

	reason := record.ErrorReason
	if record.Degraded {
		reason = reasonDegradedOutput
	}

	span.SetAttributes(
		attribute.String(otelhelper.StepStatusKey, string(record.Status)),
		attribute.Int(otelhelper.RetryCountKey, record.RetryCount),
	)

	if record.Status != models.StepStatusCompleted {
		t.transition(ctx, step, record.Status, record.RetryCount, reason)
		otelhelper.SetError(span, record.Err(),
			attribute.String(otelhelper.ErrorKindKey, string(record.ErrorKind)),
			attribute.String(otelhelper.ErrorReasonKey, record.ErrorReason),
		)
		logger.WarnContext(ctx, "Step did not complete", "status", record.Status, "error_kind", record.ErrorKind, "reason", record.ErrorReason)

		return record, &models.StepError{Step: step.Name, Kind: record.ErrorKind, Reason: record.ErrorReason}
	}

	if err := agent.Apply(rc, record.Output); err != nil {
		logger.ErrorContext(ctx, "Failed to apply step output", "error", err)
		t.transition(ctx, step, record.Status, record.RetryCount, reasonApplyFailed)
		otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorReasonKey, reasonApplyFailed))

		return record, &models.StepError{Step: step.Name, Kind: models.ErrorKindConfiguration, Reason: reasonApplyFailed, Err: err}
	}

	t.transition(ctx, step, record.Status, record.RetryCount, reason)
	logger.InfoContext(ctx, "Step completed", "attempts", record.Attempts, "degraded", record.Degraded, "latency", record.Latency)

	return record, nil
}

func (e *Engine) abort(ctx context.Context, span trace.Span, t *tracker, step Step, kind models.ErrorKind, reason string, err error) (models.AgentInvocationRecord, *models.StepError) {
	t.transition(ctx, step, models.StepStatusFailed, 0, reason)
	otelhelper.SetError(span, err, attribute.String(otelhelper.ErrorKindKey, string(kind)))

	return models.AgentInvocationRecord{}, &models.StepError{
		Step:   step.Name,
		Kind:   kind,
		Reason: reason,
		Err:    fmt.Errorf("step %s: %w", step.Name, err),
	}
}

func (e *Engine) finish(ctx context.Context, rc *models.RunContext, t *tracker, result *models.WorkflowResult, logger *slog.Logger) *models.WorkflowResult {
	result.AuditTrail = rc.AuditTrail()
	result.FinishedAt = time.Now().UTC()

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String(otelhelper.WorkflowStatusKey, string(result.Status)))

	if result.Partial() {
		otelhelper.SetError(span, result.Err(),
			attribute.String(otelhelper.StepNameKey, string(result.FailedStep)),
			attribute.String(otelhelper.ErrorKindKey, string(result.ErrorKind)),
		)
	}

	t.finished(ctx, result)

	logger.InfoContext(ctx, "Workflow run finished",
		"status", result.Status,
		"steps_completed", result.CompletedSteps(),
		"failed_step", result.FailedStep,
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)

	return result
}

func fail(result *models.WorkflowResult, step models.StepName, kind models.ErrorKind, reason string) {
	result.Status = models.WorkflowStatusPartial
	result.FailedStep = step
	result.ErrorKind = kind
	result.FailureReason = reason
}
