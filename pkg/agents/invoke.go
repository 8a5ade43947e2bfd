package agents

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/protocol"
)

// Attempt is one execution of an agent's external work.
type Attempt func(ctx context.Context) (any, error)

// Retrier runs attempt until it succeeds or gives up. onRetry is called
// before every attempt after the first. It returns the number of attempts
// made.
type Retrier func(ctx context.Context, attempt Attempt, onRetry func(attempt int, err error)) (any, int, error)

type InvokeOptions struct {
	Step         models.StepName
	Retry        Retrier
	OnTransition func(status models.StepStatus, retryCount int)
	// Logger is expected to carry the step and agent fields already.
	Logger       *slog.Logger
}

// Invoke runs agent over payload in the fixed order: input guardrails,
// input moderation, execute, output guardrails, output moderation and
// evaluation. The returned record is final; Invoke never returns an error.
func Invoke(ctx context.Context, agent protocol.Agent, payload any, rc *models.RunContext, opts InvokeOptions) models.AgentInvocationRecord {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	started := time.Now().UTC()
	record := models.AgentInvocationRecord{
		Step:      opts.Step,
		Agent:     agent.Name(),
		Status:    models.StepStatusPending,
		Input:     payload,
		StartedAt: started,
	}

	transition := func(status models.StepStatus) {
		record.Status = status
		if opts.OnTransition != nil {
			opts.OnTransition(status, record.RetryCount)
		}
	}

	finish := func(status models.StepStatus, kind models.ErrorKind, reason string, err error) models.AgentInvocationRecord {
		record.ErrorKind = kind
		record.ErrorReason = reason

		if err != nil {
			record.Error = err.Error()
		}

		record.FinishedAt = time.Now().UTC()
		record.Latency = record.FinishedAt.Sub(started)
		transition(status)

		return record
	}

	transition(models.StepStatusInputValidating)

	in := agent.ValidateInput(payload)
	record.InputVerdicts = in.Verdicts

	if in.Rejected() {
		logger.WarnContext(ctx, "Input rejected by guardrail", "validator", in.Rejection.Validator, "reason", in.Rejection.Reason)

		return finish(models.StepStatusRejected, models.ErrorKindValidation, in.Rejection.Reason, errors.New(in.Rejection.Message))
	}

	payload = in.Payload
	record.Input = payload

	verdict, err := agent.Moderate(ctx, models.DirectionInput, Text(payload))
	if verdict.Checked || verdict.Error != "" {
		record.InputModeration = &verdict
	}

	if err != nil {
		return finish(models.StepStatusFailed, models.ErrorKindService, "moderation_unavailable", err)
	}

	if verdict.Flagged {
		logger.WarnContext(ctx, "Input flagged by moderation", "categories", verdict.Categories)

		return finish(models.StepStatusRejected, models.ErrorKindModeration, models.ReasonPolicyViolation, nil)
	}

	transition(models.StepStatusExecuting)

	execute := func(ctx context.Context) (any, error) {
		return agent.Execute(ctx, payload, rc)
	}

	var (
		output   any
		attempts = 1
	)

	if opts.Retry != nil {
		output, attempts, err = opts.Retry(ctx, execute, func(attempt int, cause error) {
			record.RetryCount = attempt - 1
			logger.WarnContext(ctx, "Retrying step", "attempt", attempt, "error", cause)
			transition(models.StepStatusFailedRetryable)
			transition(models.StepStatusExecuting)
		})
	} else {
		output, err = execute(ctx)
	}

	record.Attempts = attempts
	record.RetryCount = max(attempts-1, 0)

	if err != nil {
		kind, reason := classify(err)
		logger.ErrorContext(ctx, "Step execution failed", "attempts", attempts, "error", err)

		return finish(models.StepStatusFailed, kind, reason, err)
	}

	transition(models.StepStatusOutputValidating)

	out := agent.ValidateOutput(output)
	record.OutputVerdicts = out.Verdicts

	if out.Rejected() {
		record.Output = output
		logger.WarnContext(ctx, "Output rejected by guardrail", "validator", out.Rejection.Validator, "reason", out.Rejection.Reason)

		return finish(models.StepStatusRejected, models.ErrorKindValidation, out.Rejection.Reason, errors.New(out.Rejection.Message))
	}

	output = out.Payload
	record.Output = output

	transition(models.StepStatusModerating)

	verdict, err = agent.Moderate(ctx, models.DirectionOutput, Text(output))
	if verdict.Checked || verdict.Error != "" {
		record.OutputModeration = &verdict
	}

	if err != nil {
		return finish(models.StepStatusFailed, models.ErrorKindService, "moderation_unavailable", err)
	}

	if verdict.Flagged {
		logger.WarnContext(ctx, "Output flagged by moderation", "categories", verdict.Categories)

		return finish(models.StepStatusRejected, models.ErrorKindModeration, models.ReasonPolicyViolation, nil)
	}

	transition(models.StepStatusEvaluating)

	evaluation := agent.Evaluate(ctx, payload, output, rc)
	record.Evaluation = &evaluation

	if d, ok := output.(models.Degradable); ok && d.IsDegraded() {
		record.Degraded = true
	}

	return finish(models.StepStatusCompleted, "", "", nil)
}

func classify(err error) (models.ErrorKind, string) {
	var stepErr *models.StepError
	if errors.As(err, &stepErr) {
		return stepErr.Kind, stepErr.Reason
	}

	var serviceErr *generation.ServiceError
	if errors.As(err, &serviceErr) {
		return models.ErrorKindService, string(serviceErr.Kind)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrorKindService, string(generation.KindTimeout)
	}

	return models.ErrorKindService, "execution_failed"
}
