// Package agents provides the composable base every workflow agent embeds
// and the fixed pipeline that runs one agent invocation.
package agents

import (
	"context"
	"log/slog"

	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/evaluation"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/moderation"
)

// Base implements the guardrail, moderation and evaluation stages of an
// agent from injected collaborators. Concrete agents embed it and add
// Execute, Input and Apply.
type Base struct {
	name        string
	description string
	input       *guardrails.Pipeline
	output      *guardrails.Pipeline
	gate        *moderation.Gate
	evaluator   *evaluation.Evaluator
	rubric      evaluation.Rubric
}

type Option func(*Base)

func WithInputGuardrails(validators ...guardrails.Validator) Option {
	return func(b *Base) {
		b.input = guardrails.New(validators...)
	}
}

func WithOutputGuardrails(validators ...guardrails.Validator) Option {
	return func(b *Base) {
		b.output = guardrails.New(validators...)
	}
}

func WithModeration(gate *moderation.Gate) Option {
	return func(b *Base) {
		b.gate = gate
	}
}

func WithEvaluator(evaluator *evaluation.Evaluator, rubric evaluation.Rubric) Option {
	return func(b *Base) {
		b.evaluator = evaluator
		b.rubric = rubric
	}
}

func NewBase(name, description string, opts ...Option) Base {
	b := Base{
		name:        name,
		description: description,
		rubric:      evaluation.RubricFor(name),
	}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Description() string {
	return b.description
}

func (b *Base) ValidateInput(payload any) guardrails.Outcome {
	return b.input.Run(payload)
}

func (b *Base) ValidateOutput(output any) guardrails.Outcome {
	return b.output.Run(output)
}

func (b *Base) Moderate(ctx context.Context, direction models.Direction, text string) (models.ModerationVerdict, error) {
	return b.gate.Check(ctx, direction, text)
}

func (b *Base) Evaluate(ctx context.Context, payload, output any, _ *models.RunContext) models.EvaluationResult {
	return b.evaluator.Evaluate(ctx, b.rubric, Text(payload), Text(output))
}

// Dependencies are the collaborators shared by the default agents.
type Dependencies struct {
	Generation generation.Service
	Gate       *moderation.Gate
	Evaluator  *evaluation.Evaluator
	Config     *config.Config
	Logger     *slog.Logger
}

// NewBase builds a Base wired to the shared gate and evaluator. Guardrails
// are dropped when disabled in configuration.
func (d Dependencies) NewBase(name, description string, input, output []guardrails.Validator) Base {
	opts := []Option{
		WithModeration(d.Gate),
		WithEvaluator(d.Evaluator, evaluation.RubricFor(name)),
	}

	if d.Settings().Guardrails.Enabled {
		opts = append(opts, WithInputGuardrails(input...), WithOutputGuardrails(output...))
	}

	return NewBase(name, description, opts...)
}

// Settings returns the configuration, falling back to defaults.
func (d Dependencies) Settings() *config.Config {
	if d.Config == nil {
		return config.Default()
	}

	return d.Config
}

// Log returns a logger tagged with the agent name.
func (d Dependencies) Log(agent string) *slog.Logger {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return logger.With("agent", agent)
}

// Generate calls the generation service, filling model settings from
// configuration when the request leaves them unset. Every call gets its own
// retry.per_call_timeout deadline.
func (d Dependencies) Generate(ctx context.Context, req generation.Request) (*generation.Response, error) {
	if d.Generation == nil {
		return nil, &models.StepError{Kind: models.ErrorKindConfiguration, Reason: "generation service not configured"}
	}

	settings := d.Settings().Generation

	if req.Model == "" {
		req.Model = settings.Model
	}

	if req.Temperature == 0 {
		req.Temperature = settings.Temperature
	}

	if req.MaxTokens == 0 {
		req.MaxTokens = settings.MaxTokens
	}

	if timeout := d.Settings().Retry.PerCallTimeout; timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return d.Generation.Generate(ctx, req)
}
