// Package protocol defines the contract every workflow agent implements.
package protocol

import (
	"context"

	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
)

// Agent is one specialized step of the tailoring workflow. Execute is the
// only method allowed to call the generation service.
type Agent interface {
	// Name returns the registry name of the agent
	Name() string

	// ValidateInput runs the input guardrails over payload
	ValidateInput(payload any) guardrails.Outcome

	// Execute performs the agent's task
	Execute(ctx context.Context, payload any, rc *models.RunContext) (any, error)

	// ValidateOutput runs the output guardrails over output
	ValidateOutput(output any) guardrails.Outcome

	// Moderate classifies text crossing the agent boundary in direction
	Moderate(ctx context.Context, direction models.Direction, text string) (models.ModerationVerdict, error)

	// Evaluate scores a completed output. It never fails.
	Evaluate(ctx context.Context, payload, output any, rc *models.RunContext) models.EvaluationResult

	// Input builds the step payload from the run context
	Input(rc *models.RunContext) (any, error)

	// Apply feeds a completed output back into the run context
	Apply(rc *models.RunContext, output any) error
}

// Describer is implemented by agents that expose human readable metadata.
type Describer interface {
	Description() string
}
