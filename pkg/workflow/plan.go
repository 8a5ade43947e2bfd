// Package workflow runs the tailoring plan: a fixed sequence of agent steps
// over one run context.
package workflow

import (
	"github.com/dukex/resumeflow/pkg/agents/assemble"
	"github.com/dukex/resumeflow/pkg/agents/instructions"
	"github.com/dukex/resumeflow/pkg/agents/jobanalysis"
	"github.com/dukex/resumeflow/pkg/agents/profile"
	"github.com/dukex/resumeflow/pkg/agents/rewrite"
	"github.com/dukex/resumeflow/pkg/models"
)

// Step binds a step name to the registry name of the agent that runs it.
type Step struct {
	Name  models.StepName
	Agent string

	// Skip reports whether the step does not apply to a run. Skipped steps
	// produce no audit record.
	Skip func(rc *models.RunContext) bool
}

func (s Step) skipped(rc *models.RunContext) bool {
	return s.Skip != nil && s.Skip(rc)
}

// DefaultPlan is the five step tailoring plan. Job analysis only runs when a
// job description was supplied.
func DefaultPlan() []Step {
	return []Step{
		{Name: models.StepCaptureInstructions, Agent: instructions.Name},
		{Name: models.StepParseProfile, Agent: profile.Name},
		{
			Name:  models.StepAnalyzeJob,
			Agent: jobanalysis.Name,
			Skip: func(rc *models.RunContext) bool {
				return !rc.HasJobDescription()
			},
		},
		{Name: models.StepRewriteAndTailor, Agent: rewrite.Name},
		{Name: models.StepAssemble, Agent: assemble.Name},
	}
}

// StepNames lists the step names of plan in order.
func StepNames(plan []Step) []models.StepName {
	names := make([]models.StepName, 0, len(plan))
	for _, step := range plan {
		names = append(names, step.Name)
	}

	return names
}
