package workflow_test

import (
	"testing"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPlan(t *testing.T) {
	t.Parallel()

	plan := workflow.DefaultPlan()

	assert.Equal(t, []models.StepName{
		models.StepCaptureInstructions,
		models.StepParseProfile,
		models.StepAnalyzeJob,
		models.StepRewriteAndTailor,
		models.StepAssemble,
	}, workflow.StepNames(plan))

	agents := make([]string, 0, len(plan))
	for _, step := range plan {
		agents = append(agents, step.Agent)
	}

	assert.Equal(t, []string{"instruction-capture", "profile-structuring", "job-analysis", "content-rewrite", "assembly"}, agents)
}

func TestDefaultPlan_JobAnalysisIsOptional(t *testing.T) {
	t.Parallel()

	analyze := workflow.DefaultPlan()[2]
	assert.Equal(t, models.StepAnalyzeJob, analyze.Name)

	assert.True(t, analyze.Skip(models.NewRunContext(nil, "tailor it", "")))
	assert.False(t, analyze.Skip(models.NewRunContext(nil, "tailor it", "Staff engineer")))
}
