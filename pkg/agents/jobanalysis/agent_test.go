package jobanalysis

import (
	"context"
	"testing"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	analysis := &models.JobAnalysis{
		RequiredSkills:   []models.SkillRequirement{{Name: "Terraform"}},
		Responsibilities: []models.Responsibility{{Description: "x", Keywords: []string{"On-call"}}},
	}

	ExtractKeywords(analysis, "We use Kubernetes, Go and CI/CD. Strong Communication and leadership required.")

	assert.Equal(t, []string{"on-call", "terraform"}, analysis.ATSKeywords)
	assert.Equal(t, []string{"ci/cd", "go", "kubernetes", "on-call", "terraform"}, analysis.TechnicalKeywords)
	assert.Equal(t, []string{"communication", "leadership"}, analysis.SoftSkills)
}

func TestExecute(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubGenerator()
	agent := New(agents.Dependencies{Generation: stub, Config: config.Default()})

	out, err := agent.Execute(context.Background(), testutil.JobDescription, nil)
	require.NoError(t, err)

	analysis := out.(*models.JobAnalysis)
	require.Len(t, analysis.RequiredSkills, 2)
	assert.Equal(t, 2, analysis.RequiredSkills[0].MentionedCount)
	assert.Equal(t, 1, analysis.RequiredSkills[1].MentionedCount)
	require.Len(t, analysis.PreferredSkills, 1)
	assert.InDelta(t, 0.6, analysis.PreferredSkills[0].Importance, 0.0001)
	assert.InDelta(t, 0.7, analysis.Responsibilities[0].Importance, 0.0001)
	assert.Contains(t, analysis.TechnicalKeywords, "postgresql")
	assert.Contains(t, analysis.SoftSkills, "communication")
	assert.Equal(t, []string{"Go", "Kubernetes", "Kafka"}, analysis.PrioritySkills(3))

	rc := models.NewRunContext(nil, "x", testutil.JobDescription)
	require.NoError(t, agent.Apply(rc, out))
	assert.Equal(t, "Staff Platform Engineer", rc.Instructions.TargetRole)
	assert.Equal(t, "Acme", rc.Instructions.CompanyName)
}

func TestExecute_UnusableResponseKeepsKeywordExtraction(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubGenerator().RespondNext("job_analysis", &generation.Response{Text: "unavailable"})
	agent := New(agents.Dependencies{Generation: stub, Config: config.Default()})

	out, err := agent.Execute(context.Background(), testutil.JobDescription, nil)
	require.NoError(t, err)

	analysis := out.(*models.JobAnalysis)
	assert.Empty(t, analysis.RequiredSkills)
	assert.Contains(t, analysis.TechnicalKeywords, "kubernetes")
}

func TestValidateOutput_WarnsWithoutKeywords(t *testing.T) {
	t.Parallel()

	agent := New(agents.Dependencies{Config: config.Default()})

	outcome := agent.ValidateOutput(&models.JobAnalysis{})
	require.False(t, outcome.Rejected())

	last := outcome.Verdicts[len(outcome.Verdicts)-1]
	assert.Equal(t, "jd_keywords", last.Validator)
	assert.Equal(t, string(models.FailureMissingKeywords), last.Reason)
}

func TestApply_KeepsExplicitTarget(t *testing.T) {
	t.Parallel()

	agent := New(agents.Dependencies{Config: config.Default()})
	rc := models.NewRunContext(nil, "x", "jd")
	rc.Instructions.TargetRole = "SRE"

	require.NoError(t, agent.Apply(rc, testutil.CreateTestJobAnalysis()))
	assert.Equal(t, "SRE", rc.Instructions.TargetRole)
	assert.Equal(t, "Acme", rc.Instructions.CompanyName)
}
