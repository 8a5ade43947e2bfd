package rewrite

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest() *Request {
	return &Request{
		Profile:      testutil.CreateTestProfile(testutil.WithSkills("Go", "PostgreSQL")),
		Instructions: models.Instructions{Raw: "Tailor for platform", Intent: "Tailor for platform"},
		JobAnalysis:  testutil.CreateTestJobAnalysis(),
	}
}

func execute(t *testing.T, stub *testutil.StubGenerator, req *Request) (*Result, error) {
	t.Helper()

	out, err := New(agents.Dependencies{Generation: stub, Config: config.Default()}).
		Execute(context.Background(), req, nil)
	if err != nil {
		return nil, err
	}

	return out.(*Result), nil
}

func TestExecute_Targeted(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubGenerator()
	req := newRequest()

	result, err := execute(t, stub, req)
	require.NoError(t, err)

	assert.False(t, result.Degraded)
	assert.Equal(t, 1, result.TargetedAttempts)
	assert.Equal(t, 1, stub.Calls("rewrite"))
	assert.Equal(t, []string{"Go", "Kubernetes", "Kafka"}, result.Keywords)
	assert.Equal(t, "Built event pipelines with measurable impact", result.Profile.Experiences[0].Bullets[0])
	assert.True(t, strings.HasPrefix(result.Profile.Summary, "Tailored: "))
	assert.Equal(t, []string{"Kubernetes"}, result.AddedSkills)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes"}, result.Profile.SkillNames())

	assert.Equal(t, "Built event pipelines", req.Profile.Experiences[0].Bullets[0], "request profile must not be modified")
	assert.Equal(t, "Built event pipelines", result.Source.Experiences[0].Bullets[0])
}

func TestExecute_EditPlan(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubGenerator().RespondNext("rewrite", &generation.Response{Text: `{
		"summary": "Platform engineer",
		"experiences": [
			{"bullets": ["Built event pipelines on Kubernetes", "Led migration to containers"]},
			{"bullets": ["Maintained billing services"]}
		]
	}`})

	result, err := execute(t, stub, newRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	plan := result.Plan

	require.Len(t, plan.Actions, 4)
	assert.Equal(t, EditAction{
		Type:     ActionRewriteSummary,
		Target:   "summary",
		OldValue: "Backend engineer building data platforms.",
		NewValue: "Platform engineer",
		Reason:   "targets the job's priority keywords",
		Priority: prioritySummary,
	}, plan.Actions[0])

	assert.Equal(t, ActionRewriteBullet, plan.Actions[1].Type)
	assert.Equal(t, "experience_0_bullet_0", plan.Actions[1].Target)
	assert.Equal(t, "Built event pipelines", plan.Actions[1].OldValue)
	assert.InDelta(t, priorityKeywordBullet, plan.Actions[1].Priority, 0.0001)

	assert.Equal(t, ActionAddKeyword, plan.Actions[2].Type)
	assert.Equal(t, "Kubernetes", plan.Actions[2].NewValue)

	assert.Equal(t, ActionEmphasize, plan.Actions[3].Type)
	assert.Equal(t, "Kubernetes", plan.Actions[3].NewValue)

	assert.Equal(t, []string{"Kubernetes"}, plan.KeywordsToAdd)
	assert.Equal(t, []string{"Kubernetes"}, plan.KeywordsToEmphasize)
	assert.Equal(t, []string{"summary", "experience", "skills"}, plan.SectionsToPrioritize)
	assert.Equal(t, "4 edits across 3 sections, 1 skills added, 1 keywords emphasized", plan.Summary)

	for i := 1; i < len(plan.Actions); i++ {
		assert.GreaterOrEqual(t, plan.Actions[i-1].Priority, plan.Actions[i].Priority)
	}
}

func TestExecute_EditPlanDegradedReason(t *testing.T) {
	t.Parallel()

	broken := &generation.Response{Text: `{"summary":"x","experiences":[]}`}
	stub := testutil.NewStubGenerator().RespondNext("rewrite", broken, broken)

	result, err := execute(t, stub, newRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	bullets := 0

	for _, action := range result.Plan.Actions {
		if action.Type == ActionRewriteBullet {
			bullets++
			assert.Equal(t, "generic clarity and impact improvement", action.Reason)
			assert.InDelta(t, priorityGenericBullet, action.Priority, 0.0001)
		}
	}

	assert.Equal(t, 3, bullets)
}

func TestExecute_DegradedFallback(t *testing.T) {
	t.Parallel()

	broken := &generation.Response{Text: `{"summary":"x","experiences":[]}`}

	tests := []struct {
		name          string
		responses     []*generation.Response
		wantRewritten bool
	}{
		{
			name:          "generic rewrite succeeds",
			responses:     []*generation.Response{broken, broken},
			wantRewritten: true,
		},
		{
			name:          "every rewrite unusable",
			responses:     []*generation.Response{broken, {Text: "not json"}, {Text: "still not json"}},
			wantRewritten: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := testutil.NewStubGenerator().RespondNext("rewrite", tt.responses...)

			result, err := execute(t, stub, newRequest())
			require.NoError(t, err)

			assert.True(t, result.Degraded)
			assert.True(t, result.IsDegraded())
			assert.Equal(t, 2, result.TargetedAttempts)
			assert.Equal(t, 3, stub.Calls("rewrite"))
			assert.Len(t, result.Profile.Experiences, 2)

			first := result.Profile.Experiences[0].Bullets[0]
			if tt.wantRewritten {
				assert.Equal(t, "Built event pipelines with measurable impact", first)
			} else {
				assert.Equal(t, "Built event pipelines", first)
			}

			assert.Equal(t, []string{"Kubernetes"}, result.AddedSkills)
		})
	}
}

func TestExecute_ServiceErrorPropagates(t *testing.T) {
	t.Parallel()

	quota := generation.NewServiceError("generate", generation.KindQuota, errors.New("quota exhausted"))
	stub := testutil.NewStubGenerator().FailNext("rewrite", quota)

	_, err := execute(t, stub, newRequest())
	require.ErrorIs(t, err, quota)
	assert.Equal(t, 1, stub.Calls("rewrite"))
}

func TestExecute_WithoutJobAnalysis(t *testing.T) {
	t.Parallel()

	req := newRequest()
	req.JobAnalysis = nil

	result, err := execute(t, testutil.NewStubGenerator(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Keywords)
	assert.Empty(t, result.AddedSkills)
}

func TestValidateOutput_Structure(t *testing.T) {
	t.Parallel()

	agent := New(agents.Dependencies{Config: config.Default()})
	source := testutil.CreateTestProfile()

	tests := []struct {
		name   string
		mutate func(p *models.Profile)
		reject bool
	}{
		{"unchanged", func(*models.Profile) {}, false},
		{"bullet text rewritten", func(p *models.Profile) { p.Experiences[0].Bullets[0] = "Shipped pipelines" }, false},
		{"experience dropped", func(p *models.Profile) { p.Experiences = p.Experiences[:1] }, true},
		{"employer changed", func(p *models.Profile) { p.Experiences[1].Company = "Invented Corp" }, true},
		{"bullet added", func(p *models.Profile) {
			p.Experiences[1].Bullets = append(p.Experiences[1].Bullets, "Extra")
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rewritten := source.Clone()
			tt.mutate(rewritten)

			outcome := agent.ValidateOutput(&Result{Profile: rewritten, Source: source})
			require.Equal(t, tt.reject, outcome.Rejected())

			if tt.reject {
				assert.Equal(t, models.ReasonInvalidStructure, outcome.Rejection.Reason)
				assert.True(t, strings.HasPrefix(outcome.Rejection.Message, "structure_changed"))
			}
		})
	}
}

func TestValidateInput_RequiresProfile(t *testing.T) {
	t.Parallel()

	agent := New(agents.Dependencies{Config: config.Default()})

	assert.True(t, agent.ValidateInput(nil).Rejected())
	assert.True(t, agent.ValidateInput(&Request{}).Rejected())
	assert.False(t, agent.ValidateInput(newRequest()).Rejected())
}
