package assemble

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

func TestClean(t *testing.T) {
	t.Parallel()

	p := testutil.CreateTestProfile(testutil.WithSkills("Go", " go ", "", "Kafka"))
	p.Summary = "  Backend   engineer \n building platforms "
	p.Experiences[0].Bullets = []string{"Built  pipelines", "built pipelines", "   ", "Led migration"}

	Clean(p)

	assert.Equal(t, "Backend engineer building platforms", p.Summary)
	assert.Equal(t, []string{"Built pipelines", "Led migration"}, p.Experiences[0].Bullets)
	assert.Equal(t, []string{"Go", "Kafka"}, p.SkillNames())
}

func TestOrderSkills(t *testing.T) {
	t.Parallel()

	p := testutil.CreateTestProfile(testutil.WithSkills("Leadership", "Kafka", "SQL", "go", "Kubernetes"))

	OrderSkills(p, testutil.CreateTestJobAnalysis())

	assert.Equal(t, []string{"go", "Kubernetes", "Kafka", "Leadership", "SQL"}, p.SkillNames())
}

func TestChanges(t *testing.T) {
	t.Parallel()

	before := testutil.CreateTestProfile(testutil.WithSkills("Go", "PostgreSQL"))

	tests := []struct {
		name   string
		before *models.Profile
		mutate func(p *models.Profile)
		want   []string
	}{
		{
			name:   "no baseline",
			before: nil,
			mutate: func(*models.Profile) {},
			want:   []string{"Assembled the tailored resume"},
		},
		{
			name:   "nothing changed",
			before: before,
			mutate: func(*models.Profile) {},
			want:   []string{"No content changes were needed"},
		},
		{
			name:   "rewritten and reordered",
			before: before,
			mutate: func(p *models.Profile) {
				p.Summary = "New summary"
				p.Experiences[0].Bullets[1] = "Led migration to Kubernetes"
				p.Skills = []models.Skill{{Name: "Kubernetes"}, {Name: "PostgreSQL"}, {Name: "Go"}}
			},
			want: []string{
				"Rewrote the professional summary",
				"Rewrote 1 experience bullets",
				"Added skills: Kubernetes",
				"Reordered skills by job priority",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			after := before.Clone()
			tt.mutate(after)

			assert.Equal(t, tt.want, Changes(tt.before, after))
		})
	}
}

func TestFallbackNotes(t *testing.T) {
	t.Parallel()

	notes := FallbackNotes(models.Instructions{TargetRole: "SRE", CompanyName: "Acme"}, []string{"Rewrote the professional summary"})
	assert.Equal(t, "Your resume was tailored for the SRE role at Acme. Rewrote the professional summary.", notes)
}

func newRunContext() *models.RunContext {
	baseline := testutil.CreateTestProfile(testutil.WithSkills("Go", "PostgreSQL"))
	rc := models.NewRunContext(baseline, "Tailor for platform", testutil.JobDescription)

	rc.AppendRecord(models.AgentInvocationRecord{
		Step:   models.StepParseProfile,
		Status: models.StepStatusCompleted,
		Output: baseline,
	})

	tailored := baseline.Clone()
	tailored.Summary = "Tailored summary"
	tailored.Skills = append(tailored.Skills, models.Skill{Name: "Kubernetes"})
	rc.Profile = tailored
	rc.JobAnalysis = testutil.CreateTestJobAnalysis()

	return rc
}

func TestExecute(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubGenerator()
	agent := New(agents.Dependencies{Generation: stub, Config: config.Default()})
	rc := newRunContext()

	payload, err := agent.Input(rc)
	require.NoError(t, err)
	require.NotNil(t, payload.(*Request).Baseline)

	out, err := agent.Execute(context.Background(), payload, rc)
	require.NoError(t, err)

	assembled := out.(*Assembled)
	assert.Equal(t, "Tailored the resume toward the target role.", assembled.Notes)
	assert.Equal(t, []string{"Go", "Kubernetes", "PostgreSQL"}, assembled.Profile.SkillNames())
	assert.Contains(t, assembled.Changes, "Added skills: Kubernetes")
	assert.Equal(t, 1, stub.Calls(testutil.TextCall))

	require.NoError(t, agent.Apply(rc, out))
	assert.Equal(t, assembled.Notes, rc.TailoringNotes)
	assert.Same(t, assembled.Profile, rc.Profile)
}

func TestExecute_Notes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		stub         func(*testutil.StubGenerator)
		wantErr      bool
		wantFallback bool
	}{
		{
			name: "bad request uses fallback",
			stub: func(s *testutil.StubGenerator) {
				s.FailNext(testutil.TextCall, generation.NewServiceError("generate", generation.KindBadRequest, errors.New("bad")))
			},
			wantFallback: true,
		},
		{
			name: "empty text uses fallback",
			stub: func(s *testutil.StubGenerator) {
				s.RespondNext(testutil.TextCall, &generation.Response{Text: "  "})
			},
			wantFallback: true,
		},
		{
			name: "transient error fails",
			stub: func(s *testutil.StubGenerator) {
				s.FailNext(testutil.TextCall, generation.NewServiceError("generate", generation.KindTimeout, context.DeadlineExceeded))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := testutil.NewStubGenerator()
			tt.stub(stub)

			agent := New(agents.Dependencies{Generation: stub, Config: config.Default()})
			rc := newRunContext()

			payload, err := agent.Input(rc)
			require.NoError(t, err)

			out, err := agent.Execute(context.Background(), payload, rc)
			if tt.wantErr {
				assert.True(t, generation.IsTransient(err))

				return
			}

			require.NoError(t, err)

			if tt.wantFallback {
				assert.True(t, strings.HasPrefix(out.(*Assembled).Notes, "Your resume was tailored"))
			}
		})
	}
}

func TestInput_WithoutParsedProfile(t *testing.T) {
	t.Parallel()

	agent := New(agents.Dependencies{Config: config.Default()})
	rc := models.NewRunContext(testutil.CreateTestProfile(), "x", "")

	payload, err := agent.Input(rc)
	require.NoError(t, err)
	assert.Nil(t, payload.(*Request).Baseline)
}
