package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobAnalysis_PrioritySkills(t *testing.T) {
	t.Parallel()

	job := &JobAnalysis{
		RequiredSkills: []SkillRequirement{
			{Name: "Go", Required: true, Importance: 0.6},
			{Name: "Kubernetes", Required: true, Importance: 0.9},
		},
		PreferredSkills: []SkillRequirement{
			{Name: "Rust", Importance: 0.95},
			{Name: "go", Importance: 1},
			{Name: "Terraform", Importance: 0.5},
		},
	}

	assert.Equal(t, []string{"Kubernetes", "Rust", "Go", "Terraform"}, job.PrioritySkills(0))
	assert.Equal(t, []string{"Kubernetes", "Rust"}, job.PrioritySkills(2))

	var nilJob *JobAnalysis
	assert.Nil(t, nilJob.PrioritySkills(3))
}

func TestJobAnalysis_AllKeywords(t *testing.T) {
	t.Parallel()

	job := &JobAnalysis{
		RequiredSkills:    []SkillRequirement{{Name: "Go"}},
		PreferredSkills:   []SkillRequirement{{Name: "gRPC"}},
		ATSKeywords:       []string{"go", "microservices", " "},
		TechnicalKeywords: []string{"Microservices", "kafka"},
	}

	assert.Equal(t, []string{"Go", "gRPC", "microservices", "kafka"}, job.AllKeywords())
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to StepStatus
		want     bool
	}{
		{StepStatusPending, StepStatusInputValidating, true},
		{StepStatusInputValidating, StepStatusRejected, true},
		{StepStatusInputValidating, StepStatusExecuting, true},
		{StepStatusExecuting, StepStatusFailedRetryable, true},
		{StepStatusFailedRetryable, StepStatusExecuting, true},
		{StepStatusExecuting, StepStatusOutputValidating, true},
		{StepStatusOutputValidating, StepStatusModerating, true},
		{StepStatusModerating, StepStatusRejected, true},
		{StepStatusModerating, StepStatusEvaluating, true},
		{StepStatusEvaluating, StepStatusCompleted, true},
		{StepStatusEvaluating, StepStatusRejected, false},
		{StepStatusPending, StepStatusExecuting, false},
		{StepStatusCompleted, StepStatusExecuting, false},
		{StepStatusFailedRetryable, StepStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStepStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, StepStatusCompleted.IsTerminal())
	assert.True(t, StepStatusRejected.IsTerminal())
	assert.True(t, StepStatusFailed.IsTerminal())
	assert.True(t, StepStatusSkipped.IsTerminal())
	assert.False(t, StepStatusFailedRetryable.IsTerminal())
	assert.False(t, StepStatusExecuting.IsTerminal())
}

func TestProfile_CloneIsDeep(t *testing.T) {
	t.Parallel()

	original := &Profile{
		Name:        "Ada Lovelace",
		Experiences: []Experience{{Company: "Analytical Engines", Title: "Engineer", Bullets: []string{"Wrote the first program"}}},
		Skills:      []Skill{{Name: "Mathematics"}},
	}

	clone := original.Clone()
	clone.Experiences[0].Bullets[0] = "changed"
	clone.Skills[0].Name = "changed"
	clone.Name = "changed"

	assert.Equal(t, "Wrote the first program", original.Experiences[0].Bullets[0])
	assert.Equal(t, "Mathematics", original.Skills[0].Name)
	assert.Equal(t, "Ada Lovelace", original.Name)
	assert.Equal(t, 1, original.BulletCount())
}

func TestRunContext_AuditTrailIsAppendOnlyCopy(t *testing.T) {
	t.Parallel()

	rc := NewRunContext(&Profile{Name: "Ada"}, "make it concise", "")
	id := rc.RequestID()

	rc.AppendRecord(AgentInvocationRecord{Step: StepCaptureInstructions, Status: StepStatusCompleted})
	rc.AppendRecord(AgentInvocationRecord{Step: StepParseProfile, Status: StepStatusCompleted})

	trail := rc.AuditTrail()
	require.Len(t, trail, 2)
	trail[0].Status = StepStatusFailed

	assert.Equal(t, StepStatusCompleted, rc.AuditTrail()[0].Status)
	assert.Equal(t, StepParseProfile, rc.AuditTrail()[1].Step)
	assert.Equal(t, id, rc.RequestID())
	assert.False(t, rc.HasJobDescription())

	data, err := json.Marshal(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), id)
}

func TestRunContext_RequestIDsAreUnique(t *testing.T) {
	t.Parallel()

	a := NewRunContext(nil, "x", "")
	b := NewRunContext(nil, "x", "")

	assert.NotEqual(t, a.RequestID(), b.RequestID())
}

func TestStepError_Is(t *testing.T) {
	t.Parallel()

	validation := NewValidationError(StepCaptureInstructions, ReasonLengthExceeded)
	assert.True(t, IsValidationError(validation))
	assert.False(t, IsModerationError(validation))
	assert.Contains(t, validation.Error(), ReasonLengthExceeded)

	moderation := NewModerationError(StepRewriteAndTailor)
	assert.True(t, IsModerationError(moderation))
	assert.Equal(t, ReasonPolicyViolation, moderation.Reason)

	cause := errors.New("boom")
	failed := &StepError{Step: StepAssemble, Kind: ErrorKindService, Reason: "retries exhausted", Err: cause}
	assert.True(t, IsStepFailed(failed))
	assert.ErrorIs(t, failed, cause)
}

func TestWorkflowResult_Err(t *testing.T) {
	t.Parallel()

	done := &WorkflowResult{Status: WorkflowStatusCompleted}
	require.NoError(t, done.Err())
	assert.False(t, done.Partial())

	partial := &WorkflowResult{
		Status:        WorkflowStatusPartial,
		FailedStep:    StepRewriteAndTailor,
		ErrorKind:     ErrorKindModeration,
		FailureReason: ReasonPolicyViolation,
		AuditTrail: []AgentInvocationRecord{
			{Status: StepStatusCompleted},
			{Status: StepStatusCompleted},
			{Status: StepStatusRejected},
		},
	}
	assert.True(t, partial.Partial())
	assert.True(t, IsModerationError(partial.Err()))
	assert.Equal(t, 2, partial.CompletedSteps())
}

func TestEvaluationResult(t *testing.T) {
	t.Parallel()

	res := Unscored("evaluation disabled")
	assert.False(t, res.Scored)
	assert.Equal(t, "evaluation disabled", res.Rationale)

	scored := EvaluationResult{Scored: true, Score: 0.4, FailureCategories: []FailureCategory{FailureTooShort}}
	assert.True(t, scored.HasFailure(FailureTooShort))
	assert.False(t, scored.HasFailure(FailureOffTopic))
	assert.True(t, IsKnownFailureCategory(FailureOffTopic))
	assert.False(t, IsKnownFailureCategory("vibes"))
}
