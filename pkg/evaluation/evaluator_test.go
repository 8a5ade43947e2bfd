package evaluation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dukex/resumeflow/pkg/evaluation"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/mocks"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func enabled() evaluation.Config {
	return evaluation.Config{Enabled: true, Model: "gpt-4o-mini", Temperature: 0.3, MinOutputLength: 20}
}

func TestEvaluate_Scored(t *testing.T) {
	t.Parallel()

	service := &mocks.MockGenerationService{}
	service.On("Generate", mock.Anything, mock.MatchedBy(func(req generation.Request) bool {
		return req.Schema != nil &&
			req.Model == "gpt-4o-mini" &&
			strings.Contains(req.Prompt, "fidelity") &&
			strings.Contains(req.Prompt, "Led the platform team")
	})).Return(&generation.Response{Structured: map[string]any{
		"score":              0.82,
		"criteria":           map[string]any{"relevance": 0.9, "fidelity": 1.4},
		"rationale":          "Good targeting",
		"failure_categories": []any{"missing_keywords", "made_up", "missing_keywords"},
	}}, nil)

	evaluator := evaluation.New(service, enabled(), nil)
	result := evaluator.Evaluate(context.Background(), evaluation.RubricFor("content-rewrite"),
		"source resume", "Led the platform team through a Kubernetes migration")

	require.True(t, result.Scored)
	assert.InDelta(t, 0.82, result.Score, 0.0001)
	assert.InDelta(t, 1.0, result.CriteriaScores["fidelity"], 0.0001)
	assert.Equal(t, "Good targeting", result.Rationale)
	assert.Equal(t, []models.FailureCategory{models.FailureMissingKeywords}, result.FailureCategories)
	service.AssertExpectations(t)
}

func TestEvaluate_ClampsScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"above one", 3.5, 1},
		{"below zero", -0.2, 0},
		{"in range", 0.4, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &mocks.MockGenerationService{}
			service.On("Generate", mock.Anything, mock.Anything).Return(&generation.Response{
				Structured: map[string]any{"score": tt.score, "rationale": "r"},
			}, nil)

			result := evaluation.New(service, enabled(), nil).
				Evaluate(context.Background(), evaluation.RubricFor("assembly"), "", strings.Repeat("x", 40))

			require.True(t, result.Scored)
			assert.InDelta(t, tt.want, result.Score, 0.0001)
		})
	}
}

func TestEvaluate_TooShortPrecheck(t *testing.T) {
	t.Parallel()

	service := &mocks.MockGenerationService{}
	service.On("Generate", mock.Anything, mock.Anything).Return(&generation.Response{
		Text: "```json\n{\"score\": 0.3, \"rationale\": \"thin\", \"failure_categories\": [\"too_short\"]}\n```",
	}, nil)

	result := evaluation.New(service, enabled(), nil).
		Evaluate(context.Background(), evaluation.RubricFor("assembly"), "", "tiny")

	require.True(t, result.Scored)
	assert.Equal(t, []models.FailureCategory{models.FailureTooShort}, result.FailureCategories)
}

func TestEvaluate_Unscored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response *generation.Response
		err      error
		reason   string
	}{
		{
			name:   "service error",
			err:    generation.NewServiceError("generate", generation.KindServer, errors.New("down")),
			reason: "evaluation unavailable",
		},
		{
			name:     "not json",
			response: &generation.Response{Text: "I think it is fine"},
			reason:   "malformed evaluation response",
		},
		{
			name:     "schema mismatch",
			response: &generation.Response{Structured: map[string]any{"score": "high"}},
			reason:   "malformed evaluation response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &mocks.MockGenerationService{}
			service.On("Generate", mock.Anything, mock.Anything).Return(tt.response, tt.err)

			result := evaluation.New(service, enabled(), nil).
				Evaluate(context.Background(), evaluation.RubricFor("job-analysis"), "jd", strings.Repeat("y", 30))

			assert.False(t, result.Scored)
			assert.Contains(t, result.Rationale, tt.reason)
		})
	}
}

func TestEvaluate_Disabled(t *testing.T) {
	t.Parallel()

	service := &mocks.MockGenerationService{}

	cfg := enabled()
	cfg.Enabled = false

	result := evaluation.New(service, cfg, nil).Evaluate(context.Background(), evaluation.RubricFor("assembly"), "", "output")
	assert.False(t, result.Scored)
	service.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)

	var nilEvaluator *evaluation.Evaluator

	result = nilEvaluator.Evaluate(context.Background(), evaluation.Rubric{}, "", "")
	assert.False(t, result.Scored)
}

func TestEvaluate_CancelledContextStillReturns(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := &mocks.MockGenerationService{}
	service.On("Generate", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	result := evaluation.New(service, enabled(), nil).Evaluate(ctx, evaluation.RubricFor("assembly"), "", "output text that is long")
	assert.False(t, result.Scored)
}

func TestRubricFor(t *testing.T) {
	t.Parallel()

	for name, rubric := range evaluation.Rubrics {
		total := 0.0
		for _, c := range rubric.Criteria {
			total += c.Weight
		}

		assert.InDelta(t, 1.0, total, 0.0001, name)
	}

	generic := evaluation.RubricFor("unknown-agent")
	assert.Contains(t, generic.Task, "unknown-agent")
	assert.Len(t, generic.Criteria, 3)
}

func TestEvaluate_BoundsScoringCall(t *testing.T) {
	t.Parallel()

	hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()

		return ok && time.Until(deadline) <= time.Second
	})

	service := &mocks.MockGenerationService{}
	service.On("Generate", hasDeadline, mock.Anything).Return(&generation.Response{Structured: map[string]any{
		"score":     0.75,
		"rationale": "Fine",
	}}, nil).Once()

	cfg := enabled()
	cfg.CallTimeout = time.Second

	result := evaluation.New(service, cfg, nil).Evaluate(context.Background(), evaluation.RubricFor("assembly"), "", "output text that is long enough")

	assert.True(t, result.Scored)
	service.AssertExpectations(t)
}

func TestEvaluate_PassThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		threshold float64
		score     float64
		want      bool
	}{
		{"default threshold met", 0, 0.7, true},
		{"default threshold missed", 0, 0.69, false},
		{"custom threshold met", 0.5, 0.55, true},
		{"custom threshold missed", 0.9, 0.85, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := &mocks.MockGenerationService{}
			service.On("Generate", mock.Anything, mock.Anything).Return(&generation.Response{Structured: map[string]any{
				"score":     tt.score,
				"rationale": "scored",
			}}, nil)

			cfg := enabled()
			cfg.PassThreshold = tt.threshold

			result := evaluation.New(service, cfg, nil).Evaluate(context.Background(), evaluation.RubricFor("assembly"), "", "output text that is long enough")

			require.True(t, result.Scored)
			assert.Equal(t, tt.want, result.Passed)
		})
	}
}

func TestEvaluate_UnscoredNeverPasses(t *testing.T) {
	t.Parallel()

	service := &mocks.MockGenerationService{}
	service.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	result := evaluation.New(service, enabled(), nil).Evaluate(context.Background(), evaluation.RubricFor("assembly"), "", "output text that is long enough")

	assert.False(t, result.Scored)
	assert.False(t, result.Passed)
}
