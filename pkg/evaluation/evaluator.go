package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
)

const (
	maxPromptSource = 4000
	maxPromptOutput = 6000
)

const systemPrompt = "You are an expert evaluator for resume tailoring agent outputs. " +
	"Score strictly and return only JSON matching the schema."

type Config struct {
	Enabled         bool
	Model           string
	Temperature     float64
	MinOutputLength int
	PassThreshold   float64
	CallTimeout     time.Duration
}

// DefaultPassThreshold is used when Config.PassThreshold is zero.
const DefaultPassThreshold = 0.7

// Evaluator scores outputs with a secondary generation call.
type Evaluator struct {
	service generation.Service
	cfg     Config
	logger  *slog.Logger
}

func New(service generation.Service, cfg Config, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{
		service: service,
		cfg:     cfg,
		logger:  logger.With("component", "evaluator"),
	}
}

// Schema is the structured response requested from the scoring call.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{"type": "number"},
			"criteria": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "number"},
			},
			"rationale": map[string]any{"type": "string"},
			"failure_categories": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"score", "rationale"},
	}
}

type scoreResponse struct {
	Score             float64            `json:"score"`
	Criteria          map[string]float64 `json:"criteria"`
	Rationale         string             `json:"rationale"`
	FailureCategories []string           `json:"failure_categories"`
}

// Evaluate scores output against rubric. It never fails: any problem with
// the scoring call yields an unscored result.
func (e *Evaluator) Evaluate(ctx context.Context, rubric Rubric, source, output string) models.EvaluationResult {
	if e == nil || !e.cfg.Enabled || e.service == nil {
		return models.Unscored("evaluation disabled")
	}

	precheck := e.precheck(output)

	if e.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, e.cfg.CallTimeout)
		defer cancel()
	}

	resp, err := e.service.Generate(ctx, generation.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(rubric, source, output),
		Schema:      Schema(),
		SchemaName:  "evaluation",
		Temperature: e.cfg.Temperature,
		Model:       e.cfg.Model,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "Evaluation call failed", "task", rubric.Task, "error", err)

		return unscored("evaluation unavailable: "+err.Error(), precheck)
	}

	document := resp.Structured
	if document == nil {
		document = generation.StructuredMap(resp.Text)
	}

	if document == nil {
		return unscored("malformed evaluation response", precheck)
	}

	if problems := guardrails.SchemaErrors(Schema(), document); len(problems) > 0 {
		e.logger.WarnContext(ctx, "Evaluation response failed schema check", "errors", problems)

		return unscored("malformed evaluation response", precheck)
	}

	var parsed scoreResponse
	if err := (&generation.Response{Structured: document}).Decode(&parsed); err != nil {
		return unscored("malformed evaluation response", precheck)
	}

	result := models.EvaluationResult{
		Scored:            true,
		Score:             clamp(parsed.Score),
		Rationale:         parsed.Rationale,
		FailureCategories: precheck,
	}

	result.Passed = result.Score >= e.passThreshold()

	if len(parsed.Criteria) > 0 {
		result.CriteriaScores = make(map[string]float64, len(parsed.Criteria))
		for name, score := range parsed.Criteria {
			result.CriteriaScores[name] = clamp(score)
		}
	}

	for _, category := range parsed.FailureCategories {
		fc := models.FailureCategory(category)
		if models.IsKnownFailureCategory(fc) && !result.HasFailure(fc) {
			result.FailureCategories = append(result.FailureCategories, fc)
		}
	}

	return result
}

func (e *Evaluator) passThreshold() float64 {
	if e.cfg.PassThreshold > 0 {
		return e.cfg.PassThreshold
	}

	return DefaultPassThreshold
}

func (e *Evaluator) precheck(output string) []models.FailureCategory {
	var categories []models.FailureCategory

	if e.cfg.MinOutputLength > 0 && utf8.RuneCountInString(strings.TrimSpace(output)) < e.cfg.MinOutputLength {
		categories = append(categories, models.FailureTooShort)
	}

	return categories
}

func unscored(reason string, categories []models.FailureCategory) models.EvaluationResult {
	result := models.Unscored(reason)
	result.FailureCategories = categories

	return result
}

func buildPrompt(rubric Rubric, source, output string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n\n", rubric.Task)

	if source != "" {
		fmt.Fprintf(&b, "Source material:\n%s\n\n", truncate(source, maxPromptSource))
	}

	fmt.Fprintf(&b, "Output to evaluate:\n%s\n\n", truncate(output, maxPromptOutput))

	b.WriteString("Score each criterion from 0 to 1:\n")

	for _, c := range rubric.Criteria {
		fmt.Fprintf(&b, "- %s (weight %.2f): %s\n", c.Name, c.Weight, c.Description)
	}

	b.WriteString("\nReturn the weighted overall score, per-criterion scores, a short rationale, ")
	b.WriteString("and any failure categories that apply from: ")
	b.WriteString(strings.Join(failureCategoryNames(), ", "))
	b.WriteString(".")

	return b.String()
}

func failureCategoryNames() []string {
	return []string{
		string(models.FailureTooShort),
		string(models.FailureOffTopic),
		string(models.FailureUnfaithful),
		string(models.FailureIgnoresInstructions),
		string(models.FailureMalformedOutput),
		string(models.FailureMissingKeywords),
	}
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)

	return string(runes[:limit]) + "..."
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
