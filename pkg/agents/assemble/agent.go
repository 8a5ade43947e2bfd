// Package assemble implements the assembly agent, which produces the final
// tailored profile and a short note describing what changed.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
)

const Name = "assembly"

const systemPrompt = "You are an expert career coach. Summarize resume tailoring changes in one short paragraph."

// Request is the payload of the assembly step. Baseline is the structured
// profile before any rewriting, when available.
type Request struct {
	Profile      *models.Profile     `json:"profile"            validate:"required"`
	Baseline     *models.Profile     `json:"-"`
	Instructions models.Instructions `json:"instructions"`
	JobAnalysis  *models.JobAnalysis `json:"job_analysis,omitempty"`
}

// Assembled is the final output of the workflow.
type Assembled struct {
	Profile *models.Profile `json:"profile"`
	Notes   string          `json:"notes"`
	Changes []string        `json:"changes,omitempty"`
}

type Agent struct {
	agents.Base

	deps   agents.Dependencies
	logger *slog.Logger
}

func New(deps agents.Dependencies) *Agent {
	cfg := deps.Settings().Guardrails

	return &Agent{
		Base: deps.NewBase(Name, "Orders and cleans the tailored profile and writes tailoring notes",
			[]guardrails.Validator{
				guardrails.NonEmpty(),
				guardrails.Struct(),
			},
			[]guardrails.Validator{
				guardrails.NonEmpty(),
				guardrails.Struct(),
				guardrails.MaxLengthOf(cfg.MaxOutputLength, notesText),
			},
		),
		deps:   deps,
		logger: deps.Log(Name),
	}
}

func (a *Agent) Input(rc *models.RunContext) (any, error) {
	if rc.Profile == nil {
		return nil, nil
	}

	return &Request{
		Profile:      rc.Profile.Clone(),
		Baseline:     baseline(rc),
		Instructions: rc.Instructions,
		JobAnalysis:  rc.JobAnalysis,
	}, nil
}

func (a *Agent) Execute(ctx context.Context, payload any, _ *models.RunContext) (any, error) {
	req, ok := payload.(*Request)
	if !ok || req == nil || req.Profile == nil {
		return nil, fmt.Errorf("assembly expects an assembly request, got %T", payload)
	}

	p := req.Profile.Clone()
	Clean(p)
	OrderSkills(p, req.JobAnalysis)

	changes := Changes(req.Baseline, p)

	notes, err := a.notes(ctx, req, changes)
	if err != nil {
		return nil, err
	}

	return &Assembled{Profile: p, Notes: notes, Changes: changes}, nil
}

func (a *Agent) Apply(rc *models.RunContext, output any) error {
	assembled, ok := output.(*Assembled)
	if !ok || assembled.Profile == nil {
		return fmt.Errorf("assembly produced %T", output)
	}

	rc.Profile = assembled.Profile
	rc.TailoringNotes = assembled.Notes

	return nil
}

func (a *Agent) notes(ctx context.Context, req *Request, changes []string) (string, error) {
	fallback := FallbackNotes(req.Instructions, changes)

	var prompt strings.Builder

	prompt.WriteString("Write one paragraph for the candidate describing how their resume was tailored.\n\n")

	if req.Instructions.Intent != "" {
		fmt.Fprintf(&prompt, "Their request: %s\n", req.Instructions.Intent)
	}

	if req.JobAnalysis != nil && req.JobAnalysis.Title != "" {
		fmt.Fprintf(&prompt, "Target job: %s\n", req.JobAnalysis.Title)
	}

	prompt.WriteString("Changes:\n")

	for _, c := range changes {
		fmt.Fprintf(&prompt, "- %s\n", c)
	}

	resp, err := a.deps.Generate(ctx, generation.Request{
		System:      systemPrompt,
		Prompt:      prompt.String(),
		Temperature: 0.3,
		MaxTokens:   300,
	})
	if err != nil {
		if generation.IsTransient(err) {
			return "", err
		}

		a.logger.WarnContext(ctx, "Tailoring notes generation failed, using summary of changes", "error", err)

		return fallback, nil
	}

	text := strings.TrimSpace(generation.StripCodeFence(resp.Text))
	if text == "" {
		return fallback, nil
	}

	return text, nil
}

func baseline(rc *models.RunContext) *models.Profile {
	for _, record := range rc.AuditTrail() {
		if record.Step != models.StepParseProfile || record.Status != models.StepStatusCompleted {
			continue
		}

		if p, ok := record.Output.(*models.Profile); ok {
			return p
		}
	}

	return nil
}

func notesText(payload any) (string, bool) {
	assembled, ok := payload.(*Assembled)
	if !ok || assembled == nil {
		return "", false
	}

	return assembled.Notes, true
}
