// Package profile implements the profile-structuring agent. It structures a
// raw resume when needed and normalizes technology names.
package profile

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

const Name = "profile-structuring"

const systemPrompt = "You are an expert resume parser. Extract only facts present in the resume " +
	"and always return valid JSON."

type Agent struct {
	agents.Base

	deps   agents.Dependencies
	logger *slog.Logger
}

func New(deps agents.Dependencies) *Agent {
	cfg := deps.Settings().Guardrails

	return &Agent{
		Base: deps.NewBase(Name, "Structures the resume profile and normalizes technology names",
			[]guardrails.Validator{
				guardrails.NonEmpty(),
				guardrails.Func("profile_content", hasContent),
				guardrails.MaxLengthOf(cfg.MaxJobDescriptionLength, rawText),
			},
			[]guardrails.Validator{
				guardrails.NonEmpty(),
				guardrails.Struct(),
				guardrails.MaxLengthOf(cfg.MaxOutputLength, summaryText),
			},
		),
		deps:   deps,
		logger: deps.Log(Name),
	}
}

// Schema is the structured profile requested when only raw text is given.
func Schema() map[string]any {
	strs := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":     map[string]any{"type": "string"},
			"email":    map[string]any{"type": "string"},
			"phone":    map[string]any{"type": "string"},
			"location": map[string]any{"type": "string"},
			"links":    strs,
			"summary":  map[string]any{"type": "string"},
			"experiences": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"company":      map[string]any{"type": "string"},
						"title":        map[string]any{"type": "string"},
						"location":     map[string]any{"type": "string"},
						"start_date":   map[string]any{"type": "string"},
						"end_date":     map[string]any{"type": "string"},
						"current":      map[string]any{"type": "boolean"},
						"bullets":      strs,
						"technologies": strs,
					},
					"required": []string{"company", "title"},
				},
			},
			"education": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"institution": map[string]any{"type": "string"},
						"degree":      map[string]any{"type": "string"},
						"field":       map[string]any{"type": "string"},
						"end_date":    map[string]any{"type": "string"},
					},
					"required": []string{"institution"},
				},
			},
			"skills": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"name": map[string]any{"type": "string"}},
					"required":   []string{"name"},
				},
			},
			"projects": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":         map[string]any{"type": "string"},
						"description":  map[string]any{"type": "string"},
						"bullets":      strs,
						"technologies": strs,
					},
					"required": []string{"name"},
				},
			},
			"languages": strs,
		},
		"required": []string{"name", "experiences", "skills"},
	}
}

func (a *Agent) Input(rc *models.RunContext) (any, error) {
	if rc.Profile == nil {
		return nil, nil
	}

	return rc.Profile.Clone(), nil
}

func (a *Agent) Execute(ctx context.Context, payload any, _ *models.RunContext) (any, error) {
	source, ok := payload.(*models.Profile)
	if !ok || source == nil {
		return nil, fmt.Errorf("profile structuring expects a profile, got %T", payload)
	}

	p := source.Clone()

	if needsStructuring(p) {
		structured, err := a.structure(ctx, p.RawText)
		if err != nil {
			return nil, err
		}

		p = merge(p, structured)
	}

	NormalizeProfile(p)

	a.logger.InfoContext(ctx, "Profile structured",
		"experiences", len(p.Experiences),
		"skills", len(p.Skills),
		"bullets", p.BulletCount())

	return p, nil
}

func (a *Agent) Apply(rc *models.RunContext, output any) error {
	p, ok := output.(*models.Profile)
	if !ok {
		return fmt.Errorf("profile structuring produced %T", output)
	}

	rc.Profile = p

	return nil
}

func (a *Agent) structure(ctx context.Context, raw string) (*models.Profile, error) {
	resp, err := a.deps.Generate(ctx, generation.Request{
		System:      systemPrompt,
		Prompt:      "Extract the structured resume from the following text:\n\n" + raw,
		Schema:      Schema(),
		SchemaName:  "profile",
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	var structured models.Profile
	if err := resp.Decode(&structured); err != nil {
		return nil, generation.NewServiceError("structure_profile", generation.KindDecode, err)
	}

	return &structured, nil
}

func needsStructuring(p *models.Profile) bool {
	return strings.TrimSpace(p.RawText) != "" && len(p.Experiences) == 0
}

// merge fills fields missing from base with the structured parse. Fields the
// caller already supplied win.
func merge(base, structured *models.Profile) *models.Profile {
	out := base.Clone()

	if out.Name == "" {
		out.Name = structured.Name
	}

	if out.Email == "" {
		out.Email = structured.Email
	}

	if out.Phone == "" {
		out.Phone = structured.Phone
	}

	if out.Location == "" {
		out.Location = structured.Location
	}

	if out.Summary == "" {
		out.Summary = structured.Summary
	}

	if len(out.Links) == 0 {
		out.Links = structured.Links
	}

	out.Experiences = structured.Experiences

	if len(out.Education) == 0 {
		out.Education = structured.Education
	}

	out.Skills = append(out.Skills, structured.Skills...)

	if len(out.Projects) == 0 {
		out.Projects = structured.Projects
	}

	if len(out.Languages) == 0 {
		out.Languages = structured.Languages
	}

	return out
}

func hasContent(payload any) models.GuardrailVerdict {
	p, ok := payload.(*models.Profile)
	if !ok || p == nil {
		return models.Reject("profile_content", models.ReasonInvalidStructure, "payload is not a profile")
	}

	if strings.TrimSpace(p.Name) == "" && len(p.Experiences) == 0 && strings.TrimSpace(p.RawText) == "" {
		return models.Reject("profile_content", models.ReasonEmptyInput, "profile has no name, experience or resume text")
	}

	return models.Pass("profile_content")
}

func rawText(payload any) (string, bool) {
	p, ok := payload.(*models.Profile)
	if !ok || p == nil {
		return "", false
	}

	return p.RawText, true
}

func summaryText(payload any) (string, bool) {
	p, ok := payload.(*models.Profile)
	if !ok || p == nil {
		return "", false
	}

	return p.Summary, true
}
