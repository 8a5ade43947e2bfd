// Package rewrite implements the content-rewrite agent. It rewrites the
// summary and bullets toward the job's priority skills without changing the
// shape of the resume, and falls back to a generic improvement pass when
// targeted rewrites keep failing.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
)

const Name = "content-rewrite"

const systemPrompt = "You are an expert resume writer. Rewrite content to be impactful and ATS-friendly. " +
	"Never invent employers, dates, metrics or achievements. Always return valid JSON."

// ErrStructureChanged is returned when a rewrite does not keep the resume's
// experience and bullet layout.
var ErrStructureChanged = errors.New("rewrite changed resume structure")

// Request is the payload of the rewrite step.
type Request struct {
	Profile      *models.Profile     `json:"profile"      validate:"required"`
	Instructions models.Instructions `json:"instructions"`
	JobAnalysis  *models.JobAnalysis `json:"job_analysis,omitempty"`
}

// Result is the rewritten profile. Source is the profile before rewriting.
type Result struct {
	Profile          *models.Profile `json:"profile"`
	Source           *models.Profile `json:"-"`
	Degraded         bool            `json:"degraded"`
	TargetedAttempts int             `json:"targeted_attempts"`
	Keywords         []string        `json:"keywords,omitempty"`
	AddedSkills      []string        `json:"added_skills,omitempty"`
	Plan             *EditPlan       `json:"edit_plan,omitempty"`
}

func (r *Result) IsDegraded() bool {
	return r.Degraded
}

type Agent struct {
	agents.Base

	deps   agents.Dependencies
	logger *slog.Logger
}

func New(deps agents.Dependencies) *Agent {
	cfg := deps.Settings().Guardrails

	return &Agent{
		Base: deps.NewBase(Name, "Rewrites summary and bullets toward the job while following the user's instructions",
			[]guardrails.Validator{
				guardrails.NonEmpty(),
				guardrails.Struct(),
			},
			[]guardrails.Validator{
				guardrails.NonEmpty(),
				guardrails.Func("structure", structureUnchanged),
				guardrails.Struct(),
				guardrails.MaxLengthOf(cfg.MaxOutputLength, summaryText),
			},
		),
		deps:   deps,
		logger: deps.Log(Name),
	}
}

type experienceRewrite struct {
	Bullets []string `json:"bullets"`
}

type projectRewrite struct {
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
}

type rewriteResponse struct {
	Summary     string              `json:"summary"`
	Experiences []experienceRewrite `json:"experiences"`
	Projects    []projectRewrite    `json:"projects"`
}

// Schema is the structured response requested for every rewrite call.
func Schema() map[string]any {
	strs := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
			"experiences": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"bullets": strs},
					"required":   []string{"bullets"},
				},
			},
			"projects": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"bullets":     strs,
					},
				},
			},
		},
		"required": []string{"summary", "experiences"},
	}
}

func (a *Agent) Input(rc *models.RunContext) (any, error) {
	if rc.Profile == nil {
		return nil, nil
	}

	return &Request{
		Profile:      rc.Profile.Clone(),
		Instructions: rc.Instructions,
		JobAnalysis:  rc.JobAnalysis,
	}, nil
}

func (a *Agent) Execute(ctx context.Context, payload any, _ *models.RunContext) (any, error) {
	req, ok := payload.(*Request)
	if !ok || req == nil || req.Profile == nil {
		return nil, fmt.Errorf("content rewrite expects a rewrite request, got %T", payload)
	}

	settings := a.deps.Settings().Rewrite
	keywords := priorityKeywords(req, settings.PriorityKeywords)

	result := &Result{Source: req.Profile.Clone(), Keywords: keywords}

	for attempt := 1; attempt <= settings.MaxTargetedAttempts; attempt++ {
		result.TargetedAttempts = attempt

		rewritten, err := a.rewrite(ctx, req.Profile, targetedPrompt(req, keywords), 0.5)
		if err == nil {
			result.Profile = rewritten

			break
		}

		if !unusable(err) {
			return nil, err
		}

		a.logger.WarnContext(ctx, "Targeted rewrite unusable", "attempt", attempt, "error", err)
	}

	if result.Profile == nil {
		a.logger.WarnContext(ctx, "Falling back to generic rewrite", "attempts", result.TargetedAttempts)
		result.Degraded = true

		rewritten, err := a.rewrite(ctx, req.Profile, genericPrompt(req), 0.4)
		switch {
		case err == nil:
			result.Profile = rewritten
		case !unusable(err):
			return nil, err
		default:
			a.logger.WarnContext(ctx, "Generic rewrite unusable, keeping original content", "error", err)
			result.Profile = req.Profile.Clone()
		}
	}

	result.AddedSkills = addMissingSkills(result.Profile, req.JobAnalysis)
	result.Plan = buildEditPlan(req.Profile, result.Profile, keywords, result.AddedSkills, result.Degraded)

	a.logger.InfoContext(ctx, "Rewrite applied", "edits", len(result.Plan.Actions), "sections", result.Plan.SectionsToPrioritize)

	return result, nil
}

func (a *Agent) Apply(rc *models.RunContext, output any) error {
	result, ok := output.(*Result)
	if !ok || result.Profile == nil {
		return fmt.Errorf("content rewrite produced %T", output)
	}

	rc.Profile = result.Profile

	return nil
}

func (a *Agent) rewrite(ctx context.Context, source *models.Profile, prompt string, temperature float64) (*models.Profile, error) {
	resp, err := a.deps.Generate(ctx, generation.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		Schema:      Schema(),
		SchemaName:  "rewrite",
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	var parsed rewriteResponse
	if err := resp.Decode(&parsed); err != nil {
		return nil, generation.NewServiceError("rewrite", generation.KindDecode, err)
	}

	return applyRewrite(source, parsed)
}

// applyRewrite copies rewritten text into a clone of source. The response
// must keep every experience and its bullet count.
func applyRewrite(source *models.Profile, parsed rewriteResponse) (*models.Profile, error) {
	if len(parsed.Experiences) != len(source.Experiences) {
		return nil, fmt.Errorf("%w: %d experiences, expected %d", ErrStructureChanged, len(parsed.Experiences), len(source.Experiences))
	}

	out := source.Clone()

	for i, exp := range parsed.Experiences {
		if len(exp.Bullets) != len(source.Experiences[i].Bullets) {
			return nil, fmt.Errorf("%w: experience %d has %d bullets, expected %d",
				ErrStructureChanged, i, len(exp.Bullets), len(source.Experiences[i].Bullets))
		}

		for j, bullet := range exp.Bullets {
			if bullet = strings.TrimSpace(bullet); bullet != "" {
				out.Experiences[i].Bullets[j] = bullet
			}
		}
	}

	if summary := strings.TrimSpace(parsed.Summary); summary != "" {
		out.Summary = summary
	}

	if len(parsed.Projects) == len(source.Projects) {
		for i, proj := range parsed.Projects {
			if d := strings.TrimSpace(proj.Description); d != "" {
				out.Projects[i].Description = d
			}

			if len(proj.Bullets) == len(source.Projects[i].Bullets) {
				for j, bullet := range proj.Bullets {
					if bullet = strings.TrimSpace(bullet); bullet != "" {
						out.Projects[i].Bullets[j] = bullet
					}
				}
			}
		}
	}

	return out, nil
}

// unusable reports whether err means the response could not be applied, as
// opposed to the service call itself failing.
func unusable(err error) bool {
	if errors.Is(err, ErrStructureChanged) {
		return true
	}

	var serviceErr *generation.ServiceError

	return errors.As(err, &serviceErr) && serviceErr.Kind == generation.KindDecode
}

func priorityKeywords(req *Request, n int) []string {
	if req.JobAnalysis == nil {
		return nil
	}

	keywords := req.JobAnalysis.PrioritySkills(n)
	if len(keywords) >= n {
		return keywords
	}

	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		seen[strings.ToLower(k)] = struct{}{}
	}

	for _, k := range req.JobAnalysis.AllKeywords() {
		if len(keywords) >= n {
			break
		}

		if _, dup := seen[strings.ToLower(k)]; !dup {
			seen[strings.ToLower(k)] = struct{}{}
			keywords = append(keywords, k)
		}
	}

	return keywords
}

// addMissingSkills appends the job's required skills that the profile does
// not list yet and returns their names.
func addMissingSkills(p *models.Profile, analysis *models.JobAnalysis) []string {
	if analysis == nil {
		return nil
	}

	have := make(map[string]struct{}, len(p.Skills))
	for _, name := range p.SkillNames() {
		have[strings.ToLower(name)] = struct{}{}
	}

	var added []string

	for _, req := range analysis.RequiredSkills {
		key := strings.ToLower(strings.TrimSpace(req.Name))
		if key == "" {
			continue
		}

		if _, ok := have[key]; ok {
			continue
		}

		have[key] = struct{}{}
		p.Skills = append(p.Skills, models.Skill{Name: strings.TrimSpace(req.Name)})
		added = append(added, strings.TrimSpace(req.Name))
	}

	return added
}

func structureUnchanged(payload any) models.GuardrailVerdict {
	const name = "structure"

	result, ok := payload.(*Result)
	if !ok || result == nil || result.Profile == nil {
		return models.Reject(name, models.ReasonInvalidStructure, "payload is not a rewrite result")
	}

	if result.Source == nil {
		return models.Pass(name)
	}

	if len(result.Profile.Experiences) != len(result.Source.Experiences) {
		return models.Reject(name, models.ReasonInvalidStructure, "structure_changed: experience count differs")
	}

	for i, exp := range result.Profile.Experiences {
		src := result.Source.Experiences[i]

		if exp.Company != src.Company || exp.Title != src.Title {
			return models.Reject(name, models.ReasonInvalidStructure,
				fmt.Sprintf("structure_changed: experience %d employer or title differs", i))
		}

		if len(exp.Bullets) != len(src.Bullets) {
			return models.Reject(name, models.ReasonInvalidStructure,
				fmt.Sprintf("structure_changed: experience %d bullet count differs", i))
		}
	}

	return models.Pass(name)
}

func summaryText(payload any) (string, bool) {
	result, ok := payload.(*Result)
	if !ok || result == nil || result.Profile == nil {
		return "", false
	}

	return result.Profile.Summary, true
}
