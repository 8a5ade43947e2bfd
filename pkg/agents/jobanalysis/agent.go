// Package jobanalysis implements the job-analysis agent, which extracts
// skills, responsibilities and ATS keywords from a job description.
package jobanalysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
)

const Name = "job-analysis"

const (
	systemPrompt = "You are an expert at analyzing job descriptions and extracting ATS-relevant information. " +
		"Always return valid JSON."
	maxPromptText = 4000

	defaultRequiredImportance  = 0.8
	defaultPreferredImportance = 0.6
	defaultResponsibility      = 0.7
)

type Agent struct {
	agents.Base

	deps   agents.Dependencies
	logger *slog.Logger
}

func New(deps agents.Dependencies) *Agent {
	cfg := deps.Settings().Guardrails

	return &Agent{
		Base: deps.NewBase(Name, "Extracts required skills, preferred skills, responsibilities and ATS keywords from a job description",
			[]guardrails.Validator{
				guardrails.Sanitize(),
				guardrails.NonEmpty(),
				guardrails.MaxLength(cfg.MaxJobDescriptionLength),
			},
			[]guardrails.Validator{
				guardrails.NonEmpty(),
				guardrails.Struct(),
				guardrails.Func("jd_keywords", hasKeywords),
			},
		),
		deps:   deps,
		logger: deps.Log(Name),
	}
}

type skillResponse struct {
	Skill          string   `json:"skill"`
	Importance     *float64 `json:"importance"`
	MentionedCount int      `json:"mentioned_count"`
	Context        []string `json:"context"`
}

type responsibilityResponse struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Importance  *float64 `json:"importance"`
}

type analysisResponse struct {
	Title                 string                   `json:"title"`
	Company               string                   `json:"company"`
	Location              string                   `json:"location"`
	RequiredSkills        []skillResponse          `json:"required_skills"`
	PreferredSkills       []skillResponse          `json:"preferred_skills"`
	Responsibilities      []responsibilityResponse `json:"responsibilities"`
	ExperienceYears       *int                     `json:"experience_years"`
	EducationRequirements []string                 `json:"education_requirements"`
	EmphasisAreas         []string                 `json:"emphasis_areas"`
	Priorities            map[string]float64       `json:"priorities"`
}

// Schema is the structured response requested from the generation service.
func Schema() map[string]any {
	strs := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	skill := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skill":           map[string]any{"type": "string"},
			"importance":      map[string]any{"type": "number"},
			"mentioned_count": map[string]any{"type": "integer"},
			"context":         strs,
		},
		"required": []string{"skill"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":            map[string]any{"type": "string"},
			"company":          map[string]any{"type": "string"},
			"location":         map[string]any{"type": "string"},
			"required_skills":  map[string]any{"type": "array", "items": skill},
			"preferred_skills": map[string]any{"type": "array", "items": skill},
			"responsibilities": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"keywords":    strs,
						"importance":  map[string]any{"type": "number"},
					},
				},
			},
			"experience_years":       map[string]any{"type": []string{"integer", "null"}},
			"education_requirements": strs,
			"emphasis_areas":         strs,
			"priorities": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "number"},
			},
		},
		"required": []string{"required_skills", "preferred_skills", "responsibilities"},
	}
}

func (a *Agent) Input(rc *models.RunContext) (any, error) {
	return rc.JobDescription, nil
}

func (a *Agent) Execute(ctx context.Context, payload any, _ *models.RunContext) (any, error) {
	text, ok := payload.(string)
	if !ok {
		return nil, fmt.Errorf("job analysis expects text, got %T", payload)
	}

	resp, err := a.deps.Generate(ctx, generation.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(text),
		Schema:      Schema(),
		SchemaName:  "job_analysis",
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	var parsed analysisResponse
	if err := resp.Decode(&parsed); err != nil {
		a.logger.WarnContext(ctx, "Job analysis response unusable, keeping keyword extraction only", "error", err)
		parsed = analysisResponse{}
	}

	analysis := build(parsed)
	ExtractKeywords(analysis, text)

	a.logger.InfoContext(ctx, "Job description analyzed",
		"required_skills", len(analysis.RequiredSkills),
		"preferred_skills", len(analysis.PreferredSkills),
		"ats_keywords", len(analysis.ATSKeywords))

	return analysis, nil
}

func (a *Agent) Apply(rc *models.RunContext, output any) error {
	analysis, ok := output.(*models.JobAnalysis)
	if !ok {
		return fmt.Errorf("job analysis produced %T", output)
	}

	rc.JobAnalysis = analysis

	if rc.Instructions.TargetRole == "" {
		rc.Instructions.TargetRole = analysis.Title
	}

	if rc.Instructions.CompanyName == "" {
		rc.Instructions.CompanyName = analysis.Company
	}

	return nil
}

func build(parsed analysisResponse) *models.JobAnalysis {
	analysis := &models.JobAnalysis{
		Title:                 parsed.Title,
		Company:               parsed.Company,
		Location:              parsed.Location,
		ExperienceYears:       parsed.ExperienceYears,
		EducationRequirements: parsed.EducationRequirements,
		EmphasisAreas:         parsed.EmphasisAreas,
		Priorities:            parsed.Priorities,
	}

	analysis.RequiredSkills = requirements(parsed.RequiredSkills, true, defaultRequiredImportance)
	analysis.PreferredSkills = requirements(parsed.PreferredSkills, false, defaultPreferredImportance)

	for _, r := range parsed.Responsibilities {
		if strings.TrimSpace(r.Description) == "" {
			continue
		}

		analysis.Responsibilities = append(analysis.Responsibilities, models.Responsibility{
			Description: strings.TrimSpace(r.Description),
			Keywords:    r.Keywords,
			Importance:  importance(r.Importance, defaultResponsibility),
		})
	}

	return analysis
}

func requirements(skills []skillResponse, required bool, fallback float64) []models.SkillRequirement {
	out := make([]models.SkillRequirement, 0, len(skills))

	for _, s := range skills {
		name := strings.TrimSpace(s.Skill)
		if name == "" {
			continue
		}

		mentioned := s.MentionedCount
		if mentioned <= 0 {
			mentioned = 1
		}

		out = append(out, models.SkillRequirement{
			Name:           name,
			Required:       required,
			Importance:     importance(s.Importance, fallback),
			MentionedCount: mentioned,
			Context:        s.Context,
		})
	}

	return out
}

func importance(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}

	return min(max(*v, 0), 1)
}

func buildPrompt(text string) string {
	if utf8.RuneCountInString(text) > maxPromptText {
		text = string([]rune(text)[:maxPromptText])
	}

	return fmt.Sprintf(`Analyze the following job description and extract structured information.

Job Description:
%s

Extract the title, company, location, required and preferred skills with importance from 0 to 1,
responsibilities with keywords, years of experience, education requirements, emphasis areas
and priorities. Be thorough: list every technical skill, tool, framework and technology mentioned.`, text)
}

func hasKeywords(payload any) models.GuardrailVerdict {
	analysis, ok := payload.(*models.JobAnalysis)
	if !ok || analysis == nil {
		return models.Reject("jd_keywords", models.ReasonInvalidStructure, "payload is not a job analysis")
	}

	if len(analysis.AllKeywords()) == 0 {
		return models.Warn("jd_keywords", string(models.FailureMissingKeywords), "job analysis found no keywords")
	}

	return models.Pass("jd_keywords")
}
