package models

import (
	"sort"
	"strings"
)

// Instructions holds the user's tailoring intent captured from free text.
type Instructions struct {
	Raw         string   `json:"raw"`
	Intent      string   `json:"intent"                 validate:"required"`
	Constraints []string `json:"constraints,omitempty"`
	TargetRole  string   `json:"target_role,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
	Tone        string   `json:"tone,omitempty"`
}

type SkillRequirement struct {
	Name           string   `json:"name"                   validate:"required"`
	Required       bool     `json:"required"`
	Importance     float64  `json:"importance"             validate:"gte=0,lte=1"`
	MentionedCount int      `json:"mentioned_count,omitempty"`
	Context        []string `json:"context,omitempty"`
}

type Responsibility struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	Importance  float64  `json:"importance,omitempty"`
}

// JobAnalysis is the structured reading of a job description.
type JobAnalysis struct {
	Title                 string             `json:"title,omitempty"`
	Company               string             `json:"company,omitempty"`
	Location              string             `json:"location,omitempty"`
	RequiredSkills        []SkillRequirement `json:"required_skills,omitempty"  validate:"dive"`
	PreferredSkills       []SkillRequirement `json:"preferred_skills,omitempty" validate:"dive"`
	Responsibilities      []Responsibility   `json:"responsibilities,omitempty"`
	ExperienceYears       *int               `json:"experience_years,omitempty"`
	EducationRequirements []string           `json:"education_requirements,omitempty"`
	EmphasisAreas         []string           `json:"emphasis_areas,omitempty"`
	Priorities            map[string]float64 `json:"priorities,omitempty"`
	ATSKeywords           []string           `json:"ats_keywords,omitempty"`
	TechnicalKeywords     []string           `json:"technical_keywords,omitempty"`
	SoftSkills            []string           `json:"soft_skills,omitempty"`
}

// AllKeywords returns required skills, preferred skills, ATS and technical
// keywords, deduplicated case-insensitively, keeping first-seen order.
func (j *JobAnalysis) AllKeywords() []string {
	if j == nil {
		return nil
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)

	add := func(k string) {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			return
		}

		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(k))
	}

	for _, s := range j.RequiredSkills {
		add(s.Name)
	}

	for _, s := range j.PreferredSkills {
		add(s.Name)
	}

	for _, k := range j.ATSKeywords {
		add(k)
	}

	for _, k := range j.TechnicalKeywords {
		add(k)
	}

	return out
}

// PrioritySkills returns up to n skill names ordered by weighted importance.
// Required skills weigh 1.5x. Ties keep declaration order.
func (j *JobAnalysis) PrioritySkills(n int) []string {
	if j == nil {
		return nil
	}

	type weighted struct {
		name  string
		score float64
	}

	all := make([]weighted, 0, len(j.RequiredSkills)+len(j.PreferredSkills))
	seen := make(map[string]struct{})

	for _, s := range j.RequiredSkills {
		key := strings.ToLower(s.Name)
		if _, ok := seen[key]; ok || key == "" {
			continue
		}

		seen[key] = struct{}{}
		all = append(all, weighted{name: s.Name, score: importance(s.Importance, 0.8) * 1.5})
	}

	for _, s := range j.PreferredSkills {
		key := strings.ToLower(s.Name)
		if _, ok := seen[key]; ok || key == "" {
			continue
		}

		seen[key] = struct{}{}
		all = append(all, weighted{name: s.Name, score: importance(s.Importance, 0.6)})
	}

	sort.SliceStable(all, func(a, b int) bool { return all[a].score > all[b].score })

	if n > 0 && len(all) > n {
		all = all[:n]
	}

	names := make([]string, len(all))
	for i, w := range all {
		names[i] = w.name
	}

	return names
}

func importance(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}

	return v
}
