package rewrite

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/resumeflow/pkg/models"
)

type EditActionType string

const (
	ActionRewriteSummary     EditActionType = "rewrite_summary"
	ActionRewriteBullet      EditActionType = "rewrite_bullet"
	ActionRewriteDescription EditActionType = "rewrite_description"
	ActionAddKeyword         EditActionType = "add_keyword"
	ActionEmphasize          EditActionType = "emphasize"
)

const (
	prioritySummary        = 0.9
	priorityKeywordBullet  = 0.8
	priorityAddedSkill     = 0.7
	priorityEmphasis       = 0.6
	priorityGenericBullet  = 0.5
	priorityProjectContent = 0.4
)

// EditAction is one change the rewrite made. Target names the edited field,
// e.g. "experience_0_bullet_1".
type EditAction struct {
	Type     EditActionType `json:"action_type"`
	Target   string         `json:"target"`
	OldValue string         `json:"old_value,omitempty"`
	NewValue string         `json:"new_value,omitempty"`
	Reason   string         `json:"reason"`
	Priority float64        `json:"priority"`
}

// EditPlan records what the rewrite changed and why, ordered by priority.
type EditPlan struct {
	Summary              string       `json:"summary"`
	Actions              []EditAction `json:"actions"`
	KeywordsToAdd        []string     `json:"keywords_to_add,omitempty"`
	KeywordsToEmphasize  []string     `json:"keywords_to_emphasize,omitempty"`
	SectionsToPrioritize []string     `json:"sections_to_prioritize,omitempty"`
}

// buildEditPlan derives the plan by comparing the rewritten profile with its
// source.
func buildEditPlan(source, rewritten *models.Profile, keywords, addedSkills []string, degraded bool) *EditPlan {
	plan := &EditPlan{KeywordsToAdd: addedSkills}
	sections := make(map[string]bool)

	reason := "targets the job's priority keywords"
	if degraded {
		reason = "generic clarity and impact improvement"
	}

	if source.Summary != rewritten.Summary {
		sections["summary"] = true
		plan.Actions = append(plan.Actions, EditAction{
			Type:     ActionRewriteSummary,
			Target:   "summary",
			OldValue: source.Summary,
			NewValue: rewritten.Summary,
			Reason:   reason,
			Priority: prioritySummary,
		})
	}

	for i, exp := range rewritten.Experiences {
		for j, bullet := range exp.Bullets {
			old := source.Experiences[i].Bullets[j]
			if old == bullet {
				continue
			}

			sections["experience"] = true

			priority := priorityGenericBullet
			if containsAny(bullet, keywords) {
				priority = priorityKeywordBullet
			}

			plan.Actions = append(plan.Actions, EditAction{
				Type:     ActionRewriteBullet,
				Target:   fmt.Sprintf("experience_%d_bullet_%d", i, j),
				OldValue: old,
				NewValue: bullet,
				Reason:   reason,
				Priority: priority,
			})
		}
	}

	if len(rewritten.Projects) == len(source.Projects) {
		for i, proj := range rewritten.Projects {
			src := source.Projects[i]

			if proj.Description != src.Description {
				sections["projects"] = true
				plan.Actions = append(plan.Actions, EditAction{
					Type:     ActionRewriteDescription,
					Target:   fmt.Sprintf("project_%d_description", i),
					OldValue: src.Description,
					NewValue: proj.Description,
					Reason:   reason,
					Priority: priorityProjectContent,
				})
			}

			if len(proj.Bullets) != len(src.Bullets) {
				continue
			}

			for j, bullet := range proj.Bullets {
				if bullet == src.Bullets[j] {
					continue
				}

				sections["projects"] = true
				plan.Actions = append(plan.Actions, EditAction{
					Type:     ActionRewriteBullet,
					Target:   fmt.Sprintf("project_%d_bullet_%d", i, j),
					OldValue: src.Bullets[j],
					NewValue: bullet,
					Reason:   reason,
					Priority: priorityProjectContent,
				})
			}
		}
	}

	for _, skill := range addedSkills {
		sections["skills"] = true
		plan.Actions = append(plan.Actions, EditAction{
			Type:     ActionAddKeyword,
			Target:   "skills",
			NewValue: skill,
			Reason:   "required by the job and missing from the profile",
			Priority: priorityAddedSkill,
		})
	}

	before := strings.ToLower(content(source))
	after := strings.ToLower(content(rewritten))

	for _, keyword := range keywords {
		k := strings.ToLower(keyword)
		if k == "" || strings.Contains(before, k) || !strings.Contains(after, k) {
			continue
		}

		plan.KeywordsToEmphasize = append(plan.KeywordsToEmphasize, keyword)
		plan.Actions = append(plan.Actions, EditAction{
			Type:     ActionEmphasize,
			Target:   "keywords",
			NewValue: keyword,
			Reason:   "priority keyword now surfaced in the rewritten content",
			Priority: priorityEmphasis,
		})
	}

	slices.SortStableFunc(plan.Actions, func(a, b EditAction) int {
		return cmp.Compare(b.Priority, a.Priority)
	})

	for _, section := range []string{"summary", "experience", "projects", "skills"} {
		if sections[section] {
			plan.SectionsToPrioritize = append(plan.SectionsToPrioritize, section)
		}
	}

	plan.Summary = fmt.Sprintf("%d edits across %d sections, %d skills added, %d keywords emphasized",
		len(plan.Actions), len(plan.SectionsToPrioritize), len(addedSkills), len(plan.KeywordsToEmphasize))

	return plan
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)

	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}

	return false
}
