package assemble

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/dukex/resumeflow/pkg/models"
)

// Clean collapses whitespace and drops empty or duplicate bullets and
// skills. Experience order is kept.
func Clean(p *models.Profile) {
	p.Summary = squash(p.Summary)

	for i := range p.Experiences {
		p.Experiences[i].Bullets = uniqueLines(p.Experiences[i].Bullets)
	}

	for i := range p.Projects {
		p.Projects[i].Description = squash(p.Projects[i].Description)
		p.Projects[i].Bullets = uniqueLines(p.Projects[i].Bullets)
	}

	seen := make(map[string]struct{}, len(p.Skills))
	skills := p.Skills[:0]

	for _, skill := range p.Skills {
		skill.Name = squash(skill.Name)
		key := strings.ToLower(skill.Name)

		if key == "" {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		skills = append(skills, skill)
	}

	p.Skills = skills
}

// OrderSkills moves the job's priority skills to the front, in priority
// order. Remaining skills keep their relative order.
func OrderSkills(p *models.Profile, analysis *models.JobAnalysis) {
	if analysis == nil || len(p.Skills) == 0 {
		return
	}

	rank := make(map[string]int)
	for i, name := range analysis.PrioritySkills(0) {
		rank[strings.ToLower(name)] = i
	}

	position := func(s models.Skill) int {
		if r, ok := rank[strings.ToLower(s.Name)]; ok {
			return r
		}

		return len(rank)
	}

	sort.SliceStable(p.Skills, func(i, j int) bool {
		return position(p.Skills[i]) < position(p.Skills[j])
	})
}

// Changes describes the differences between the structured profile and
// the final one.
func Changes(before, after *models.Profile) []string {
	if before == nil {
		return []string{"Assembled the tailored resume"}
	}

	var changes []string

	if before.Summary != after.Summary {
		changes = append(changes, "Rewrote the professional summary")
	}

	rewritten := 0

	for i, exp := range after.Experiences {
		if i >= len(before.Experiences) {
			break
		}

		for j, bullet := range exp.Bullets {
			if j >= len(before.Experiences[i].Bullets) || before.Experiences[i].Bullets[j] != bullet {
				rewritten++
			}
		}
	}

	if rewritten > 0 {
		changes = append(changes, fmt.Sprintf("Rewrote %d experience bullets", rewritten))
	}

	had := make(map[string]struct{}, len(before.Skills))
	for _, name := range before.SkillNames() {
		had[strings.ToLower(name)] = struct{}{}
	}

	var added []string

	for _, name := range after.SkillNames() {
		if _, ok := had[strings.ToLower(name)]; !ok {
			added = append(added, name)
		}
	}

	if len(added) > 0 {
		changes = append(changes, "Added skills: "+strings.Join(added, ", "))
	}

	if len(after.Skills) > 0 && !sameOrder(before.SkillNames(), after.SkillNames()) {
		changes = append(changes, "Reordered skills by job priority")
	}

	if len(changes) == 0 {
		changes = append(changes, "No content changes were needed")
	}

	return changes
}

// FallbackNotes builds tailoring notes without the generation service.
func FallbackNotes(instructions models.Instructions, changes []string) string {
	var b strings.Builder

	b.WriteString("Your resume was tailored")

	if instructions.TargetRole != "" {
		fmt.Fprintf(&b, " for the %s role", instructions.TargetRole)
	}

	if instructions.CompanyName != "" {
		fmt.Fprintf(&b, " at %s", instructions.CompanyName)
	}

	b.WriteString(". ")
	b.WriteString(strings.Join(changes, ". "))
	b.WriteString(".")

	return b.String()
}

// sameOrder reports whether the skills present in both lists appear in
// the same relative order.
func sameOrder(before, after []string) bool {
	return slices.Equal(common(before, after), common(after, before))
}

func common(names, other []string) []string {
	present := make(map[string]struct{}, len(other))
	for _, name := range other {
		present[strings.ToLower(name)] = struct{}{}
	}

	out := make([]string, 0, len(names))

	for _, name := range names {
		if _, ok := present[strings.ToLower(name)]; ok {
			out = append(out, strings.ToLower(name))
		}
	}

	return out
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func uniqueLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = squash(line)
		key := strings.ToLower(line)

		if key == "" {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, line)
	}

	return out
}
