package rewrite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dukex/resumeflow/pkg/models"
)

type promptExperience struct {
	Company string   `json:"company"`
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

type promptProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets,omitempty"`
}

type promptContent struct {
	Summary     string             `json:"summary"`
	Experiences []promptExperience `json:"experiences"`
	Projects    []promptProject    `json:"projects,omitempty"`
}

func content(p *models.Profile) string {
	c := promptContent{Summary: p.Summary}

	for _, exp := range p.Experiences {
		c.Experiences = append(c.Experiences, promptExperience{Company: exp.Company, Title: exp.Title, Bullets: exp.Bullets})
	}

	for _, proj := range p.Projects {
		c.Projects = append(c.Projects, promptProject{Name: proj.Name, Description: proj.Description, Bullets: proj.Bullets})
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return p.Summary
	}

	return string(data)
}

func instructionsBlock(in models.Instructions) string {
	var b strings.Builder

	if in.Intent != "" {
		fmt.Fprintf(&b, "User intent: %s\n", in.Intent)
	}

	if len(in.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s\n", strings.Join(in.Constraints, "; "))
	}

	if in.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", in.TargetRole)
	}

	if in.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", in.CompanyName)
	}

	if in.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", in.Tone)
	}

	return b.String()
}

const shapeRules = `Rules:
- Return exactly the same number of experiences, in the same order.
- Return exactly the same number of bullets for every experience.
- Keep every fact; do not invent employers, dates, metrics or achievements.`

func targetedPrompt(req *Request, keywords []string) string {
	var b strings.Builder

	b.WriteString("Rewrite the resume content below for the target job.\n\n")
	b.WriteString(instructionsBlock(req.Instructions))

	if len(keywords) > 0 {
		fmt.Fprintf(&b, "Priority keywords to incorporate naturally: %s\n", strings.Join(keywords, ", "))
	}

	if req.JobAnalysis != nil && len(req.JobAnalysis.EmphasisAreas) > 0 {
		fmt.Fprintf(&b, "The role emphasizes: %s\n", strings.Join(req.JobAnalysis.EmphasisAreas, ", "))
	}

	fmt.Fprintf(&b, "\n%s\n\nResume content:\n%s", shapeRules, content(req.Profile))

	return b.String()
}

func genericPrompt(req *Request) string {
	var b strings.Builder

	b.WriteString("Improve the resume content below: make each bullet more specific, ")
	b.WriteString("action-oriented, professional and concise.\n\n")
	b.WriteString(instructionsBlock(req.Instructions))
	fmt.Fprintf(&b, "\n%s\n\nResume content:\n%s", shapeRules, content(req.Profile))

	return b.String()
}
