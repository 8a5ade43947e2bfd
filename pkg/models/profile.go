// Package models defines the core domain models for resume tailoring workflows
package models

// Profile is the structured resume document threaded through a workflow run.
type Profile struct {
	Name           string          `json:"name"                     validate:"required"`
	Email          string          `json:"email,omitempty"          validate:"omitempty,email"`
	Phone          string          `json:"phone,omitempty"`
	Location       string          `json:"location,omitempty"`
	Links          []string        `json:"links,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Experiences    []Experience    `json:"experiences,omitempty"    validate:"dive"`
	Education      []Education     `json:"education,omitempty"      validate:"dive"`
	Skills         []Skill         `json:"skills,omitempty"         validate:"dive"`
	Projects       []Project       `json:"projects,omitempty"       validate:"dive"`
	Certifications []Certification `json:"certifications,omitempty" validate:"dive"`
	Languages      []string        `json:"languages,omitempty"`
	RawText        string          `json:"raw_text,omitempty"`
}

type Experience struct {
	Company      string   `json:"company"                validate:"required"`
	Title        string   `json:"title"                  validate:"required"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Current      bool     `json:"current,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

type Education struct {
	Institution    string   `json:"institution"               validate:"required"`
	Degree         string   `json:"degree,omitempty"`
	Field          string   `json:"field,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	GPA            string   `json:"gpa,omitempty"`
	Honors         []string `json:"honors,omitempty"`
	RelevantCourse []string `json:"relevant_coursework,omitempty"`
}

// SkillCategory groups skills for ordering and display.
type SkillCategory string

const (
	SkillCategoryLanguage  SkillCategory = "programming_language"
	SkillCategoryFramework SkillCategory = "framework"
	SkillCategoryDatabase  SkillCategory = "database"
	SkillCategoryCloud     SkillCategory = "cloud"
	SkillCategoryTool      SkillCategory = "tool"
	SkillCategorySoft      SkillCategory = "soft_skill"
	SkillCategoryOther     SkillCategory = "other"
)

type Skill struct {
	Name     string        `json:"name"               validate:"required"`
	Category SkillCategory `json:"category,omitempty"`
}

type Project struct {
	Name         string   `json:"name"                   validate:"required"`
	Description  string   `json:"description,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
}

type Certification struct {
	Name   string `json:"name"             validate:"required"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

// Clone returns a deep copy so agents can edit a profile without touching
// payloads already recorded in the audit trail.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	out := *p
	out.Links = cloneStrings(p.Links)
	out.Languages = cloneStrings(p.Languages)

	if p.Experiences != nil {
		out.Experiences = make([]Experience, len(p.Experiences))
		for i, exp := range p.Experiences {
			exp.Bullets = cloneStrings(exp.Bullets)
			exp.Technologies = cloneStrings(exp.Technologies)
			out.Experiences[i] = exp
		}
	}

	if p.Education != nil {
		out.Education = make([]Education, len(p.Education))
		for i, edu := range p.Education {
			edu.Honors = cloneStrings(edu.Honors)
			edu.RelevantCourse = cloneStrings(edu.RelevantCourse)
			out.Education[i] = edu
		}
	}

	if p.Skills != nil {
		out.Skills = append([]Skill(nil), p.Skills...)
	}

	if p.Projects != nil {
		out.Projects = make([]Project, len(p.Projects))
		for i, proj := range p.Projects {
			proj.Bullets = cloneStrings(proj.Bullets)
			proj.Technologies = cloneStrings(proj.Technologies)
			out.Projects[i] = proj
		}
	}

	if p.Certifications != nil {
		out.Certifications = append([]Certification(nil), p.Certifications...)
	}

	return &out
}

// SkillNames returns the skill names in profile order.
func (p *Profile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}

	return names
}

// BulletCount is the number of experience and project bullets in the profile.
func (p *Profile) BulletCount() int {
	count := 0
	for _, exp := range p.Experiences {
		count += len(exp.Bullets)
	}

	for _, proj := range p.Projects {
		count += len(proj.Bullets)
	}

	return count
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}

	return append([]string(nil), in...)
}
