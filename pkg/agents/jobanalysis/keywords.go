package jobanalysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dukex/resumeflow/pkg/models"
)

var technicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(python|java|javascript|typescript|golang|go|react|node\.js|aws|azure|gcp|docker|kubernetes|sql|nosql|mongodb|postgresql|redis|kafka|git|agile|scrum)\b`),
	regexp.MustCompile(`(?i)\b(machine learning|deep learning|neural networks|nlp|computer vision|data science|analytics)\b`),
	regexp.MustCompile(`(?i)\b(distributed systems|microservices|api|rest|graphql|serverless|cloud|devops|infrastructure)\b`),
	regexp.MustCompile(`(?i)(ci/cd)`),
}

var softSkillPattern = regexp.MustCompile(`(?i)\b(leadership|communication|collaboration|teamwork|problem solving|analytical|creative|strategic|detail-oriented|mentoring|ownership)\b`)

// ExtractKeywords fills the ATS, technical and soft skill keyword lists of
// analysis from the posting text and the extracted skills. Lists are
// lowercase and sorted.
func ExtractKeywords(analysis *models.JobAnalysis, text string) {
	ats := newSet()
	technical := newSet()
	soft := newSet()

	for _, pattern := range technicalPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			technical.add(match)
		}
	}

	for _, skills := range [][]models.SkillRequirement{analysis.RequiredSkills, analysis.PreferredSkills} {
		for _, skill := range skills {
			ats.add(skill.Name)
			technical.add(skill.Name)
		}
	}

	for _, r := range analysis.Responsibilities {
		for _, keyword := range r.Keywords {
			ats.add(keyword)
			technical.add(keyword)
		}
	}

	for _, match := range softSkillPattern.FindAllString(text, -1) {
		soft.add(match)
	}

	analysis.ATSKeywords = ats.sorted()
	analysis.TechnicalKeywords = technical.sorted()
	analysis.SoftSkills = soft.sorted()
}

type set map[string]struct{}

func newSet() set {
	return set{}
}

func (s set) add(v string) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}

	sort.Strings(out)

	return out
}
