// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/resumeflow/pkg/models"
)

// CreateTestProfile creates a structured profile with default values that can be overridden.
func CreateTestProfile(overrides ...func(*models.Profile)) *models.Profile {
	profile := &models.Profile{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Location: "London",
		Summary:  "Backend engineer building data platforms.",
		Experiences: []models.Experience{
			{
				Company:      "Analytical Engines",
				Title:        "Senior Software Engineer",
				StartDate:    "2021-01",
				Current:      true,
				Bullets:      []string{"Built event pipelines", "Led migration to containers"},
				Technologies: []string{"golang", "k8s", "postgres"},
			},
			{
				Company:   "Difference Labs",
				Title:     "Software Engineer",
				StartDate: "2018-03",
				EndDate:   "2020-12",
				Bullets:   []string{"Maintained billing services"},
			},
		},
		Education: []models.Education{
			{Institution: "University of London", Degree: "BSc", Field: "Mathematics"},
		},
		Skills: []models.Skill{
			{Name: "golang"},
			{Name: "postgres"},
			{Name: "Leadership", Category: models.SkillCategorySoft},
		},
	}

	for _, override := range overrides {
		override(profile)
	}

	return profile
}

// WithRawText replaces the structured content with raw resume text.
func WithRawText(text string) func(*models.Profile) {
	return func(p *models.Profile) {
		p.Experiences = nil
		p.Skills = nil
		p.Summary = ""
		p.RawText = text
	}
}

// WithSkills sets the profile skills.
func WithSkills(names ...string) func(*models.Profile) {
	return func(p *models.Profile) {
		p.Skills = make([]models.Skill, 0, len(names))
		for _, name := range names {
			p.Skills = append(p.Skills, models.Skill{Name: name})
		}
	}
}

// CreateTestJobAnalysis creates a job analysis with default values that can be overridden.
func CreateTestJobAnalysis(overrides ...func(*models.JobAnalysis)) *models.JobAnalysis {
	analysis := &models.JobAnalysis{
		Title:   "Staff Platform Engineer",
		Company: "Acme",
		RequiredSkills: []models.SkillRequirement{
			{Name: "Go", Required: true, Importance: 0.9},
			{Name: "Kubernetes", Required: true, Importance: 0.8},
		},
		PreferredSkills: []models.SkillRequirement{
			{Name: "Kafka", Importance: 0.6},
		},
		ATSKeywords: []string{"go", "kubernetes", "kafka"},
	}

	for _, override := range overrides {
		override(analysis)
	}

	return analysis
}

// JobDescription is a short posting used across tests.
const JobDescription = `Staff Platform Engineer at Acme.
Required: Go, Kubernetes and PostgreSQL. Experience with Kafka and CI/CD is a plus.
You will lead distributed systems work and mentor engineers; strong communication expected.`

// CreateTestRunStatus creates a run status with one completed and one
// pending step. Times are fixed so stored copies compare equal.
func CreateTestRunStatus(requestID string) *models.RunStatus {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	return &models.RunStatus{
		RequestID:   requestID,
		Status:      models.WorkflowStatusRunning,
		CurrentStep: models.StepParseProfile,
		Steps: []models.StepState{
			{Step: models.StepCaptureInstructions, Agent: "instruction-capture", Status: models.StepStatusCompleted, UpdatedAt: at},
			{Step: models.StepParseProfile, Agent: "profile-structuring", Status: models.StepStatusExecuting, RetryCount: 1, UpdatedAt: at},
		},
		CreatedAt: at,
		UpdatedAt: at,
	}
}
