package web

import (
	"time"

	"github.com/dukex/resumeflow/pkg/models"
)

// CreateRunRequest starts a tailoring run. The profile is given inline or by
// id in the profile store; the job description likewise.
type CreateRunRequest struct {
	Profile          *models.Profile `json:"profile,omitempty"            validate:"required_without=ProfileID"`
	ProfileID        string          `json:"profile_id,omitempty"         validate:"required_without=Profile"`
	Instructions     string          `json:"instructions"                 validate:"required"`
	JobDescription   string          `json:"job_description,omitempty"`
	JobDescriptionID string          `json:"job_description_id,omitempty" validate:"excluded_with=JobDescription"`
}

// CreateRunResponse is returned when a run is accepted for background
// execution.
type CreateRunResponse struct {
	RequestID string                `json:"request_id"`
	Status    models.WorkflowStatus `json:"status"`
	StatusURL string                `json:"status_url"`
}

type AgentResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Checkers  map[string]string `json:"checkers"`
	Timestamp time.Time         `json:"timestamp"`
}
