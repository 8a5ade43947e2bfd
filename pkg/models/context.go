package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunContext is the mutable state of one workflow run. It is owned by a
// single engine run and is not safe for concurrent use.
type RunContext struct {
	requestID  string
	createdAt  time.Time
	auditTrail []AgentInvocationRecord

	Profile        *Profile
	Instructions   Instructions
	JobDescription string
	JobAnalysis    *JobAnalysis
	TailoringNotes string
}

// NewRunContext creates a context with a fresh request id.
func NewRunContext(profile *Profile, instructions string, jobDescription string) *RunContext {
	return &RunContext{
		requestID:      "run-" + uuid.New().String(),
		createdAt:      time.Now().UTC(),
		Profile:        profile,
		Instructions:   Instructions{Raw: instructions},
		JobDescription: jobDescription,
	}
}

func (rc *RunContext) RequestID() string {
	return rc.requestID
}

func (rc *RunContext) CreatedAt() time.Time {
	return rc.createdAt
}

// HasJobDescription reports whether the optional job analysis step applies.
func (rc *RunContext) HasJobDescription() bool {
	return rc.JobDescription != ""
}

// AppendRecord adds a step record to the end of the audit trail.
func (rc *RunContext) AppendRecord(record AgentInvocationRecord) {
	rc.auditTrail = append(rc.auditTrail, record)
}

// AuditTrail returns a copy of the records in execution order.
func (rc *RunContext) AuditTrail() []AgentInvocationRecord {
	out := make([]AgentInvocationRecord, len(rc.auditTrail))
	copy(out, rc.auditTrail)

	return out
}

func (rc *RunContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RequestID      string                  `json:"request_id"`
		CreatedAt      time.Time               `json:"created_at"`
		Profile        *Profile                `json:"profile,omitempty"`
		Instructions   Instructions            `json:"instructions"`
		JobDescription string                  `json:"job_description,omitempty"`
		JobAnalysis    *JobAnalysis            `json:"job_analysis,omitempty"`
		TailoringNotes string                  `json:"tailoring_notes,omitempty"`
		AuditTrail     []AgentInvocationRecord `json:"audit_trail"`
	}{
		RequestID:      rc.requestID,
		CreatedAt:      rc.createdAt,
		Profile:        rc.Profile,
		Instructions:   rc.Instructions,
		JobDescription: rc.JobDescription,
		JobAnalysis:    rc.JobAnalysis,
		TailoringNotes: rc.TailoringNotes,
		AuditTrail:     rc.auditTrail,
	})
}
