package models

import "time"

// WorkflowStatus is the overall outcome of a workflow run.
type WorkflowStatus string

const (
	WorkflowStatusRunning   WorkflowStatus = "running"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusDegraded  WorkflowStatus = "degraded"
	WorkflowStatusPartial   WorkflowStatus = "partial"
)

// WorkflowResult is returned by every run. A partial result carries the
// records of all completed steps plus the failing one.
type WorkflowResult struct {
	RequestID      string                  `json:"request_id"`
	Status         WorkflowStatus          `json:"status"`
	FinalProfile   *Profile                `json:"final_profile,omitempty"`
	TailoringNotes string                  `json:"tailoring_notes,omitempty"`
	AuditTrail     []AgentInvocationRecord `json:"audit_trail"`
	FailedStep     StepName                `json:"failed_step,omitempty"`
	ErrorKind      ErrorKind               `json:"error_kind,omitempty"`
	FailureReason  string                  `json:"failure_reason,omitempty"`
	StartedAt      time.Time               `json:"started_at"`
	FinishedAt     time.Time               `json:"finished_at"`
}

func (r *WorkflowResult) Partial() bool {
	return r.Status == WorkflowStatusPartial
}

// Err returns the step error behind a partial result, or nil.
func (r *WorkflowResult) Err() error {
	if !r.Partial() {
		return nil
	}

	return &StepError{Step: r.FailedStep, Kind: r.ErrorKind, Reason: r.FailureReason}
}

// CompletedSteps counts records whose step completed.
func (r *WorkflowResult) CompletedSteps() int {
	count := 0
	for _, rec := range r.AuditTrail {
		if rec.Status == StepStatusCompleted {
			count++
		}
	}

	return count
}

// StepState is the polled view of one step.
type StepState struct {
	Step       StepName   `json:"step"`
	Agent      string     `json:"agent,omitempty"`
	Status     StepStatus `json:"status"`
	RetryCount int        `json:"retry_count"`
	Reason     string     `json:"reason,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RunStatus is the step-level status of a run, kept for polling.
type RunStatus struct {
	RequestID   string          `json:"request_id"`
	Status      WorkflowStatus  `json:"status"`
	CurrentStep StepName        `json:"current_step,omitempty"`
	Steps       []StepState     `json:"steps"`
	Result      *WorkflowResult `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Step returns the state for name, if tracked.
func (s *RunStatus) Step(name StepName) (StepState, bool) {
	for _, st := range s.Steps {
		if st.Step == name {
			return st, true
		}
	}

	return StepState{}, false
}

// Clone returns a copy safe to hand to callers while the run continues.
func (s *RunStatus) Clone() *RunStatus {
	if s == nil {
		return nil
	}

	out := *s
	out.Steps = append([]StepState(nil), s.Steps...)

	return &out
}
