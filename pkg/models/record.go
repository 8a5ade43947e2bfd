package models

import "time"

// AgentInvocationRecord is the audit entry for one workflow step.
// Once appended to a RunContext it is never modified.
type AgentInvocationRecord struct {
	Step             StepName           `json:"step"`
	Agent            string             `json:"agent"`
	Status           StepStatus         `json:"status"`
	Input            any                `json:"input,omitempty"`
	Output           any                `json:"output,omitempty"`
	InputVerdicts    []GuardrailVerdict `json:"input_verdicts,omitempty"`
	OutputVerdicts   []GuardrailVerdict `json:"output_verdicts,omitempty"`
	InputModeration  *ModerationVerdict `json:"input_moderation,omitempty"`
	OutputModeration *ModerationVerdict `json:"output_moderation,omitempty"`
	Evaluation       *EvaluationResult  `json:"evaluation,omitempty"`
	Attempts         int                `json:"attempts"`
	RetryCount       int                `json:"retry_count"`
	Degraded         bool               `json:"degraded,omitempty"`
	ErrorKind        ErrorKind          `json:"error_kind,omitempty"`
	ErrorReason      string             `json:"error_reason,omitempty"`
	Error            string             `json:"error,omitempty"`
	StartedAt        time.Time          `json:"started_at"`
	FinishedAt       time.Time          `json:"finished_at"`
	Latency          time.Duration      `json:"latency"`
}

// Err rebuilds the step error for a record that did not complete.
func (r AgentInvocationRecord) Err() error {
	if r.Status == StepStatusCompleted || r.ErrorKind == "" {
		return nil
	}

	return &StepError{Step: r.Step, Kind: r.ErrorKind, Reason: r.ErrorReason}
}

// Degradable is implemented by step outputs that can report a fallback path.
type Degradable interface {
	IsDegraded() bool
}
