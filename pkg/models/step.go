package models

// StepName identifies a stage in the tailoring workflow.
type StepName string

const (
	StepCaptureInstructions StepName = "capture-instructions"
	StepParseProfile        StepName = "parse-profile"
	StepAnalyzeJob          StepName = "analyze-job"
	StepRewriteAndTailor    StepName = "rewrite-and-tailor"
	StepAssemble            StepName = "assemble"
)

// StepStatus is the state of one step in its lifecycle.
type StepStatus string

const (
	StepStatusPending          StepStatus = "pending"
	StepStatusInputValidating  StepStatus = "input_validating"
	StepStatusExecuting        StepStatus = "executing"
	StepStatusFailedRetryable  StepStatus = "failed_retryable"
	StepStatusOutputValidating StepStatus = "output_validating"
	StepStatusModerating       StepStatus = "moderating"
	StepStatusEvaluating       StepStatus = "evaluating"
	StepStatusCompleted        StepStatus = "completed"
	StepStatusRejected         StepStatus = "rejected"
	StepStatusFailed           StepStatus = "failed"
	StepStatusSkipped          StepStatus = "skipped"
)

var stepTransitions = map[StepStatus][]StepStatus{
	StepStatusPending:          {StepStatusInputValidating, StepStatusSkipped, StepStatusFailed},
	StepStatusInputValidating:  {StepStatusRejected, StepStatusExecuting, StepStatusFailed},
	StepStatusExecuting:        {StepStatusFailedRetryable, StepStatusOutputValidating, StepStatusFailed},
	StepStatusFailedRetryable:  {StepStatusExecuting},
	StepStatusOutputValidating: {StepStatusRejected, StepStatusModerating},
	StepStatusModerating:       {StepStatusRejected, StepStatusEvaluating, StepStatusFailed},
	StepStatusEvaluating:       {StepStatusCompleted},
}

// CanTransition reports whether a step may move from one status to another.
func CanTransition(from, to StepStatus) bool {
	for _, next := range stepTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusCompleted, StepStatusRejected, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}
