package models

// FailureCategory is a recognized quality problem in an agent output.
type FailureCategory string

const (
	FailureTooShort            FailureCategory = "too_short"
	FailureOffTopic            FailureCategory = "off_topic"
	FailureUnfaithful          FailureCategory = "unfaithful"
	FailureIgnoresInstructions FailureCategory = "ignores_instructions"
	FailureMalformedOutput     FailureCategory = "malformed_output"
	FailureMissingKeywords     FailureCategory = "missing_keywords"
)

var knownFailureCategories = map[FailureCategory]struct{}{
	FailureTooShort:            {},
	FailureOffTopic:            {},
	FailureUnfaithful:          {},
	FailureIgnoresInstructions: {},
	FailureMalformedOutput:     {},
	FailureMissingKeywords:     {},
}

// IsKnownFailureCategory reports whether c is one of the recognized categories.
func IsKnownFailureCategory(c FailureCategory) bool {
	_, ok := knownFailureCategories[c]

	return ok
}

// EvaluationResult is an advisory quality score for a completed step output.
// Passed compares Score with the configured threshold and never blocks a step.
type EvaluationResult struct {
	Scored            bool               `json:"scored"`
	Score             float64            `json:"score"`
	Passed            bool               `json:"passed"`
	CriteriaScores    map[string]float64 `json:"criteria_scores,omitempty"`
	Rationale         string             `json:"rationale,omitempty"`
	FailureCategories []FailureCategory  `json:"failure_categories,omitempty"`
}

// Unscored is the result recorded when scoring was skipped or failed.
func Unscored(reason string) EvaluationResult {
	return EvaluationResult{Scored: false, Rationale: reason}
}

// HasFailure reports whether the result lists category c.
func (e EvaluationResult) HasFailure(c FailureCategory) bool {
	for _, fc := range e.FailureCategories {
		if fc == c {
			return true
		}
	}

	return false
}
