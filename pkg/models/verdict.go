package models

// VerdictKind tags a guardrail outcome.
type VerdictKind string

const (
	VerdictPass    VerdictKind = "pass"
	VerdictReject  VerdictKind = "reject"
	VerdictRewrite VerdictKind = "rewrite"
)

// Guardrail reject and warning reasons.
const (
	ReasonLengthExceeded   = "length_exceeded"
	ReasonEmptyInput       = "empty_input"
	ReasonTooShort         = "too_short"
	ReasonInvalidStructure = "invalid_structure"
	ReasonSchemaMismatch   = "schema_mismatch"
	ReasonSanitized        = "sanitized"
	ReasonPolicyViolation  = "policy_violation"
)

// GuardrailVerdict is the outcome of one validator over one payload.
// A pass verdict may carry a reason as a non-blocking warning.
type GuardrailVerdict struct {
	Kind      VerdictKind `json:"kind"`
	Validator string      `json:"validator"`
	Reason    string      `json:"reason,omitempty"`
	Message   string      `json:"message,omitempty"`
	Value     any         `json:"-"`
}

func Pass(validator string) GuardrailVerdict {
	return GuardrailVerdict{Kind: VerdictPass, Validator: validator}
}

// Warn is a pass verdict that records a non-blocking finding.
func Warn(validator, reason, message string) GuardrailVerdict {
	return GuardrailVerdict{Kind: VerdictPass, Validator: validator, Reason: reason, Message: message}
}

func Reject(validator, reason, message string) GuardrailVerdict {
	return GuardrailVerdict{Kind: VerdictReject, Validator: validator, Reason: reason, Message: message}
}

func Rewrite(validator string, value any) GuardrailVerdict {
	return GuardrailVerdict{Kind: VerdictRewrite, Validator: validator, Reason: ReasonSanitized, Value: value}
}

func (v GuardrailVerdict) IsReject() bool {
	return v.Kind == VerdictReject
}

// Direction marks which side of an agent call a check applies to.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// ModerationVerdict records a safety classification of step text.
// Checked is false when moderation was disabled or the classifier failed open.
type ModerationVerdict struct {
	Direction  Direction `json:"direction"`
	Checked    bool      `json:"checked"`
	Flagged    bool      `json:"flagged"`
	Categories []string  `json:"categories,omitempty"`
	Error      string    `json:"error,omitempty"`
}
