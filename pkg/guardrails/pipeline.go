// Package guardrails runs ordered validators over agent payloads.
package guardrails

import "github.com/dukex/resumeflow/pkg/models"

// Validator checks one payload and returns a verdict. Validators must be
// deterministic: the same payload always yields the same verdict.
type Validator interface {
	Name() string
	Validate(payload any) models.GuardrailVerdict
}

// Outcome is the result of running a pipeline over a payload.
type Outcome struct {
	Payload   any
	Verdicts  []models.GuardrailVerdict
	Rejection *models.GuardrailVerdict
}

func (o Outcome) Rejected() bool {
	return o.Rejection != nil
}

// Pipeline applies validators in a fixed order. A reject stops the run, a
// rewrite replaces the payload for every later validator.
type Pipeline struct {
	validators []Validator
}

func New(validators ...Validator) *Pipeline {
	return &Pipeline{validators: validators}
}

// Run validates payload. A nil pipeline passes the payload through.
func (p *Pipeline) Run(payload any) Outcome {
	outcome := Outcome{Payload: payload}

	if p == nil {
		return outcome
	}

	for _, validator := range p.validators {
		verdict := validator.Validate(outcome.Payload)
		if verdict.Validator == "" {
			verdict.Validator = validator.Name()
		}

		outcome.Verdicts = append(outcome.Verdicts, verdict)

		switch verdict.Kind {
		case models.VerdictReject:
			rejection := verdict
			outcome.Rejection = &rejection

			return outcome
		case models.VerdictRewrite:
			outcome.Payload = verdict.Value
		case models.VerdictPass:
		}
	}

	return outcome
}

// Len returns the number of validators.
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}

	return len(p.validators)
}

// Names lists validator names in execution order.
func (p *Pipeline) Names() []string {
	if p == nil {
		return nil
	}

	names := make([]string, len(p.validators))
	for i, v := range p.validators {
		names[i] = v.Name()
	}

	return names
}

type funcValidator struct {
	name string
	fn   func(payload any) models.GuardrailVerdict
}

// Func adapts a function into a Validator.
func Func(name string, fn func(payload any) models.GuardrailVerdict) Validator {
	return &funcValidator{name: name, fn: fn}
}

func (f *funcValidator) Name() string {
	return f.name
}

func (f *funcValidator) Validate(payload any) models.GuardrailVerdict {
	return f.fn(payload)
}
