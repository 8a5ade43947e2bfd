// Package instructions implements the instruction-capture agent, which turns
// free-form tailoring instructions into a structured intent.
package instructions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
)

const Name = "instruction-capture"

const systemPrompt = "You are an expert at parsing instructions for resume customization. " +
	"Always respond with valid JSON."

type Agent struct {
	agents.Base

	deps   agents.Dependencies
	logger *slog.Logger
}

func New(deps agents.Dependencies) *Agent {
	cfg := deps.Settings().Guardrails

	return &Agent{
		Base: deps.NewBase(Name, "Extracts intent, constraints, target role and company from user instructions",
			[]guardrails.Validator{
				guardrails.Sanitize(),
				guardrails.NonEmpty(),
				guardrails.MaxLength(cfg.MaxInputLength),
				guardrails.MinLength(cfg.MinInstructionLength),
			},
			[]guardrails.Validator{
				guardrails.Struct(),
				guardrails.MaxLengthOf(cfg.MaxOutputLength, intentText),
			},
		),
		deps:   deps,
		logger: deps.Log(Name),
	}
}

// Schema is the structured response requested from the generation service.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intent":       map[string]any{"type": "string"},
			"constraints":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"target_role":  map[string]any{"type": "string"},
			"company_name": map[string]any{"type": "string"},
			"tone":         map[string]any{"type": "string"},
		},
		"required": []string{"intent", "constraints"},
	}
}

func (a *Agent) Input(rc *models.RunContext) (any, error) {
	return rc.Instructions.Raw, nil
}

func (a *Agent) Execute(ctx context.Context, payload any, _ *models.RunContext) (any, error) {
	raw, ok := payload.(string)
	if !ok {
		return nil, fmt.Errorf("instruction capture expects text, got %T", payload)
	}

	resp, err := a.deps.Generate(ctx, generation.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(raw),
		Schema:      Schema(),
		SchemaName:  "instructions",
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	var parsed models.Instructions
	if err := resp.Decode(&parsed); err != nil || strings.TrimSpace(parsed.Intent) == "" {
		a.logger.WarnContext(ctx, "Instruction parse unusable, using raw text as intent", "error", err)

		return &models.Instructions{Raw: raw, Intent: raw}, nil
	}

	parsed.Raw = raw
	parsed.Intent = strings.TrimSpace(parsed.Intent)
	parsed.Constraints = compact(parsed.Constraints)

	return &parsed, nil
}

func (a *Agent) Apply(rc *models.RunContext, output any) error {
	captured, ok := output.(*models.Instructions)
	if !ok {
		return fmt.Errorf("instruction capture produced %T", output)
	}

	rc.Instructions = *captured

	return nil
}

func buildPrompt(raw string) string {
	return fmt.Sprintf(`Parse the following instruction for resume customization:

%q

Extract:
1. intent: what the user wants to do (for example "focus on X", "emphasize Y", "tailor resume")
2. constraints: specific constraints or preferences (for example "downplay coursework", "keep it concise")
3. target_role and company_name when the user names them
4. tone when the user asks for one`, raw)
}

func intentText(payload any) (string, bool) {
	captured, ok := payload.(*models.Instructions)
	if !ok || captured == nil {
		return "", false
	}

	return captured.Intent, true
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
