// Package generation defines the client contract for the external text
// generation service and an OpenAI-compatible implementation.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Service produces text or structured payloads from a prompt. Implementations
// return *ServiceError for network, timeout and quota conditions.
type Service interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

type Request struct {
	System      string
	Prompt      string
	Schema      map[string]any
	SchemaName  string
	Temperature float64
	MaxTokens   int
	Model       string
}

type Response struct {
	Text       string         `json:"text"`
	Structured map[string]any `json:"structured,omitempty"`
	Model      string         `json:"model,omitempty"`
}

var ErrEmptyResponse = errors.New("empty generation response")

// Decode unmarshals the structured payload, or the text as JSON, into v.
func (r *Response) Decode(v any) error {
	if r == nil {
		return ErrEmptyResponse
	}

	var data []byte

	if r.Structured != nil {
		encoded, err := json.Marshal(r.Structured)
		if err != nil {
			return fmt.Errorf("failed to encode structured response: %w", err)
		}

		data = encoded
	} else {
		text := StripCodeFence(r.Text)
		if text == "" {
			return ErrEmptyResponse
		}

		data = []byte(text)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode generation response: %w", err)
	}

	return nil
}

// StripCodeFence removes a surrounding markdown code fence, if present.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	}

	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}

// StructuredMap parses text as a JSON object. It returns nil when the text is
// not an object.
func StructuredMap(text string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &out); err != nil {
		return nil
	}

	return out
}
