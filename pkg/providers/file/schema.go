package file

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func profileSchema() map[string]any {
	strs := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"email":    map[string]any{"type": "string"},
			"summary":  map[string]any{"type": "string"},
			"raw_text": map[string]any{"type": "string"},
			"links":    strs,
			"experiences": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"company": map[string]any{"type": "string"},
						"title":   map[string]any{"type": "string"},
						"current": map[string]any{"type": "boolean"},
						"bullets": strs,
					},
					"required": []string{"company", "title"},
				},
			},
			"skills": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"name": map[string]any{"type": "string"}},
					"required":   []string{"name"},
				},
			},
		},
		"required": []string{"name"},
	}
}

var profileSchemaLoader = gojsonschema.NewGoLoader(profileSchema())

// validateProfileDocument checks raw JSON against the stored profile schema.
func validateProfileDocument(data []byte) error {
	result, err := gojsonschema.Validate(profileSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return fmt.Errorf("schema validation failed: %s", strings.Join(problems, "; "))
}
