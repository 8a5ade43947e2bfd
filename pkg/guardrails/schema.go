package guardrails

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

type structValidator struct {
	validate *validator.Validate
}

// Struct checks `validate` tags on struct payloads. Other payloads pass.
func Struct() Validator {
	return &structValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *structValidator) Name() string {
	return "struct"
}

func (v *structValidator) Validate(payload any) models.GuardrailVerdict {
	if isNil(payload) {
		return models.Reject(v.Name(), models.ReasonInvalidStructure, "payload is missing")
	}

	value := reflect.Indirect(reflect.ValueOf(payload))
	if value.Kind() != reflect.Struct {
		return models.Pass(v.Name())
	}

	err := v.validate.Struct(payload)
	if err == nil {
		return models.Pass(v.Name())
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fe.Namespace()+" failed "+fe.Tag())
		}

		return models.Reject(v.Name(), models.ReasonInvalidStructure, strings.Join(fields, "; "))
	}

	return models.Reject(v.Name(), models.ReasonInvalidStructure, err.Error())
}

type jsonSchema struct {
	schema gojsonschema.JSONLoader
}

// JSONSchema validates the payload document against schema. String payloads
// are treated as JSON text.
func JSONSchema(schema map[string]any) Validator {
	return &jsonSchema{schema: gojsonschema.NewGoLoader(schema)}
}

func (v *jsonSchema) Name() string {
	return "json_schema"
}

func (v *jsonSchema) Validate(payload any) models.GuardrailVerdict {
	if isNil(payload) {
		return models.Reject(v.Name(), models.ReasonSchemaMismatch, "payload is missing")
	}

	var document gojsonschema.JSONLoader
	if text, ok := payload.(string); ok {
		document = gojsonschema.NewStringLoader(text)
	} else {
		document = gojsonschema.NewGoLoader(payload)
	}

	result, err := gojsonschema.Validate(v.schema, document)
	if err != nil {
		return models.Reject(v.Name(), models.ReasonSchemaMismatch, err.Error())
	}

	if result.Valid() {
		return models.Pass(v.Name())
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		messages = append(messages, e.String())
	}

	return models.Reject(v.Name(), models.ReasonSchemaMismatch, strings.Join(messages, "; "))
}

// SchemaErrors validates document against schema and returns the error
// descriptions. An empty slice means the document is valid.
func SchemaErrors(schema map[string]any, document any) []string {
	verdict := JSONSchema(schema).Validate(document)
	if !verdict.IsReject() {
		return nil
	}

	return strings.Split(verdict.Message, "; ")
}
