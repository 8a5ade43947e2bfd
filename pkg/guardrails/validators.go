package guardrails

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dukex/resumeflow/pkg/models"
)

// TextFunc extracts the text a length check applies to. ok is false when the
// payload has no text to measure.
type TextFunc func(payload any) (text string, ok bool)

// StringText measures string payloads and skips everything else.
func StringText(payload any) (string, bool) {
	switch v := payload.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}

		return *v, true
	default:
		return "", false
	}
}

type maxLength struct {
	limit int
	text  TextFunc
}

// MaxLength rejects strings longer than limit runes.
func MaxLength(limit int) Validator {
	return MaxLengthOf(limit, StringText)
}

// MaxLengthOf rejects payloads whose extracted text is longer than limit runes.
func MaxLengthOf(limit int, text TextFunc) Validator {
	return &maxLength{limit: limit, text: text}
}

func (v *maxLength) Name() string {
	return "max_length"
}

func (v *maxLength) Validate(payload any) models.GuardrailVerdict {
	text, ok := v.text(payload)
	if !ok {
		return models.Pass(v.Name())
	}

	length := utf8.RuneCountInString(text)
	if length > v.limit {
		return models.Reject(v.Name(), models.ReasonLengthExceeded,
			fmt.Sprintf("length %d exceeds maximum %d", length, v.limit))
	}

	return models.Pass(v.Name())
}

type nonEmpty struct{}

// NonEmpty rejects nil payloads and blank strings.
func NonEmpty() Validator {
	return nonEmpty{}
}

func (nonEmpty) Name() string {
	return "non_empty"
}

func (v nonEmpty) Validate(payload any) models.GuardrailVerdict {
	if isNil(payload) {
		return models.Reject(v.Name(), models.ReasonEmptyInput, "payload is missing")
	}

	if text, ok := StringText(payload); ok && strings.TrimSpace(text) == "" {
		return models.Reject(v.Name(), models.ReasonEmptyInput, "input is empty or whitespace only")
	}

	return models.Pass(v.Name())
}

type minLength struct {
	min int
}

// MinLength warns when a string is shorter than min runes. It never rejects.
func MinLength(min int) Validator {
	return &minLength{min: min}
}

func (v *minLength) Name() string {
	return "min_length"
}

func (v *minLength) Validate(payload any) models.GuardrailVerdict {
	text, ok := StringText(payload)
	if !ok {
		return models.Pass(v.Name())
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < v.min {
		return models.Warn(v.Name(), models.ReasonTooShort,
			fmt.Sprintf("text is shorter than %d characters", v.min))
	}

	return models.Pass(v.Name())
}

var (
	ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(ignore|disregard|forget)\s+(all\s+)?(the\s+)?(previous|prior|above|earlier)\s+(instructions|prompts|rules|messages)\b[.!]?`),
		regexp.MustCompile(`(?i)\bignore\s+your\s+(system\s+)?(prompt|instructions)\b[.!]?`),
		regexp.MustCompile(`(?i)</?\s*(system|assistant)\s*>`),
		regexp.MustCompile(`(?im)^\s*(system|assistant)\s*:`),
	}
)

type sanitize struct{}

// Sanitize strips control sequences and prompt-injection phrases from
// strings, emitting a rewrite verdict when anything changed.
func Sanitize() Validator {
	return sanitize{}
}

func (sanitize) Name() string {
	return "sanitize"
}

func (v sanitize) Validate(payload any) models.GuardrailVerdict {
	text, ok := payload.(string)
	if !ok {
		return models.Pass(v.Name())
	}

	cleaned := SanitizeText(text)
	if cleaned == text {
		return models.Pass(v.Name())
	}

	return models.Rewrite(v.Name(), cleaned)
}

// SanitizeText removes ANSI escapes, non-printable characters other than
// newline and tab, and known injection phrases, then trims the result.
func SanitizeText(text string) string {
	text = ansiEscape.ReplaceAllString(text, "")

	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}

		if !unicode.IsPrint(r) {
			return -1
		}

		return r
	}, text)

	for _, pattern := range injectionPatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}

func isNil(payload any) bool {
	if payload == nil {
		return true
	}

	value := reflect.ValueOf(payload)
	switch value.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return value.IsNil()
	default:
		return false
	}
}
