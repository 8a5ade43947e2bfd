package testutil

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/dukex/resumeflow/pkg/generation"
)

// TextCall is the key used for generation requests without a schema.
const TextCall = "text"

// StubGenerator is a deterministic generation.Service. Responses are keyed
// by the request's schema name; queued errors and responses take priority.
type StubGenerator struct {
	mu        sync.Mutex
	calls     map[string]int
	failures  map[string][]error
	responses map[string][]*generation.Response
}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{
		calls:     make(map[string]int),
		failures:  make(map[string][]error),
		responses: make(map[string][]*generation.Response),
	}
}

// FailNext queues errors returned by the next calls for schema.
func (s *StubGenerator) FailNext(schema string, errs ...error) *StubGenerator {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[schema] = append(s.failures[schema], errs...)

	return s
}

// RespondNext queues responses returned by the next calls for schema.
func (s *StubGenerator) RespondNext(schema string, resps ...*generation.Response) *StubGenerator {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[schema] = append(s.responses[schema], resps...)

	return s
}

// Calls returns how many requests were made for schema.
func (s *StubGenerator) Calls(schema string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[schema]
}

func (s *StubGenerator) Generate(_ context.Context, req generation.Request) (*generation.Response, error) {
	key := req.SchemaName
	if key == "" {
		key = TextCall
	}

	s.mu.Lock()
	s.calls[key]++

	if queued := s.failures[key]; len(queued) > 0 {
		s.failures[key] = queued[1:]
		s.mu.Unlock()

		if queued[0] != nil {
			return nil, queued[0]
		}

		return s.respond(key, req)
	}

	if queued := s.responses[key]; len(queued) > 0 {
		s.responses[key] = queued[1:]
		s.mu.Unlock()

		return queued[0], nil
	}

	s.mu.Unlock()

	return s.respond(key, req)
}

func (s *StubGenerator) respond(key string, req generation.Request) (*generation.Response, error) {
	var body any

	switch key {
	case "instructions":
		body = map[string]any{
			"intent":      "Tailor the resume for a platform engineering role",
			"constraints": []string{"keep it concise"},
		}
	case "profile":
		body = map[string]any{
			"name": "Parsed Candidate",
			"experiences": []map[string]any{
				{"company": "Parsed Co", "title": "Engineer", "bullets": []string{"Shipped services"}, "technologies": []string{"js"}},
			},
			"skills": []map[string]any{{"name": "js"}, {"name": "k8s"}},
		}
	case "job_analysis":
		body = map[string]any{
			"title":   "Staff Platform Engineer",
			"company": "Acme",
			"required_skills": []map[string]any{
				{"skill": "Go", "importance": 0.9, "mentioned_count": 2},
				{"skill": "Kubernetes", "importance": 0.8},
			},
			"preferred_skills": []map[string]any{{"skill": "Kafka"}},
			"responsibilities": []map[string]any{
				{"description": "Lead distributed systems work", "keywords": []string{"distributed systems"}},
			},
			"emphasis_areas": []string{"infrastructure"},
		}
	case "rewrite":
		body = rewriteContent(req.Prompt)
	case "evaluation":
		body = map[string]any{
			"score":     0.9,
			"criteria":  map[string]any{"relevance": 0.9, "fidelity": 0.95},
			"rationale": "Meets the rubric",
		}
	case TextCall:
		return &generation.Response{Text: "Tailored the resume toward the target role.", Model: req.Model}, nil
	default:
		body = map[string]any{}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	return &generation.Response{Text: string(data), Model: req.Model}, nil
}

type contentShape struct {
	Summary     string `json:"summary"`
	Experiences []struct {
		Bullets []string `json:"bullets"`
	} `json:"experiences"`
	Projects []struct {
		Description string   `json:"description"`
		Bullets     []string `json:"bullets"`
	} `json:"projects"`
}

// rewriteContent echoes the resume content embedded in a rewrite prompt with
// every bullet suffixed, keeping the structure intact.
func rewriteContent(prompt string) any {
	const marker = "Resume content:\n"

	idx := strings.LastIndex(prompt, marker)
	if idx < 0 {
		return map[string]any{"summary": "", "experiences": []any{}}
	}

	var content contentShape
	if err := json.Unmarshal([]byte(prompt[idx+len(marker):]), &content); err != nil {
		return map[string]any{"summary": "", "experiences": []any{}}
	}

	for i := range content.Experiences {
		for j, bullet := range content.Experiences[i].Bullets {
			content.Experiences[i].Bullets[j] = bullet + " with measurable impact"
		}
	}

	if content.Summary != "" {
		content.Summary = "Tailored: " + content.Summary
	}

	return content
}
