// Package config provides the runtime configuration for resumeflow
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is built once at process start and passed by pointer into
// constructors. Nothing reads configuration from globals.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Moderation ModerationConfig `yaml:"moderation"`
	Guardrails GuardrailsConfig `yaml:"guardrails"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Retry      RetryConfig      `yaml:"retry"`
	Rewrite    RewriteConfig    `yaml:"rewrite"`
	Workflow   WorkflowConfig   `yaml:"workflow"`
	Storage    StorageConfig    `yaml:"storage"`
	EventBus   EventBusConfig   `yaml:"event_bus"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

type GenerationConfig struct {
	BaseURL     string        `yaml:"base_url"    validate:"required,url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"       validate:"required"`
	Temperature float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens"  validate:"gt=0"`
	Timeout     time.Duration `yaml:"timeout"     validate:"gt=0"`
}

type ModerationConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"  validate:"omitempty,url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	FailOpen bool   `yaml:"fail_open"`
}

type GuardrailsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	MaxInputLength          int  `yaml:"max_input_length"           validate:"gt=0"`
	MaxOutputLength         int  `yaml:"max_output_length"          validate:"gt=0"`
	MaxJobDescriptionLength int  `yaml:"max_job_description_length" validate:"gt=0"`
	MinInstructionLength    int  `yaml:"min_instruction_length"     validate:"gte=0"`
}

type EvaluationConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"       validate:"gte=0,lte=2"`
	MinOutputLength int     `yaml:"min_output_length" validate:"gte=0"`
	PassThreshold   float64 `yaml:"pass_threshold"    validate:"gte=0,lte=1"`
}

type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"     validate:"gte=1,lte=10"`
	InitialInterval time.Duration `yaml:"initial_interval" validate:"gte=0"`
	MaxInterval     time.Duration `yaml:"max_interval"     validate:"gte=0"`
	Multiplier      float64       `yaml:"multiplier"       validate:"gte=1"`
	PerCallTimeout  time.Duration `yaml:"per_call_timeout" validate:"gt=0"`
}

type RewriteConfig struct {
	MaxTargetedAttempts int `yaml:"max_targeted_attempts" validate:"gte=1"`
	PriorityKeywords    int `yaml:"priority_keywords"     validate:"gte=1"`
}

// WorkflowConfig bounds background execution. Zero MaxConcurrentRuns means
// unlimited.
type WorkflowConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" validate:"gte=0"`
}

type StorageConfig struct {
	URL string `yaml:"url" validate:"required"`
}

type EventBusConfig struct {
	Provider string   `yaml:"provider" validate:"omitempty,oneof=gochannel kafka none"`
	Brokers  []string `yaml:"brokers"  validate:"required_if=Provider kafka"`

	// LogEvents subscribes the process to its own bus and logs every
	// lifecycle event it receives.
	LogEvents bool `yaml:"log_events"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			Temperature: 0.7,
			MaxTokens:   2000,
			Timeout:     60 * time.Second,
		},
		Moderation: ModerationConfig{
			Enabled:  true,
			BaseURL:  "https://api.openai.com/v1",
			Model:    "omni-moderation-latest",
			FailOpen: true,
		},
		Guardrails: GuardrailsConfig{
			Enabled:                 true,
			MaxInputLength:          5000,
			MaxOutputLength:         10000,
			MaxJobDescriptionLength: 20000,
			MinInstructionLength:    10,
		},
		Evaluation: EvaluationConfig{
			Enabled:         true,
			Model:           "gpt-4o-mini",
			Temperature:     0.3,
			MinOutputLength: 20,
			PassThreshold:   0.7,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
			Multiplier:      2,
			PerCallTimeout:  60 * time.Second,
		},
		Rewrite: RewriteConfig{
			MaxTargetedAttempts: 2,
			PriorityKeywords:    10,
		},
		Workflow: WorkflowConfig{
			MaxConcurrentRuns: 16,
		},
		Storage: StorageConfig{
			URL: "memory://",
		},
		EventBus: EventBusConfig{
			Provider:  "none",
			LogEvents: true,
		},
		Tracing: TracingConfig{
			ServiceName: "resumeflow",
		},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
