// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/evaluation"
	"github.com/dukex/resumeflow/pkg/eventbus"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/moderation"
	"github.com/dukex/resumeflow/pkg/otelhelper"
	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/registry"
	"github.com/dukex/resumeflow/pkg/workflow"
	"go.opentelemetry.io/otel/trace"
)

// NewDependencies builds the generation client, moderation gate and
// evaluator shared by the default agents.
func NewDependencies(cfg *config.Config, logger *slog.Logger) agents.Dependencies {
	gen := generation.NewClient(generation.ClientConfig{
		BaseURL:     cfg.Generation.BaseURL,
		APIKey:      cfg.Generation.APIKey,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     cfg.Generation.Timeout,
	})

	var classifier moderation.Service
	if cfg.Moderation.Enabled {
		apiKey := cfg.Moderation.APIKey
		if apiKey == "" {
			apiKey = cfg.Generation.APIKey
		}

		classifier = moderation.NewClient(moderation.ClientConfig{
			BaseURL: cfg.Moderation.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.Moderation.Model,
			Timeout: cfg.Generation.Timeout,
		})
	}

	gate := moderation.NewGate(classifier, moderation.GateConfig{
		Enabled:     cfg.Moderation.Enabled,
		FailOpen:    cfg.Moderation.FailOpen,
		CallTimeout: cfg.Retry.PerCallTimeout,
	}, logger)

	evaluator := evaluation.New(gen, evaluation.Config{
		Enabled:         cfg.Evaluation.Enabled,
		Model:           cfg.Evaluation.Model,
		Temperature:     cfg.Evaluation.Temperature,
		MinOutputLength: cfg.Evaluation.MinOutputLength,
		PassThreshold:   cfg.Evaluation.PassThreshold,
		CallTimeout:     cfg.Retry.PerCallTimeout,
	}, logger)

	return agents.Dependencies{
		Generation: gen,
		Gate:       gate,
		Evaluator:  evaluator,
		Config:     cfg,
		Logger:     logger,
	}
}

// NewRegistry registers the default agents. A registration failure is a
// configuration error and fatal at startup.
func NewRegistry(deps agents.Dependencies, logger *slog.Logger) (*registry.Registry, error) {
	reg := registry.NewRegistry(logger)

	if err := registry.RegisterDefaultAgents(reg, deps); err != nil {
		return nil, fmt.Errorf("failed to register agents: %w", err)
	}

	return reg, nil
}

// NewTracer returns an OTLP tracer when tracing is enabled and a no-op
// tracer otherwise.
//
// nolint:ireturn
func NewTracer(ctx context.Context, cfg config.TracingConfig) (trace.Tracer, otelhelper.Shutdown, error) {
	if !cfg.Enabled {
		return otelhelper.NoopTracer(), func(context.Context) error { return nil }, nil
	}

	return otelhelper.NewTracer(ctx, cfg.ServiceName)
}

// Runtime bundles everything a binary needs to run workflows.
type Runtime struct {
	Config   *config.Config
	Registry *registry.Registry
	Store    persistence.RunStore
	EventBus eventbus.EventBus
	Engine   *workflow.Engine

	closers []func(ctx context.Context) error
}

// NewRuntime wires the engine from cfg. Close releases what it opened.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg}

	reg, err := NewRegistry(NewDependencies(cfg, logger), logger)
	if err != nil {
		return nil, err
	}

	rt.Registry = reg

	store, err := NewRunStore(ctx, logger, cfg.Storage.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	rt.Store = store
	rt.closers = append(rt.closers, store.Close)

	opts := []workflow.Option{
		workflow.WithStatusStore(store),
		workflow.WithLogger(logger),
		workflow.WithRetryPolicy(workflow.NewRetryPolicy(cfg.Retry)),
	}

	bus, err := NewEventBus(cfg.EventBus, cfg.Tracing.ServiceName, logger)
	if err != nil {
		_ = rt.Close(ctx)

		return nil, err
	}

	if bus != nil {
		rt.EventBus = bus
		rt.closers = append(rt.closers, func(context.Context) error { return bus.Close() })
		opts = append(opts, workflow.WithPublisher(bus))

		if cfg.EventBus.LogEvents {
			if err := eventbus.LogLifecycle(ctx, bus, logger); err != nil {
				_ = rt.Close(ctx)

				return nil, fmt.Errorf("failed to subscribe to lifecycle events: %w", err)
			}
		}
	}

	tracer, shutdown, err := NewTracer(ctx, cfg.Tracing)
	if err != nil {
		_ = rt.Close(ctx)

		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	rt.closers = append(rt.closers, shutdown)
	opts = append(opts, workflow.WithTracer(tracer))

	rt.Engine = workflow.NewEngine(reg, cfg, opts...)

	return rt, nil
}

// Close waits for submitted runs and releases resources in reverse order.
func (r *Runtime) Close(ctx context.Context) error {
	if r.Engine != nil {
		r.Engine.Wait()
	}

	var errs []error

	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	r.closers = nil

	return errors.Join(errs...)
}
