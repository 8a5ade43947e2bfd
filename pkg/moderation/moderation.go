// Package moderation classifies text crossing an agent boundary against a
// safety policy.
package moderation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/resumeflow/pkg/models"
)

// Classification is the classifier's answer for one text.
type Classification struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories,omitempty"`
}

// Service is an external safety classifier.
type Service interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// GateConfig configures a Gate. CallTimeout bounds each classifier call;
// zero leaves the caller's deadline alone.
type GateConfig struct {
	Enabled     bool
	FailOpen    bool
	CallTimeout time.Duration
}

// Gate wraps a classifier for both directions of an agent call.
type Gate struct {
	service     Service
	enabled     bool
	failOpen    bool
	callTimeout time.Duration
	logger      *slog.Logger
}

func NewGate(service Service, cfg GateConfig, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		service:     service,
		enabled:     cfg.Enabled && service != nil,
		failOpen:    cfg.FailOpen,
		callTimeout: cfg.CallTimeout,
		logger:      logger.With("component", "moderation"),
	}
}

// Check classifies text. A flagged verdict must be treated as a reject by the
// caller. A classifier error is returned only when the gate fails closed.
func (g *Gate) Check(ctx context.Context, direction models.Direction, text string) (models.ModerationVerdict, error) {
	verdict := models.ModerationVerdict{Direction: direction}

	if g == nil || !g.enabled {
		return verdict, nil
	}

	if strings.TrimSpace(text) == "" {
		verdict.Checked = true

		return verdict, nil
	}

	result, err := g.classify(ctx, text)
	if err != nil {
		verdict.Error = err.Error()

		if g.failOpen {
			g.logger.WarnContext(ctx, "Moderation check failed, allowing content", "direction", direction, "error", err)

			return verdict, nil
		}

		return verdict, err
	}

	verdict.Checked = true
	verdict.Flagged = result.Flagged
	verdict.Categories = result.Categories

	if result.Flagged {
		g.logger.WarnContext(ctx, "Content flagged by moderation", "direction", direction, "categories", result.Categories)
	}

	return verdict, nil
}

func (g *Gate) classify(ctx context.Context, text string) (Classification, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	return g.service.Classify(ctx, text)
}
