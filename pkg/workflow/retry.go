package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/generation"
)

// RetryPolicy retries transient generation failures with exponential backoff.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func NewRetryPolicy(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
		Multiplier:      cfg.Multiplier,
	}
}

// Transient reports whether a failed attempt may be retried. Expired per-call
// deadlines, set by the agents around each external call, count as transient.
func Transient(err error) bool {
	return generation.IsTransient(err) || errors.Is(err, context.DeadlineExceeded)
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxElapsedTime = 0

	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}

	if p.Multiplier >= 1 {
		exp.Multiplier = p.Multiplier
	}

	exp.Reset()

	retries := max(p.MaxAttempts, 1) - 1

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// Do runs attempt until it succeeds, fails with a non-transient error or the
// attempt budget is spent. It satisfies agents.Retrier.
func (p RetryPolicy) Do(ctx context.Context, attempt agents.Attempt, onRetry func(attempt int, err error)) (any, int, error) {
	var (
		output   any
		attempts int
	)

	operation := func() error {
		attempts++

		out, err := attempt(ctx)
		if err != nil {
			if !Transient(err) {
				return backoff.Permanent(err)
			}

			return err
		}

		output = out

		return nil
	}

	notify := func(err error, _ time.Duration) {
		if onRetry != nil {
			onRetry(attempts+1, err)
		}
	}

	if err := backoff.RetryNotify(operation, p.backOff(ctx), notify); err != nil {
		return nil, attempts, err
	}

	return output, attempts, nil
}

var _ agents.Retrier = RetryPolicy{}.Do
