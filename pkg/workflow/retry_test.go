package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxAttempts int) workflow.RetryPolicy {
	return workflow.RetryPolicy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2,
	}
}

func timeoutErr() error {
	return generation.NewServiceError("generate", generation.KindTimeout, context.DeadlineExceeded)
}

func TestNewRetryPolicy(t *testing.T) {
	t.Parallel()

	policy := workflow.NewRetryPolicy(config.Default().Retry)

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, policy.InitialInterval)
	assert.Equal(t, 10*time.Second, policy.MaxInterval)
	assert.InDelta(t, 2.0, policy.Multiplier, 0.0001)
}

func TestTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", timeoutErr(), true},
		{"rate limited", generation.NewServiceError("generate", generation.KindRateLimited, errors.New("429")), true},
		{"server", generation.NewServiceError("generate", generation.KindServer, errors.New("502")), true},
		{"deadline", context.DeadlineExceeded, true},
		{"bad request", generation.NewServiceError("generate", generation.KindBadRequest, errors.New("400")), false},
		{"quota", generation.NewServiceError("generate", generation.KindQuota, errors.New("no credit")), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, workflow.Transient(tt.err))
		})
	}
}

func TestRetryPolicy_Do(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		maxAttempts  int
		failures     []error
		wantAttempts int
		wantRetries  []int
		wantErr      bool
	}{
		{name: "first attempt succeeds", maxAttempts: 3, wantAttempts: 1},
		{name: "two timeouts then success", maxAttempts: 3, failures: []error{timeoutErr(), timeoutErr()}, wantAttempts: 3, wantRetries: []int{2, 3}},
		{name: "exhausted", maxAttempts: 3, failures: []error{timeoutErr(), timeoutErr(), timeoutErr(), timeoutErr()}, wantAttempts: 3, wantRetries: []int{2, 3}, wantErr: true},
		{name: "non transient fails at once", maxAttempts: 3, failures: []error{errors.New("invalid")}, wantAttempts: 1, wantErr: true},
		{name: "zero attempts means one", maxAttempts: 0, failures: []error{timeoutErr()}, wantAttempts: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			attempt := func(context.Context) (any, error) {
				calls++
				if calls <= len(tt.failures) {
					return nil, tt.failures[calls-1]
				}

				return "ok", nil
			}

			var retries []int

			out, attempts, err := fastRetry(tt.maxAttempts).Do(context.Background(), attempt, func(n int, _ error) {
				retries = append(retries, n)
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantAttempts, calls)
			assert.Equal(t, tt.wantRetries, retries)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, out)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ok", out)
		})
	}
}

func TestRetryPolicy_RetriesExpiredCallDeadline(t *testing.T) {
	t.Parallel()

	calls := 0

	out, attempts, err := fastRetry(3).Do(context.Background(), func(ctx context.Context) (any, error) {
		calls++
		if calls == 1 {
			callCtx, cancel := context.WithTimeout(ctx, time.Millisecond)
			defer cancel()

			<-callCtx.Done()

			return nil, callCtx.Err()
		}

		require.NoError(t, ctx.Err(), "a retry must not inherit the expired call deadline")

		return "ok", nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, attempts)
}
