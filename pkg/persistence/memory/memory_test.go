package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/persistence/memory"
	"github.com/dukex/resumeflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	run := testutil.CreateTestRunStatus("run-1")

	require.NoError(t, store.SaveRun(ctx, run))

	run.Steps[0].Status = models.StepStatusFailed

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusCompleted, got.Steps[0].Status, "stored copy is isolated from the caller")

	got.Steps[1].Status = models.StepStatusFailed

	again, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepStatusExecuting, again.Steps[1].Status)
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.GetRun(ctx, "missing")
	assert.True(t, persistence.IsRunNotFound(err))

	assert.ErrorIs(t, store.SaveRun(ctx, nil), persistence.ErrNilRun)
	assert.True(t, persistence.IsInvalidRequestID(store.SaveRun(ctx, testutil.CreateTestRunStatus("../x"))))
	assert.NoError(t, store.HealthCheck(ctx))
}

func TestStore_ConcurrentRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			run := testutil.CreateTestRunStatus("run-" + string(rune('a'+i)))
			assert.NoError(t, store.SaveRun(ctx, run))

			_, err := store.GetRun(ctx, run.RequestID)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
}
