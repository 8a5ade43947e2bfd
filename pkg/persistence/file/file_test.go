package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/persistence/file"
	"github.com/dukex/resumeflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	store := file.NewStore("file://" + root)

	run := testutil.CreateTestRunStatus("run-1")
	require.NoError(t, store.SaveRun(ctx, run))

	info, err := os.Stat(filepath.Join(root, "runs", "run-1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)

	run.Status = models.WorkflowStatusCompleted
	run.Result = &models.WorkflowResult{RequestID: "run-1", Status: models.WorkflowStatusCompleted}
	require.NoError(t, store.SaveRun(ctx, run))

	got, err = store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, models.WorkflowStatusCompleted, got.Result.Status)
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewStore(t.TempDir())

	tests := []struct {
		name string
		id   string
		is   func(error) bool
	}{
		{"missing", "run-404", persistence.IsRunNotFound},
		{"traversal", "../../etc/passwd", persistence.IsInvalidRequestID},
		{"separator", "a/b", persistence.IsInvalidRequestID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := store.GetRun(ctx, tt.id)
			assert.True(t, tt.is(err))
		})
	}

	assert.True(t, persistence.IsInvalidRequestID(store.SaveRun(ctx, testutil.CreateTestRunStatus("../escape"))))
}

func TestStore_HealthCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	assert.NoError(t, file.NewStore(t.TempDir()).HealthCheck(ctx))
	assert.ErrorIs(t, file.NewStore(filepath.Join(t.TempDir(), "missing")).HealthCheck(ctx), os.ErrNotExist)
}
