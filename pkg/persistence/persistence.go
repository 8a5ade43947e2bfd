// Package persistence provides the storage abstraction for run status snapshots.
package persistence

import (
	"context"

	"github.com/dukex/resumeflow/pkg/models"
)

// RunStore keeps the latest status of every run so it can be polled.
// Implementations must be safe for concurrent use by many runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *models.RunStatus) error
	GetRun(ctx context.Context, requestID string) (*models.RunStatus, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
