// Package postgresql provides the PostgreSQL run store.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/dukex/resumeflow/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Store implements persistence.RunStore for PostgreSQL. The full status is
// kept as a JSONB document; step states are mirrored into run_steps.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore connects to databaseURL and runs pending migrations.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	err = sqlbase.NewMigrationManager(logger, database, migrations()).RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: database, logger: logger}, nil
}

// SaveRun upserts the run document and its step rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *models.RunStatus) error {
	if run == nil {
		return persistence.ErrNilRun
	}

	if err := persistence.ValidateRequestID(run.RequestID); err != nil {
		return persistence.NewRunError("SaveRun", run.RequestID, err)
	}

	document, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.RequestID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (request_id, status, current_step, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (request_id) DO UPDATE SET
			status = EXCLUDED.status,
			current_step = EXCLUDED.current_step,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`, run.RequestID, string(run.Status), string(run.CurrentStep), document, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return persistence.NewRunError("SaveRun", run.RequestID, err)
	}

	for _, step := range run.Steps {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_steps (request_id, step, agent, status, retry_count, reason, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (request_id, step) DO UPDATE SET
				agent = EXCLUDED.agent,
				status = EXCLUDED.status,
				retry_count = EXCLUDED.retry_count,
				reason = EXCLUDED.reason,
				updated_at = EXCLUDED.updated_at
		`, run.RequestID, string(step.Step), step.Agent, string(step.Status), step.RetryCount, step.Reason, step.UpdatedAt)
		if err != nil {
			return persistence.NewRunError("SaveRun", run.RequestID, fmt.Errorf("step %s: %w", step.Step, err))
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.RequestID, err)
	}

	return nil
}

// GetRun returns the latest run document.
func (s *Store) GetRun(ctx context.Context, requestID string) (*models.RunStatus, error) {
	var document []byte

	err := s.db.QueryRowContext(ctx, "SELECT document FROM runs WHERE request_id = $1", requestID).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRunError("GetRun", requestID, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("GetRun", requestID, err)
	}

	var run models.RunStatus

	err = json.Unmarshal(document, &run)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", requestID, err)
	}

	return &run, nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
