// Package redis provides a Redis-backed run store. Runs are JSON values
// under resumeflow:run:<request id> with a configurable TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "resumeflow:run:"
	DefaultTTL = 7 * 24 * time.Hour
)

type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore connects to the Redis server described by url
// (redis://[:password@]host:port/db) and verifies the connection.
func NewStore(ctx context.Context, logger *slog.Logger, url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewStoreWithClient(client, logger, ttl), nil
}

// NewStoreWithClient wraps an existing client. A ttl of zero keeps runs
// forever.
func NewStoreWithClient(client redis.UniversalClient, logger *slog.Logger, ttl time.Duration) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{client: client, ttl: ttl, logger: logger}
}

func (s *Store) SaveRun(ctx context.Context, run *models.RunStatus) error {
	if run == nil {
		return persistence.ErrNilRun
	}

	if err := persistence.ValidateRequestID(run.RequestID); err != nil {
		return persistence.NewRunError("SaveRun", run.RequestID, err)
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.RequestID, err)
	}

	err = s.client.Set(ctx, keyPrefix+run.RequestID, data, s.ttl).Err()
	if err != nil {
		return persistence.NewRunError("SaveRun", run.RequestID, err)
	}

	return nil
}

func (s *Store) GetRun(ctx context.Context, requestID string) (*models.RunStatus, error) {
	if err := persistence.ValidateRequestID(requestID); err != nil {
		return nil, persistence.NewRunError("GetRun", requestID, err)
	}

	data, err := s.client.Get(ctx, keyPrefix+requestID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewRunError("GetRun", requestID, persistence.ErrRunNotFound)
		}

		return nil, persistence.NewRunError("GetRun", requestID, err)
	}

	var run models.RunStatus

	err = json.Unmarshal(data, &run)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", requestID, err)
	}

	return &run, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	err := s.client.Close()
	if err != nil {
		s.logger.Error("Failed to close redis client", "error", err)

		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
