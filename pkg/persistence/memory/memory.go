// Package memory provides an in-process run store.
package memory

import (
	"context"
	"sync"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
)

// Store keeps run statuses in a map. Contents are lost on restart.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*models.RunStatus
}

func NewStore() *Store {
	return &Store{runs: make(map[string]*models.RunStatus)}
}

func (s *Store) SaveRun(_ context.Context, run *models.RunStatus) error {
	if run == nil {
		return persistence.ErrNilRun
	}

	if err := persistence.ValidateRequestID(run.RequestID); err != nil {
		return persistence.NewRunError("SaveRun", run.RequestID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.RequestID] = run.Clone()

	return nil
}

func (s *Store) GetRun(_ context.Context, requestID string) (*models.RunStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[requestID]
	if !ok {
		return nil, persistence.NewRunError("GetRun", requestID, persistence.ErrRunNotFound)
	}

	return run.Clone(), nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
