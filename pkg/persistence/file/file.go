// Package file provides a file-based run store. Each run is one JSON
// document under <root>/runs.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
)

// Store implements persistence.RunStore using the file system.
type Store struct {
	root string
	mu   sync.RWMutex
}

// NewStore creates a store rooted at root. A file:// prefix is accepted.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Store) runsDir() string {
	return filepath.Join(s.root, "runs")
}

func (s *Store) runPath(requestID string) string {
	return filepath.Join(s.runsDir(), requestID+".json")
}

// SaveRun writes the run status, replacing any previous snapshot.
func (s *Store) SaveRun(_ context.Context, run *models.RunStatus) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.MkdirAll(s.runsDir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	// Write then rename so pollers never read a half written document.
	tmp := s.runPath(run.RequestID) + ".tmp"

	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write run %s: %w", run.RequestID, err)
	}

	err = os.Rename(tmp, s.runPath(run.RequestID))
	if err != nil {
		return fmt.Errorf("failed to store run %s: %w", run.RequestID, err)
	}

	return nil
}

// GetRun reads the latest snapshot of a run.
func (s *Store) GetRun(_ context.Context, requestID string) (*models.RunStatus, error) {
	if err := persistence.ValidateRequestID(requestID); err != nil {
		return nil, persistence.NewRunError("GetRun", requestID, err)
	}

	s.mu.RLock()
	body, err := os.ReadFile(s.runPath(requestID))
	s.mu.RUnlock()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewRunError("GetRun", requestID, persistence.ErrRunNotFound)
		}

		return nil, fmt.Errorf("failed to read run %s: %w", requestID, err)
	}

	var run models.RunStatus

	err = json.Unmarshal(body, &run)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", requestID, err)
	}

	return &run, nil
}

// HealthCheck checks that the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based storage, there is nothing to clean up.
func (s *Store) Close(_ context.Context) error {
	return nil
}
