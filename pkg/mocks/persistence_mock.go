package mocks

import (
	"context"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockRunStore is a mock implementation of persistence.RunStore interface.
type MockRunStore struct {
	mock.Mock
}

func (m *MockRunStore) SaveRun(ctx context.Context, run *models.RunStatus) error {
	args := m.Called(ctx, run)

	return args.Error(0)
}

func (m *MockRunStore) GetRun(ctx context.Context, requestID string) (*models.RunStatus, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.RunStatus), args.Error(1)
}

func (m *MockRunStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockRunStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

var _ persistence.RunStore = (*MockRunStore)(nil)
