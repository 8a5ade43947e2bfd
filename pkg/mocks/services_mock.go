// Package mocks provides testify mocks for resumeflow interfaces.
package mocks

import (
	"context"

	"github.com/dukex/resumeflow/pkg/generation"
	"github.com/dukex/resumeflow/pkg/moderation"
	"github.com/stretchr/testify/mock"
)

// MockGenerationService is a mock implementation of generation.Service interface.
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, req generation.Request) (*generation.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*generation.Response), args.Error(1)
}

// MockModerationService is a mock implementation of moderation.Service interface.
type MockModerationService struct {
	mock.Mock
}

func (m *MockModerationService) Classify(ctx context.Context, text string) (moderation.Classification, error) {
	args := m.Called(ctx, text)

	return args.Get(0).(moderation.Classification), args.Error(1)
}
