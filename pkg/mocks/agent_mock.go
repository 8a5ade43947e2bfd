package mocks

import (
	"context"

	"github.com/dukex/resumeflow/pkg/guardrails"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockAgent is a mock implementation of protocol.Agent interface.
type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) Name() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockAgent) ValidateInput(payload any) guardrails.Outcome {
	args := m.Called(payload)

	return args.Get(0).(guardrails.Outcome)
}

func (m *MockAgent) Execute(ctx context.Context, payload any, rc *models.RunContext) (any, error) {
	args := m.Called(ctx, payload, rc)

	return args.Get(0), args.Error(1)
}

func (m *MockAgent) ValidateOutput(output any) guardrails.Outcome {
	args := m.Called(output)

	return args.Get(0).(guardrails.Outcome)
}

func (m *MockAgent) Moderate(ctx context.Context, direction models.Direction, text string) (models.ModerationVerdict, error) {
	args := m.Called(ctx, direction, text)

	return args.Get(0).(models.ModerationVerdict), args.Error(1)
}

func (m *MockAgent) Evaluate(ctx context.Context, payload, output any, rc *models.RunContext) models.EvaluationResult {
	args := m.Called(ctx, payload, output, rc)

	return args.Get(0).(models.EvaluationResult)
}

func (m *MockAgent) Input(rc *models.RunContext) (any, error) {
	args := m.Called(rc)

	return args.Get(0), args.Error(1)
}

func (m *MockAgent) Apply(rc *models.RunContext, output any) error {
	args := m.Called(rc, output)

	return args.Error(0)
}
