package registry

import (
	"errors"
	"fmt"

	"github.com/dukex/resumeflow/pkg/models"
)

var (
	// ErrAgentNotFound indicates no agent is bound to the requested name.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentAlreadyRegistered indicates a second registration for a name.
	ErrAgentAlreadyRegistered = errors.New("agent already registered")

	ErrInvalidAgentName = errors.New("agent name is empty")
	ErrNilAgent         = errors.New("agent is nil")
)

// ConfigurationError wraps registry errors with the agent they concern.
type ConfigurationError struct {
	Op    string
	Agent string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s operation failed for agent %q: %v", e.Op, e.Agent, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is matches the wrapped error and models.ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == models.ErrConfiguration || errors.Is(e.Err, target)
}

func NewConfigurationError(op, agent string, err error) *ConfigurationError {
	return &ConfigurationError{Op: op, Agent: agent, Err: err}
}

func IsAgentNotFound(err error) bool {
	return errors.Is(err, ErrAgentNotFound)
}

func IsAgentAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrAgentAlreadyRegistered)
}
