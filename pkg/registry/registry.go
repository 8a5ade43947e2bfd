// Package registry resolves workflow agents by name.
package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/dukex/resumeflow/pkg/protocol"
)

// Registry maps agent names to agents. Registration happens once during
// initialization; resolution is safe for concurrent use.
type Registry struct {
	logger *slog.Logger
	mu     sync.RWMutex
	agents map[string]protocol.Agent
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		logger: log.With("module", "registry"),
		agents: make(map[string]protocol.Agent),
	}
}

// Register binds agent to name.
func (r *Registry) Register(name string, agent protocol.Agent) error {
	if name == "" {
		return NewConfigurationError("Register", name, ErrInvalidAgentName)
	}

	if agent == nil {
		return NewConfigurationError("Register", name, ErrNilAgent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[name]; exists {
		return NewConfigurationError("Register", name, ErrAgentAlreadyRegistered)
	}

	r.agents[name] = agent
	r.logger.Debug("Registered agent", "name", name)

	return nil
}

// Resolve returns the agent bound to name.
func (r *Registry) Resolve(name string) (protocol.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[name]
	if !ok {
		return nil, NewConfigurationError("Resolve", name, ErrAgentNotFound)
	}

	return agent, nil
}

// Names returns the registered agent names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
