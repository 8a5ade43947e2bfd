package registry

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/config"
	"github.com/dukex/resumeflow/pkg/mocks"
	"github.com/dukex/resumeflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(slog.Default())
	agent := &mocks.MockAgent{}

	require.NoError(t, registry.Register("job-analysis", agent))

	resolved, err := registry.Resolve("job-analysis")
	require.NoError(t, err)
	assert.Same(t, agent, resolved)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	require.NoError(t, registry.Register("assembly", &mocks.MockAgent{}))

	tests := []struct {
		name    string
		agent   string
		wantErr error
	}{
		{"duplicate", "assembly", ErrAgentAlreadyRegistered},
		{"empty name", "", ErrInvalidAgentName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := registry.Register(tt.agent, &mocks.MockAgent{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, models.ErrConfiguration)

			var configErr *ConfigurationError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, "Register", configErr.Op)
		})
	}

	err := registry.Register("nil-agent", nil)
	assert.ErrorIs(t, err, ErrNilAgent)
	assert.True(t, IsAgentAlreadyRegistered(registry.Register("assembly", &mocks.MockAgent{})))
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)

	agent, err := registry.Resolve("missing")
	assert.Nil(t, agent)
	assert.True(t, IsAgentNotFound(err))
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestRegistry_NamesSorted(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, registry.Register(name, &mocks.MockAgent{}))
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, registry.Names())
}

func TestRegistry_ConcurrentResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	require.NoError(t, registry.Register("assembly", &mocks.MockAgent{}))

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := registry.Resolve("assembly")
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
}

func TestRegisterDefaultAgents(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(nil)
	deps := agents.Dependencies{Config: config.Default()}

	require.NoError(t, RegisterDefaultAgents(registry, deps))

	assert.Equal(t, []string{
		"assembly",
		"content-rewrite",
		"instruction-capture",
		"job-analysis",
		"profile-structuring",
	}, registry.Names())

	err := RegisterDefaultAgents(registry, deps)
	assert.True(t, IsAgentAlreadyRegistered(err))
}
