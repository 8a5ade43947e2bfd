package registry

import (
	"github.com/dukex/resumeflow/pkg/agents"
	"github.com/dukex/resumeflow/pkg/agents/assemble"
	"github.com/dukex/resumeflow/pkg/agents/instructions"
	"github.com/dukex/resumeflow/pkg/agents/jobanalysis"
	"github.com/dukex/resumeflow/pkg/agents/profile"
	"github.com/dukex/resumeflow/pkg/agents/rewrite"
	"github.com/dukex/resumeflow/pkg/protocol"
)

// RegisterDefaultAgents registers the built-in agents under their
// canonical names.
func RegisterDefaultAgents(r *Registry, deps agents.Dependencies) error {
	defaults := []protocol.Agent{
		instructions.New(deps),
		profile.New(deps),
		jobanalysis.New(deps),
		rewrite.New(deps),
		assemble.New(deps),
	}

	for _, agent := range defaults {
		if err := r.Register(agent.Name(), agent); err != nil {
			return err
		}
	}

	return nil
}
