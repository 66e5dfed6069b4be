// ABOUTME: Startup wiring that registers all tool packs into the registry
// ABOUTME: Registration failures are fatal misconfigurations, surfaced immediately

package toolset

import (
	"fmt"

	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// Clients bundles the collaborator clients the tool packs depend on.
type Clients struct {
	Tasks   *collab.TasksClient
	Search  *collab.SearchClient
	Profile *collab.ProfileClient
}

// RegisterAll registers every tool pack into the registry. Called once at
// startup; any failure is a wiring error.
func RegisterAll(registry *tools.Registry, clients Clients) error {
	var all []tools.Tool
	all = append(all, TaskTools(clients.Tasks)...)
	all = append(all, SearchTools(clients.Search)...)
	all = append(all, ProfileTools(clients.Profile)...)

	for _, tool := range all {
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("registering %s: %w", tool.Name, err)
		}
	}
	return nil
}
