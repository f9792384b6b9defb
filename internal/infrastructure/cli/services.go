package cli

import (
	"os"

	"github.com/felixgeelhaar/workbench/internal/infrastructure/wiring"
)

// loadServicesForCurrentDir builds the service graph rooted at the working
// directory. Commands that operate inside a provisioned worktree see that
// worktree's plan; commands run at the project root see the root's.
func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	services, err := wiring.BuildAppServices(cwd)
	if err != nil {
		return nil, MapError(err)
	}
	return services, nil
}
