package wiring

import (
	"github.com/felixgeelhaar/workbench/internal/infrastructure/github"
	"github.com/felixgeelhaar/workbench/internal/infrastructure/gitops"
	"github.com/felixgeelhaar/workbench/internal/infrastructure/prompts"
	"github.com/felixgeelhaar/workbench/pkg/application"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/felixgeelhaar/workbench/pkg/storage"
)

// AppServices exposes the application services wired together for one root.
type AppServices struct {
	Workspace *Workspace
	Plan      *application.PlanService
	Setup     *application.WorkspaceService
	Prompts   *prompts.Renderer
	Issues    *github.Client
}

// BuildAppServices constructs the service graph for a workspace root. The
// GitHub fetcher is only wired when owner and repo are configured; the setup
// flow works without a tracker.
func BuildAppServices(root string) (*AppServices, error) {
	workspace, err := NewWorkspace(root)
	if err != nil {
		return nil, err
	}
	cfg := workspace.Config

	renderer := prompts.NewRenderer(cfg.PromptDir)

	var issues *github.Client
	var fetcher application.IssueFetcher
	if cfg.GitHub.Owner != "" && cfg.GitHub.Repo != "" {
		issues = github.NewClient(cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.Token())
		fetcher = issues
	}

	setup := application.NewWorkspaceService(
		fetcher,
		gitops.NewProvisioner(cfg.SDKRepo),
		renderer,
		workspace.Repo,
		func(root string) execution.StateRepository {
			return storage.NewFilesystemRepository(root)
		},
	)

	return &AppServices{
		Workspace: workspace,
		Plan:      application.NewPlanService(workspace.Repo, workspace.Repo, root),
		Setup:     setup,
		Prompts:   renderer,
		Issues:    issues,
	}, nil
}
