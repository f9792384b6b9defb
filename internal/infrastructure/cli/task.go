package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/felixgeelhaar/workbench/internal/infrastructure/gitops"
	"github.com/felixgeelhaar/workbench/pkg/application"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/spf13/cobra"
)

var (
	taskWorkflow string
	taskBranch   string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage task workspaces",
}

var taskNewCmd = &cobra.Command{
	Use:   "new [issue]...",
	Short: "Provision a worktree and execution plan for a new task",
	Long: `Fetch the given issue numbers, create a dedicated git worktree, generate
the execution plan inside it, and render the task prompt.

Examples:
  workbench task new 2312
  workbench task new 12 15 --workflow feature-development
  workbench task new --workflow exploration --branch spike/cache-layer`,
	RunE: runTaskNewCmd,
}

func runTaskNewCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}
	cfg := services.Workspace.Config

	issueIDs := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return NewCLIError(fmt.Sprintf("invalid issue number: %s", arg), "Issue numbers are positive integers, e.g. 'workbench task new 2312'", nil)
		}
		issueIDs = append(issueIDs, id)
	}

	workflow := taskWorkflow
	if workflow == "" {
		workflow = cfg.DefaultWorkflow
	}
	wt := execution.WorkflowType(workflow)
	if !wt.IsValid() {
		return MapError(&execution.UnknownWorkflowTypeError{Type: wt})
	}

	branch := taskBranch
	if branch == "" {
		branch = gitops.BranchNameForIssues(workflow, issueIDs)
	}

	result, err := services.Setup.Provision(cmd.Context(), application.ProvisionRequest{
		WorkflowType: wt,
		IssueIDs:     issueIDs,
		BranchName:   branch,
		WorktreeDir:  cfg.WorktreeDir,
		ProjectKey:   cfg.ProjectKey,
	})
	if err != nil {
		return MapError(err)
	}

	runPostProvisionBatch(cmd, cfg.SDKRepo)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Workspace ready: %s\n", result.WorktreePath)
	fmt.Fprintf(out, "  branch:  %s\n", result.Plan.BranchName)
	fmt.Fprintf(out, "  plan:    %s (%d steps)\n", result.Plan.ID, result.Plan.StepCount())
	if result.PromptPath != "" {
		fmt.Fprintf(out, "  prompt:  %s\n", result.PromptPath)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "  issue:   #%d %s\n", issue.Number, issue.Title)
	}
	fmt.Fprintf(out, "\ncd %s && workbench status\n", result.WorktreePath)
	return nil
}

// runPostProvisionBatch refreshes the source repo around the new worktree.
// Failures are reported but do not fail the command; the worktree is usable
// without them.
func runPostProvisionBatch(cmd *cobra.Command, repoPath string) {
	prov := gitops.NewProvisioner(repoPath)
	ops := []gitops.Operation{
		{Name: "git fetch", Run: func(ctx context.Context) error {
			return prov.Fetch(ctx)
		}},
		{Name: "worktree prune", Run: func(ctx context.Context) error {
			return prov.Prune(ctx)
		}},
	}

	results := gitops.RunBatch(cmd.Context(), 2, ops, func(res gitops.Result) {
		if res.Err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s done (%s)\n", res.Name, res.Duration.Round(time.Millisecond))
		}
	})
	for _, res := range gitops.Failed(results) {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s failed: %v\n", res.Name, res.Err)
	}
}

func init() {
	taskNewCmd.Flags().StringVarP(&taskWorkflow, "workflow", "w", "", "Workflow type (issue-fix, feature-development, maintenance, exploration)")
	taskNewCmd.Flags().StringVarP(&taskBranch, "branch", "b", "", "Branch name (derived from issues when omitted)")
	taskCmd.AddCommand(taskNewCmd)
	RootCmd.AddCommand(taskCmd)
}
