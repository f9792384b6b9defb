package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/spf13/cobra"
)

var (
	planWorkflow string
	planBranch   string
	planJSON     bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and inspect the execution plan",
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fresh execution plan in the current workspace",
	Long: `Generate an execution plan for the current directory without provisioning
a worktree. Replaces any existing plan and its checkpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		cfg := services.Workspace.Config

		workflow := planWorkflow
		if workflow == "" {
			workflow = cfg.DefaultWorkflow
		}
		branch := planBranch
		if branch == "" {
			branch = currentBranchOrDefault()
		}

		plan, err := services.Plan.GeneratePlan(execution.GenerateRequest{
			WorkflowType: execution.WorkflowType(workflow),
			BranchName:   branch,
			ProjectKey:   cfg.ProjectKey,
		})
		if err != nil {
			return MapError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Generated %s plan %s with %d steps\n", plan.WorkflowType, plan.ID, plan.StepCount())
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the full plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		state, err := services.Plan.LoadState()
		if err != nil {
			return MapError(err)
		}

		if planJSON {
			data, err := json.MarshalIndent(state.ExecutionPlan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		out := cmd.OutOrStdout()
		plan := state.ExecutionPlan
		fmt.Fprintf(out, "Plan %s (%s)\n", plan.ID, plan.WorkflowType)
		for _, phase := range plan.Phases {
			fmt.Fprintf(out, "\n%s [%s]\n", phase.Name, phase.Status.DisplayName())
			for _, step := range phase.Steps {
				marker := " "
				if !step.Required {
					marker = "?"
				}
				fmt.Fprintf(out, "  %s %-28s %s\n", marker, step.ID, step.Status.DisplayName())
				for _, dep := range step.DependsOn {
					fmt.Fprintf(out, "      needs: %s\n", dep)
				}
				for _, artifact := range step.Artifacts {
					fmt.Fprintf(out, "      artifact: %s\n", artifact.Path)
				}
			}
		}
		return nil
	},
}

// currentBranchOrDefault names generated plans outside the provisioning
// flow. Reading git state here is best effort only.
func currentBranchOrDefault() string {
	if data, err := os.ReadFile(".git/HEAD"); err == nil {
		head := string(data)
		const prefix = "ref: refs/heads/"
		if len(head) > len(prefix) && head[:len(prefix)] == prefix {
			return head[len(prefix) : len(head)-1]
		}
	}
	return "workbench/local"
}

func init() {
	planGenerateCmd.Flags().StringVarP(&planWorkflow, "workflow", "w", "", "Workflow type")
	planGenerateCmd.Flags().StringVarP(&planBranch, "branch", "b", "", "Branch name recorded in the plan")
	planShowCmd.Flags().BoolVar(&planJSON, "json", false, "Output in JSON format")
	planCmd.AddCommand(planGenerateCmd)
	planCmd.AddCommand(planShowCmd)
	RootCmd.AddCommand(planCmd)
}
