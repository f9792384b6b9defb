package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stepForce bool

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Transition and check plan steps",
}

var stepStartCmd = &cobra.Command{
	Use:   "start <step-id>",
	Short: "Mark a step as in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionStep(cmd, args[0], "start")
	},
}

var stepCompleteCmd = &cobra.Command{
	Use:   "complete <step-id>",
	Short: "Mark a step as completed, gate-checked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionStep(cmd, args[0], "complete")
	},
}

var stepCheckCmd = &cobra.Command{
	Use:   "check <step-id>",
	Short: "Run the dependency and artifact gate without changing state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		result, err := services.Plan.CheckStep(args[0])
		if err != nil {
			return MapError(err)
		}

		out := cmd.OutOrStdout()
		if result.CanProceed {
			fmt.Fprintf(out, "%s\n", statusDone.Render("ok: step can proceed"))
		} else {
			fmt.Fprintf(out, "%s\n", statusErr.Render("blocked"))
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
		return nil
	},
}

func transitionStep(cmd *cobra.Command, stepID, event string) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}

	result, err := services.Plan.TransitionStep(stepID, event, stepForce)
	if err != nil {
		if result != nil && !result.Gate.CanProceed {
			msg := fmt.Sprintf("step %s is blocked", stepID)
			hint := "Resolve the issues below, or use --force for work that genuinely does not need them"
			for _, issue := range result.Gate.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", issue)
			}
			return NewCLIError(msg, hint, err)
		}
		return MapError(err)
	}

	out := cmd.OutOrStdout()
	_, step, _ := result.Plan.FindStep(stepID)
	fmt.Fprintf(out, "%s: %s\n", step.ID, step.Status.DisplayName())
	if result.Checkpoint != nil {
		fmt.Fprintf(out, "checkpoint: %s\n", result.Checkpoint.ID)
	}
	if result.Plan.Status.IsComplete() {
		fmt.Fprintln(out, statusDone.Render("Plan completed"))
	} else if next, err := services.Plan.Next(); err == nil && next != nil {
		fmt.Fprintf(out, "next: %s\n", next.ID)
	}
	return nil
}

func init() {
	stepCmd.PersistentFlags().BoolVar(&stepForce, "force", false, "Apply the transition even when the gate reports issues")
	stepCmd.AddCommand(stepStartCmd)
	stepCmd.AddCommand(stepCompleteCmd)
	stepCmd.AddCommand(stepCheckCmd)
	RootCmd.AddCommand(stepCmd)
}
