package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/spf13/cobra"
)

var statusJSON bool

// Styles
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var statusDone = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var statusWIP = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
var statusDim = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
var statusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the execution plan summary and recent checkpoints",
	RunE:  runStatusCmd,
}

// statusJSONOutput represents the JSON output format for status.
type statusJSONOutput struct {
	Plan        *execution.ExecutionPlan `json:"plan"`
	Progress    float64                  `json:"progress"`
	NextStep    string                   `json:"next_step,omitempty"`
	Checkpoints []execution.Checkpoint   `json:"checkpoints,omitempty"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return err
	}
	state, err := services.Plan.LoadState()
	if err != nil {
		return MapError(err)
	}
	plan := state.ExecutionPlan

	if statusJSON {
		output := statusJSONOutput{
			Plan:        plan,
			Progress:    plan.Progress(),
			Checkpoints: state.Checkpoints,
		}
		if next := execution.NextStep(plan); next != nil {
			output.NextStep = next.ID
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("workbench · %s · %s", plan.WorkflowType, plan.BranchName)))
	fmt.Fprintln(out)

	for _, phase := range plan.Phases {
		fmt.Fprintf(out, "%s %s\n", styleForStatus(phase.Status).Render(statusGlyph(phase.Status)), phase.Name)
		for _, step := range phase.Steps {
			line := fmt.Sprintf("   %s %s", statusGlyph(step.Status), step.Name)
			if !step.Required {
				line += " (optional)"
			}
			fmt.Fprintln(out, styleForStatus(step.Status).Render(line))
		}
	}

	fmt.Fprintf(out, "\nProgress: %d/%d steps (%.0f%%)\n", plan.CompletedStepCount(), plan.StepCount(), plan.Progress()*100)

	if next := execution.NextStep(plan); next != nil {
		fmt.Fprintf(out, "Next: %s\n", next.ID)
		gate, err := execution.CheckStepDependencies(plan, next.ID)
		if err == nil && len(gate.Issues) > 0 {
			for _, issue := range gate.Issues {
				fmt.Fprintln(out, statusErr.Render("  ! "+issue))
			}
		}
	} else {
		fmt.Fprintln(out, statusDone.Render("All steps completed"))
	}

	if n := len(state.Checkpoints); n > 0 {
		fmt.Fprintln(out, "\nRecent checkpoints:")
		tail := state.Checkpoints
		if n > 5 {
			tail = tail[n-5:]
		}
		for _, cp := range tail {
			fmt.Fprintf(out, "  %s  %s (%s)\n", cp.CreatedAt.Format("2006-01-02 15:04"), cp.Message, cp.ID)
		}
	}
	return nil
}

func styleForStatus(s execution.Status) lipgloss.Style {
	switch s {
	case execution.StatusCompleted:
		return statusDone
	case execution.StatusInProgress:
		return statusWIP
	default:
		return statusDim
	}
}

func statusGlyph(s execution.Status) string {
	switch s {
	case execution.StatusCompleted:
		return "✓"
	case execution.StatusInProgress:
		return "◐"
	default:
		return "·"
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
