package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/workbench/internal/infrastructure/watch"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and re-run the gate when artifacts appear",
	Long: `Watch the workspace for file changes. Whenever an expected artifact of the
active step is created or modified, the completion gate runs again and the
verdict is printed. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		// Fails fast when no plan exists rather than watching for nothing.
		if _, err := services.Plan.LoadState(); err != nil {
			return MapError(err)
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s\n", cwd)

		watcher := watch.NewArtifactWatcher(services.Plan, cwd, watchDebounce, func(step *execution.Step, result execution.GateResult) {
			if result.CanProceed {
				fmt.Fprintln(out, statusDone.Render(fmt.Sprintf("%s: gate satisfied, complete it with 'workbench step complete %s'", step.ID, step.ID)))
				return
			}
			fmt.Fprintf(out, "%s: still blocked\n", step.ID)
			for _, issue := range result.Issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
		})
		return watcher.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet window before the gate re-runs")
	RootCmd.AddCommand(watchCmd)
}
