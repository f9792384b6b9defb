package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/workbench/internal/infrastructure/config"
	"github.com/felixgeelhaar/workbench/pkg/storage"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workbench project in the current directory",
	Long: `Write a default workbench.yaml and create the .workbench state directory.
Edit the file afterwards to point at your SDK repo, worktree directory, and
GitHub repository.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		if _, statErr := os.Stat(config.ConfigFile); statErr == nil {
			return NewCLIError("workbench.yaml already exists", "Edit the existing file instead of re-initializing", nil)
		}

		if err := config.Save(cwd, config.DefaultConfig(cwd)); err != nil {
			return MapError(err)
		}
		if err := storage.NewFilesystemRepository(cwd).Initialize(); err != nil {
			return MapError(err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Initialized workbench project")
		fmt.Fprintln(cmd.OutOrStdout(), "  workbench.yaml written")
		fmt.Fprintln(cmd.OutOrStdout(), "  .workbench/ created")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
