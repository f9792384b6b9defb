// Package cli implements the workbench command tree.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "workbench",
	Version: Version,
	Short:   "Per-task workspaces with a dependency-gated execution plan",
	Long: `Workbench provisions an isolated worktree per development task and tracks
the work through a phased execution plan. Steps unlock when their
dependencies complete and their artifacts exist, and every state change is
persisted so any later invocation picks up exactly where the last one left
off.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. CLIError hints are printed to stderr so a
// blocked command always tells the user what to do next.
func Execute() error {
	err := RootCmd.Execute()
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cliErr.Message)
		if cliErr.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
		}
		return err
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
