package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var checkpointArtifacts []string

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint <message>",
	Short: "Record a manual checkpoint at the current plan position",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		cp, err := services.Plan.CreateCheckpoint(strings.Join(args, " "), checkpointArtifacts)
		if err != nil {
			return MapError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\n", cp.ID)
		return nil
	},
}

func init() {
	checkpointCmd.Flags().StringArrayVarP(&checkpointArtifacts, "artifact", "a", nil, "Artifact path to associate (repeatable)")
	RootCmd.AddCommand(checkpointCmd)
}
