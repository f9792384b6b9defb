package cli

import (
	"os"

	inframcp "github.com/felixgeelhaar/workbench/internal/infrastructure/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workbench MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("WORKBENCH_SKIP_MCP_START") == "true" {
			return nil
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		server, err := inframcp.NewServer(cwd)
		if err != nil {
			return MapError(err)
		}
		return server.ServeStdio(cmd.Context())
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	RootCmd.AddCommand(mcpCmd)
}
