package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	narrateserver "github.com/narrate-dev/narrate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: "Expose the commit-context pipeline as MCP tools over stdio, " +
		"for use by AI coding assistants.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := narrateserver.Serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}
