// Package server wires the commit-context tools into an MCP server
// served over stdio.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/narrate-dev/narrate/internal/tools"
)

// Version is the narrate release version reported over MCP.
const Version = "0.3.0"

const instructions = `narrate builds structured, bounded commit context from git changes.

Tools:
  commit_context - paged diff content plus redacted secret findings and
    goal-alignment classification. Pass a goal to get alignment signal;
    follow the response's nextPage cursor to read large diffs.
  scan_secrets - standalone secret scan of a diff scope. Findings are
    always redacted.

Start with commit_context on the staged scope before drafting a commit
message or pull-request description.`

// New constructs the MCP server with all tools registered.
func New() *server.MCPServer {
	s := server.NewMCPServer(
		"narrate",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	contextTool := tools.NewContextTool()
	s.AddTool(contextTool.Definition(), contextTool.Handle)

	scanTool := tools.NewScanTool()
	s.AddTool(scanTool.Definition(), scanTool.Handle)

	return s
}

// Serve runs the MCP server on stdio until the client disconnects.
func Serve() error {
	return server.ServeStdio(New())
}
