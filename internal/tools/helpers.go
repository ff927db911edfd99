package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/narrate-dev/narrate/internal/gitdiff"
)

// scopeFromRequest reads the shared scope/range arguments.
func scopeFromRequest(req mcp.CallToolRequest) (gitdiff.Scope, error) {
	mode := req.GetString("scope", gitdiff.ModeStaged)
	revRange := req.GetString("range", "")
	return gitdiff.ParseScope(mode, revRange)
}

// intArg extracts an integer argument from a tool request.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
