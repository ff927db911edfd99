package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/narrate-dev/narrate/internal/config"
	"github.com/narrate-dev/narrate/internal/gitdiff"
	"github.com/narrate-dev/narrate/internal/hunk"
	"github.com/narrate-dev/narrate/internal/secrets"
)

// ScanTool handles the scan_secrets MCP tool: a standalone secret scan
// over a diff scope, without building the full commit context.
type ScanTool struct{}

// NewScanTool creates a ScanTool.
func NewScanTool() *ScanTool {
	return &ScanTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ScanTool) Definition() mcp.Tool {
	return mcp.NewTool("scan_secrets",
		mcp.WithDescription(
			"Scan added lines in version-control changes for potential secrets "+
				"(API keys, tokens, private keys, high-entropy strings). "+
				"Findings are redacted; raw secret values are never returned. "+
				"Run before committing to catch credentials early.",
		),
		mcp.WithString("scope",
			mcp.Description("Which changes to scan: 'staged' (default), 'unstaged', or 'range'."),
			mcp.Enum("staged", "unstaged", "range"),
		),
		mcp.WithString("range",
			mcp.Description("Revision range for scope=range, e.g. 'origin/main..HEAD'."),
		),
	)
}

// Handle processes the scan_secrets tool call.
func (t *ScanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, err := scopeFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	diff, err := gitdiff.Collect(ctx, scope)
	if err != nil {
		if errors.Is(err, gitdiff.ErrNoChanges) || errors.Is(err, gitdiff.ErrSourceUnavailable) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	hunks, err := hunk.Segment(diff)
	if err != nil {
		if errors.Is(err, hunk.ErrMalformedDiff) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	scanner := secrets.New(cfg.ScannerConfig())
	findings := scanner.Scan(hunks)
	report := secrets.BuildReport(findings, cfg.MaxFindings, secrets.Confidence(cfg.BlockOn))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
