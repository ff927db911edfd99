// Package tools implements the MCP tools that expose the commit-context
// pipeline to AI assistants.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/narrate-dev/narrate/internal/config"
	"github.com/narrate-dev/narrate/internal/output"
	"github.com/narrate-dev/narrate/internal/paginate"
	"github.com/narrate-dev/narrate/internal/pipeline"
)

// ContextTool handles the commit_context MCP tool. Responses are paged:
// callers pass the page index back to walk large diffs without blowing
// the MCP response limit.
type ContextTool struct{}

// NewContextTool creates a ContextTool.
func NewContextTool() *ContextTool {
	return &ContextTool{}
}

// contextResponse is the tool's JSON payload: one page of diff content
// plus the full (page-independent) summary, findings, and alignment.
type contextResponse struct {
	Scope     string                   `json:"scope"`
	Goal      string                   `json:"goal,omitempty"`
	Summary   pipeline.Summary         `json:"summary"`
	Findings  []findingView            `json:"findings"`
	Alignment map[string]alignmentView `json:"alignment"`
	Page      pageView                 `json:"page"`
}

type pageView struct {
	Index      int    `json:"index"`
	TotalPages int    `json:"totalPages"`
	Cost       int    `json:"cost"`
	TotalCost  int    `json:"totalCost"`
	Budget     int    `json:"budget"`
	Truncated  bool   `json:"truncated,omitempty"`
	HasMore    bool   `json:"hasMore"`
	NextPage   *int   `json:"nextPage,omitempty"`
	Diff       string `json:"diff"`
}

type findingView struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Detector   string `json:"detector"`
	Confidence string `json:"confidence"`
	Preview    string `json:"preview"`
	Suppressed bool   `json:"suppressed,omitempty"`
}

type alignmentView struct {
	File     string `json:"file"`
	Bucket   string `json:"bucket"`
	Evidence string `json:"evidence,omitempty"`
}

// Definition returns the MCP tool definition for registration.
func (t *ContextTool) Definition() mcp.Tool {
	return mcp.NewTool("commit_context",
		mcp.WithDescription(
			"Build structured commit context from version-control changes: "+
				"bounded pages of diff content, secret-scan findings (redacted), "+
				"and goal-alignment classification per hunk. "+
				"Use before writing a commit message or PR description.",
		),
		mcp.WithString("scope",
			mcp.Description("Which changes to read: 'staged' (default), 'unstaged', or 'range'."),
			mcp.Enum("staged", "unstaged", "range"),
		),
		mcp.WithString("range",
			mcp.Description("Revision range for scope=range, e.g. 'origin/main..HEAD'."),
		),
		mcp.WithString("goal",
			mcp.Description("What the change is meant to accomplish. Used to classify hunks as aligned, inferred, or unrecognized."),
		),
		mcp.WithNumber("budget",
			mcp.Description("Token budget per page. Defaults to the configured budget."),
		),
		mcp.WithNumber("page",
			mcp.Description("Page index to return (default 0). Use the response's nextPage to continue."),
		),
	)
}

// Handle processes the commit_context tool call.
func (t *ContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope, err := scopeFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := config.Load(nil)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	opts := pipeline.Options{
		Scope:  scope,
		Goal:   req.GetString("goal", ""),
		Budget: intArg(req, "budget", 0),
	}

	cc, err := pipeline.Build(ctx, opts, cfg)
	if err != nil {
		if pipeline.IsUserError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	pageIdx := intArg(req, "page", 0)
	if pageIdx < 0 || pageIdx >= len(cc.Pages) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"page %d out of range: context has %d page(s)", pageIdx, len(cc.Pages))), nil
	}

	resp := buildResponse(cc, pageIdx)
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func buildResponse(cc *pipeline.CommitContext, pageIdx int) contextResponse {
	page := cc.Pages[pageIdx]

	var diff strings.Builder
	for _, ref := range page.Hunks {
		if h := cc.Hunk(ref.HunkID); h != nil {
			diff.WriteString(output.RenderHunk(*h))
		}
	}

	pv := pageView{
		Index:      page.Index,
		TotalPages: len(cc.Pages),
		Cost:       page.TotalCost,
		TotalCost:  paginate.TotalCost(cc.Pages),
		Budget:     cc.Budget,
		Truncated:  page.Truncated,
		HasMore:    page.HasMore,
		Diff:       diff.String(),
	}
	if page.HasMore {
		next := page.Index + 1
		pv.NextPage = &next
	}

	findings := make([]findingView, 0, len(cc.Findings))
	for _, f := range cc.Findings {
		findings = append(findings, findingView{
			File:       f.FilePath,
			Line:       f.Line,
			Detector:   f.Detector,
			Confidence: string(f.Confidence),
			Preview:    f.Preview,
			Suppressed: f.Suppressed,
		})
	}

	alignment := make(map[string]alignmentView, len(cc.Alignment))
	for id, a := range cc.Alignment {
		file := ""
		if h := cc.Hunk(id); h != nil {
			file = h.FilePath
		}
		alignment[id] = alignmentView{
			File:     file,
			Bucket:   string(a.Bucket),
			Evidence: a.Evidence,
		}
	}

	return contextResponse{
		Scope:     cc.Scope.String(),
		Goal:      cc.Goal,
		Summary:   cc.Summary,
		Findings:  findings,
		Alignment: alignment,
		Page:      pv,
	}
}
