package tools

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/narrate-dev/narrate/internal/align"
	"github.com/narrate-dev/narrate/internal/gitdiff"
	"github.com/narrate-dev/narrate/internal/hunk"
	"github.com/narrate-dev/narrate/internal/paginate"
	"github.com/narrate-dev/narrate/internal/pipeline"
)

func requestWith(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestScopeFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		wantMode string
		wantErr  bool
	}{
		{"default staged", map[string]interface{}{}, gitdiff.ModeStaged, false},
		{"unstaged", map[string]interface{}{"scope": "unstaged"}, gitdiff.ModeUnstaged, false},
		{
			"range with revisions",
			map[string]interface{}{"scope": "range", "range": "origin/main..HEAD"},
			gitdiff.ModeRange, false,
		},
		{"range without revisions", map[string]interface{}{"scope": "range"}, "", true},
		{"unknown scope", map[string]interface{}{"scope": "everything"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := scopeFromRequest(requestWith(tt.args))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("scopeFromRequest returned error: %v", err)
			}
			if scope.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", scope.Mode, tt.wantMode)
			}
		})
	}
}

func TestIntArg(t *testing.T) {
	req := requestWith(map[string]interface{}{
		"budget": float64(500),
		"page":   "not-a-number",
	})

	if got := intArg(req, "budget", 0); got != 500 {
		t.Errorf("intArg(budget) = %d, want 500", got)
	}
	if got := intArg(req, "page", 7); got != 7 {
		t.Errorf("intArg(page) = %d, want default 7 for non-numeric", got)
	}
	if got := intArg(req, "missing", 3); got != 3 {
		t.Errorf("intArg(missing) = %d, want default 3", got)
	}
}

func TestBuildResponse_Cursor(t *testing.T) {
	cc := &pipeline.CommitContext{
		Scope:  gitdiff.Scope{Mode: gitdiff.ModeStaged},
		Goal:   "fix login timeout",
		Budget: 100,
		Hunks: []hunk.DiffHunk{
			{ID: "h1", FilePath: "a.go", Kind: hunk.KindModified,
				Added: []hunk.Line{{Number: 1, Text: "x := 1"}}},
			{ID: "h2", FilePath: "b.go", Kind: hunk.KindModified,
				Added: []hunk.Line{{Number: 1, Text: "y := 2"}}},
		},
		Pages: []paginate.Page{
			{Index: 0, Hunks: []paginate.Ref{{HunkID: "h1", Cost: 60}}, TotalCost: 60, HasMore: true},
			{Index: 1, Hunks: []paginate.Ref{{HunkID: "h2", Cost: 40}}, TotalCost: 40},
		},
		Alignment: map[string]align.Alignment{
			"h1": {Bucket: align.Aligned, Evidence: "timeout"},
			"h2": {Bucket: align.Unrecognized},
		},
	}

	first := buildResponse(cc, 0)
	if !first.Page.HasMore {
		t.Error("page 0 of 2 should report more")
	}
	if first.Page.NextPage == nil || *first.Page.NextPage != 1 {
		t.Errorf("NextPage = %v, want 1", first.Page.NextPage)
	}
	if first.Page.TotalPages != 2 || first.Page.TotalCost != 100 {
		t.Errorf("TotalPages/TotalCost = %d/%d, want 2/100",
			first.Page.TotalPages, first.Page.TotalCost)
	}
	if !strings.Contains(first.Page.Diff, "+x := 1") {
		t.Errorf("page 0 diff missing h1 content:\n%s", first.Page.Diff)
	}
	if strings.Contains(first.Page.Diff, "y := 2") {
		t.Error("page 0 diff should not include h2 content")
	}

	last := buildResponse(cc, 1)
	if last.Page.HasMore || last.Page.NextPage != nil {
		t.Error("final page should not report more")
	}
	if last.Alignment["h2"].Bucket != "unrecognized" {
		t.Errorf("h2 bucket = %q, want unrecognized", last.Alignment["h2"].Bucket)
	}
}

func TestContextToolDefinition(t *testing.T) {
	def := NewContextTool().Definition()
	if def.Name != "commit_context" {
		t.Errorf("Name = %q, want commit_context", def.Name)
	}
	for _, arg := range []string{"scope", "range", "goal", "budget", "page"} {
		if _, ok := def.InputSchema.Properties[arg]; !ok {
			t.Errorf("definition missing argument %q", arg)
		}
	}
}

func TestScanToolDefinition(t *testing.T) {
	def := NewScanTool().Definition()
	if def.Name != "scan_secrets" {
		t.Errorf("Name = %q, want scan_secrets", def.Name)
	}
	for _, arg := range []string{"scope", "range"} {
		if _, ok := def.InputSchema.Properties[arg]; !ok {
			t.Errorf("definition missing argument %q", arg)
		}
	}
}
