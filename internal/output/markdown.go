package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/narrate-dev/narrate/internal/align"
	"github.com/narrate-dev/narrate/internal/hunk"
	"github.com/narrate-dev/narrate/internal/pipeline"
)

// MarkdownWriter outputs a narrator-facing markdown payload: summary,
// per-page diff content, redacted findings, and alignment buckets.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, cc *pipeline.CommitContext) error {
	fmt.Fprintf(w, "## Commit Context — %s\n\n", cc.Scope)
	if cc.Goal != "" {
		fmt.Fprintf(w, "**Goal:** %s\n\n", cc.Goal)
	}

	s := cc.Summary
	fmt.Fprintf(w, "| Files | Added | Modified | Deleted | Renamed | Binary | +Lines | -Lines |\n")
	fmt.Fprintf(w, "|-------|-------|----------|---------|---------|--------|--------|--------|\n")
	fmt.Fprintf(w, "| %d | %d | %d | %d | %d | %d | %d | %d |\n\n",
		s.TotalFiles, s.FilesAdded, s.FilesModified, s.FilesDeleted,
		s.FilesRenamed, s.FilesBinary, s.LinesAdded, s.LinesRemoved)

	m.writeFindings(w, cc)
	m.writeAlignment(w, cc)

	for _, page := range cc.Pages {
		fmt.Fprintf(w, "### Page %d/%d (cost %d/%d)", page.Index+1, len(cc.Pages), page.TotalCost, cc.Budget)
		if page.Truncated {
			fmt.Fprintf(w, " — truncated: single hunk exceeds budget")
		}
		fmt.Fprintf(w, "\n\n```diff\n")
		for _, ref := range page.Hunks {
			if h := cc.Hunk(ref.HunkID); h != nil {
				fmt.Fprint(w, RenderHunk(*h))
			}
		}
		fmt.Fprintf(w, "```\n\n")
	}
	return nil
}

func (m *MarkdownWriter) writeFindings(w io.Writer, cc *pipeline.CommitContext) {
	if len(cc.Findings) == 0 {
		return
	}
	fmt.Fprintf(w, "### Secret findings\n\n")
	fmt.Fprintf(w, "| File | Line | Detector | Confidence | Preview | Suppressed |\n")
	fmt.Fprintf(w, "|------|------|----------|------------|---------|------------|\n")
	for _, f := range cc.Findings {
		fmt.Fprintf(w, "| %s | %d | %s | %s | `%s` | %v |\n",
			f.FilePath, f.Line, f.Detector, f.Confidence, f.Preview, f.Suppressed)
	}
	fmt.Fprintln(w)
}

func (m *MarkdownWriter) writeAlignment(w io.Writer, cc *pipeline.CommitContext) {
	grouped := make(map[align.Bucket][]string)
	for _, h := range cc.Hunks {
		a := cc.Alignment[h.ID]
		entry := h.FilePath
		if a.Evidence != "" {
			entry += " (" + a.Evidence + ")"
		}
		grouped[a.Bucket] = append(grouped[a.Bucket], entry)
	}

	fmt.Fprintf(w, "### Goal alignment\n\n")
	for _, bucket := range []align.Bucket{align.Aligned, align.Inferred, align.Unrecognized} {
		entries := grouped[bucket]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "**%s** (%d)\n\n", bucket, len(entries))
		for _, e := range dedupe(entries) {
			fmt.Fprintf(w, "- %s\n", e)
		}
		fmt.Fprintln(w)
	}
}

// RenderHunk reconstructs a readable diff block for one hunk. Removed
// lines precede added lines; the interleaving of the original diff is
// not preserved, which is fine for a narrator payload.
func RenderHunk(h hunk.DiffHunk) string {
	var b strings.Builder
	switch h.Kind {
	case hunk.KindBinary:
		fmt.Fprintf(&b, "Binary file %s changed\n", h.FilePath)
		return b.String()
	case hunk.KindRenamed:
		fmt.Fprintf(&b, "rename %s -> %s\n", h.OldPath, h.FilePath)
		if len(h.Added) == 0 && len(h.Removed) == 0 {
			return b.String()
		}
	}

	fmt.Fprintf(&b, "--- %s\n+++ %s\n", orDevNull(oldName(h)), orDevNull(newName(h)))
	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
		h.OldRange.Start, h.OldRange.Count, h.NewRange.Start, h.NewRange.Count)
	for _, l := range h.Removed {
		fmt.Fprintf(&b, "-%s\n", l.Text)
	}
	for _, l := range h.Added {
		fmt.Fprintf(&b, "+%s\n", l.Text)
	}
	return b.String()
}

func oldName(h hunk.DiffHunk) string {
	switch {
	case h.Kind == hunk.KindAdded:
		return ""
	case h.OldPath != "":
		return h.OldPath
	}
	return h.FilePath
}

func newName(h hunk.DiffHunk) string {
	if h.Kind == hunk.KindDeleted {
		return ""
	}
	return h.FilePath
}

func orDevNull(name string) string {
	if name == "" {
		return "/dev/null"
	}
	return name
}

func dedupe(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	var out []string
	for _, e := range entries {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
