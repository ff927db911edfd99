package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/narrate-dev/narrate/internal/align"
	"github.com/narrate-dev/narrate/internal/pipeline"
)

// TextWriter outputs a human-readable terminal summary.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, cc *pipeline.CommitContext) error {
	ew := &errWriter{w: w}

	ew.printf("Commit Context — %s\n", cc.Scope)
	if cc.Goal != "" {
		ew.printf("Goal: %s\n", cc.Goal)
	}
	ew.println(strings.Repeat("─", 60))

	s := cc.Summary
	ew.printf("%d file(s): %d added, %d modified, %d deleted, %d renamed, %d binary\n",
		s.TotalFiles, s.FilesAdded, s.FilesModified, s.FilesDeleted, s.FilesRenamed, s.FilesBinary)
	ew.printf("Lines: +%d -%d\n", s.LinesAdded, s.LinesRemoved)
	ew.printf("Pages: %d under budget %d\n", len(cc.Pages), cc.Budget)

	truncated := 0
	for _, p := range cc.Pages {
		if p.Truncated {
			truncated++
		}
	}
	if truncated > 0 {
		ew.printf("  %d page(s) truncated: single hunk over budget\n", truncated)
	}
	ew.println(strings.Repeat("─", 60))

	if len(cc.Findings) == 0 {
		ew.println("Secrets: none detected")
	} else {
		ew.printf("Secrets: %d finding(s)\n", len(cc.Findings))
		for _, f := range cc.Findings {
			suffix := ""
			if f.Suppressed {
				suffix = " (suppressed)"
			}
			ew.printf("  [%s] %s:%d %s %s%s\n",
				f.Confidence, f.FilePath, f.Line, f.Detector, f.Preview, suffix)
		}
	}

	counts := map[align.Bucket]int{}
	for _, a := range cc.Alignment {
		counts[a.Bucket]++
	}
	ew.printf("Alignment: %d aligned, %d inferred, %d unrecognized\n",
		counts[align.Aligned], counts[align.Inferred], counts[align.Unrecognized])

	if n := counts[align.Unrecognized]; n > 0 {
		ew.println("Unrecognized hunks (possibly unrelated changes):")
		for _, h := range cc.Hunks {
			if cc.Alignment[h.ID].Bucket == align.Unrecognized {
				ew.printf("  %s\n", h.FilePath)
			}
		}
	}

	return ew.err
}

// errWriter accumulates the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(s string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, s)
}
