package pipeline

import (
	"fmt"

	"github.com/narrate-dev/narrate/internal/align"
	"github.com/narrate-dev/narrate/internal/gitdiff"
	"github.com/narrate-dev/narrate/internal/hunk"
	"github.com/narrate-dev/narrate/internal/paginate"
	"github.com/narrate-dev/narrate/internal/secrets"
)

// Summary holds the aggregate change counters.
type Summary struct {
	TotalFiles    int `json:"totalFiles"`
	FilesAdded    int `json:"filesAdded"`
	FilesModified int `json:"filesModified"`
	FilesDeleted  int `json:"filesDeleted"`
	FilesRenamed  int `json:"filesRenamed"`
	FilesBinary   int `json:"filesBinary"`
	LinesAdded    int `json:"linesAdded"`
	LinesRemoved  int `json:"linesRemoved"`
}

// CommitContext is the root aggregate returned to the caller: bounded
// pages of hunks, redacted secret findings, per-hunk alignment, and
// summary counters. Constructed once per request, never mutated after
// assembly, never persisted.
type CommitContext struct {
	Scope     gitdiff.Scope              `json:"scope"`
	Goal      string                     `json:"goal,omitempty"`
	Budget    int                        `json:"budget"`
	Hunks     []hunk.DiffHunk            `json:"hunks"`
	Pages     []paginate.Page            `json:"pages"`
	Findings  []secrets.Finding          `json:"findings"`
	Alignment map[string]align.Alignment `json:"alignment"`
	Summary   Summary                    `json:"summary"`
}

// Hunk returns the hunk with the given ID, or nil.
func (cc *CommitContext) Hunk(id string) *hunk.DiffHunk {
	for i := range cc.Hunks {
		if cc.Hunks[i].ID == id {
			return &cc.Hunks[i]
		}
	}
	return nil
}

// assemble merges the paginator, scanner, and aligner outputs, checking
// the cross-stage invariants. The checks should be unreachable given the
// stages run over the same immutable hunk set, but the stages run
// independently, so a violation here means a pipeline bug — surfaced as
// ErrInconsistent, distinct from user-input errors.
func assemble(scope gitdiff.Scope, goal string, budget int,
	hunks []hunk.DiffHunk, pages []paginate.Page,
	findings []secrets.Finding, alignment map[string]align.Alignment,
) (*CommitContext, error) {
	known := hunk.IDSet(hunks)

	paged := make(map[string]bool, len(known))
	for _, p := range pages {
		for _, ref := range p.Hunks {
			if !known[ref.HunkID] {
				return nil, fmt.Errorf("%w: page %d references hunk %s", ErrInconsistent, p.Index, ref.HunkID)
			}
			if paged[ref.HunkID] {
				return nil, fmt.Errorf("%w: hunk %s appears on multiple pages", ErrInconsistent, ref.HunkID)
			}
			paged[ref.HunkID] = true
		}
	}
	if len(paged) != len(known) {
		return nil, fmt.Errorf("%w: %d hunks segmented but %d paged", ErrInconsistent, len(known), len(paged))
	}

	for _, f := range findings {
		if !known[f.HunkID] {
			return nil, fmt.Errorf("%w: finding %s/%d references hunk %s", ErrInconsistent, f.Detector, f.Line, f.HunkID)
		}
	}

	for id := range alignment {
		if !known[id] {
			return nil, fmt.Errorf("%w: alignment references hunk %s", ErrInconsistent, id)
		}
	}
	// Every hunk gets a bucket; unrecognized is the defined default.
	if alignment == nil {
		alignment = make(map[string]align.Alignment, len(known))
	}
	for id := range known {
		if _, ok := alignment[id]; !ok {
			alignment[id] = align.Alignment{Bucket: align.Unrecognized}
		}
	}

	if findings == nil {
		findings = []secrets.Finding{}
	}

	return &CommitContext{
		Scope:     scope,
		Goal:      goal,
		Budget:    budget,
		Hunks:     hunks,
		Pages:     pages,
		Findings:  findings,
		Alignment: alignment,
		Summary:   summarize(hunks),
	}, nil
}

// summarize computes per-file and per-line counters from the hunk set.
// A file's status is the strongest kind among its hunks: added, deleted,
// renamed, and binary dominate modified.
func summarize(hunks []hunk.DiffHunk) Summary {
	var s Summary
	fileKind := make(map[string]hunk.ChangeKind)
	var order []string

	for _, h := range hunks {
		s.LinesAdded += len(h.Added)
		s.LinesRemoved += len(h.Removed)
		prev, seen := fileKind[h.FilePath]
		if !seen {
			order = append(order, h.FilePath)
			fileKind[h.FilePath] = h.Kind
		} else if prev == hunk.KindModified && h.Kind != hunk.KindModified {
			fileKind[h.FilePath] = h.Kind
		}
	}

	s.TotalFiles = len(order)
	for _, path := range order {
		switch fileKind[path] {
		case hunk.KindAdded:
			s.FilesAdded++
		case hunk.KindDeleted:
			s.FilesDeleted++
		case hunk.KindRenamed:
			s.FilesRenamed++
		case hunk.KindBinary:
			s.FilesBinary++
		default:
			s.FilesModified++
		}
	}
	return s
}
