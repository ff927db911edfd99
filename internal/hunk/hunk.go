package hunk

import (
	"crypto/sha256"
	"fmt"
)

// ChangeKind classifies how a file changed within a diff.
type ChangeKind string

const (
	KindAdded    ChangeKind = "added"
	KindModified ChangeKind = "modified"
	KindDeleted  ChangeKind = "deleted"
	KindRenamed  ChangeKind = "renamed"
	KindBinary   ChangeKind = "binary"
)

// Range is a line span in one side of a diff.
type Range struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

// Line is a single changed line with its original line number.
// Added lines are numbered in the new file, removed lines in the old file.
type Line struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// DiffHunk is one contiguous block of changes within one file.
// Hunks are immutable once produced by Segment.
type DiffHunk struct {
	ID       string     `json:"id"`
	FilePath string     `json:"filePath"`
	OldPath  string     `json:"oldPath,omitempty"`
	Kind     ChangeKind `json:"kind"`
	OldRange Range      `json:"oldRange"`
	NewRange Range      `json:"newRange"`
	Added    []Line     `json:"added,omitempty"`
	Removed  []Line     `json:"removed,omitempty"`
}

// hunkID derives a stable identifier from the file path and both ranges.
// Identical input diffs therefore produce identical IDs across runs.
func hunkID(path string, oldRange, newRange Range) string {
	data := fmt.Sprintf("%s:%d,%d:%d,%d",
		path, oldRange.Start, oldRange.Count, newRange.Start, newRange.Count)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

// IDSet returns the set of hunk IDs, for membership checks.
func IDSet(hunks []DiffHunk) map[string]bool {
	set := make(map[string]bool, len(hunks))
	for _, h := range hunks {
		set[h.ID] = true
	}
	return set
}
