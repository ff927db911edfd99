package hunk

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedDiff indicates the input did not parse as a unified diff.
// It is fatal for the request; there is no partial result.
var ErrMalformedDiff = errors.New("malformed diff")

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Segment parses a normalized unified diff into per-file, per-hunk units.
// Binary files yield a single content-less hunk with KindBinary. Pure renames
// and mode-only changes yield a single empty hunk so they still appear in the
// final context. Returns ErrMalformedDiff when the input is non-empty but does
// not follow unified-diff structure.
func Segment(diff string) ([]DiffHunk, error) {
	if strings.TrimSpace(diff) == "" {
		return nil, nil
	}

	sections := splitSections(diff)
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no file sections found", ErrMalformedDiff)
	}

	var hunks []DiffHunk
	for _, sec := range sections {
		secHunks, err := segmentSection(sec)
		if err != nil {
			return nil, err
		}
		hunks = append(hunks, secHunks...)
	}
	return hunks, nil
}

// splitSections splits a diff into per-file sections on "diff --git"
// boundaries. Text before the first boundary is not a valid section.
func splitSections(diff string) []string {
	var sections []string
	var current strings.Builder
	started := false

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") {
			if started && current.Len() > 0 {
				sections = append(sections, current.String())
				current.Reset()
			}
			started = true
		}
		if !started {
			if strings.TrimSpace(line) != "" {
				// Content before any file header cannot be attributed
				return nil
			}
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if started && current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// fileHeader holds the per-file metadata parsed before the first hunk.
// gitOldPath/gitNewPath come from the "diff --git" line itself: binary
// and mode-only sections carry no ---/+++ lines, so the header line is
// the only place their paths appear.
type fileHeader struct {
	oldPath    string
	newPath    string
	gitOldPath string
	gitNewPath string
	renameFrom string
	renameTo   string
	newFile    bool
	deleted    bool
	binary     bool
	modeChange bool
}

// parseGitHeader extracts the a/ and b/ paths from a "diff --git" line.
func parseGitHeader(line string) (oldPath, newPath string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	idx := strings.Index(rest, " b/")
	if idx < 0 {
		return "", ""
	}
	return strings.TrimPrefix(rest[:idx], "a/"), rest[idx+len(" b/"):]
}

func segmentSection(section string) ([]DiffHunk, error) {
	lines := strings.Split(section, "\n")
	var hdr fileHeader
	bodyStart := len(lines)

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			hdr.gitOldPath, hdr.gitNewPath = parseGitHeader(line)
		case strings.HasPrefix(line, "--- "):
			hdr.oldPath = stripPathPrefix(strings.TrimPrefix(line, "--- "), "a/")
		case strings.HasPrefix(line, "+++ "):
			hdr.newPath = stripPathPrefix(strings.TrimPrefix(line, "+++ "), "b/")
		case strings.HasPrefix(line, "rename from "):
			hdr.renameFrom = strings.TrimPrefix(line, "rename from ")
		case strings.HasPrefix(line, "rename to "):
			hdr.renameTo = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "new file mode"):
			hdr.newFile = true
		case strings.HasPrefix(line, "deleted file mode"):
			hdr.deleted = true
		case strings.HasPrefix(line, "old mode"), strings.HasPrefix(line, "new mode"):
			hdr.modeChange = true
		case strings.HasPrefix(line, "Binary files "), strings.HasPrefix(line, "GIT binary patch"):
			hdr.binary = true
		case strings.HasPrefix(line, "@@"):
			bodyStart = i
		}
		if bodyStart == i {
			break
		}
	}

	path, oldPath := resolvePaths(hdr)
	if path == "" {
		return nil, fmt.Errorf("%w: file section without a resolvable path", ErrMalformedDiff)
	}
	kind := resolveKind(hdr)

	if hdr.binary || bodyStart == len(lines) {
		// Binary file, pure rename, or mode-only change: one empty hunk.
		h := DiffHunk{FilePath: path, OldPath: oldPath, Kind: kind}
		h.ID = hunkID(path, h.OldRange, h.NewRange)
		return []DiffHunk{h}, nil
	}

	return parseHunks(lines[bodyStart:], path, oldPath, kind)
}

func parseHunks(lines []string, path, oldPath string, kind ChangeKind) ([]DiffHunk, error) {
	var hunks []DiffHunk
	var cur *DiffHunk
	oldLine, newLine := 0, 0

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			m := hunkHeaderRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("%w: invalid hunk header %q", ErrMalformedDiff, line)
			}
			if cur != nil {
				hunks = append(hunks, *cur)
			}
			cur = &DiffHunk{
				FilePath: path,
				OldPath:  oldPath,
				Kind:     kind,
				OldRange: Range{Start: atoi(m[1]), Count: atoiDefault(m[2], 1)},
				NewRange: Range{Start: atoi(m[3]), Count: atoiDefault(m[4], 1)},
			}
			cur.ID = hunkID(path, cur.OldRange, cur.NewRange)
			oldLine = cur.OldRange.Start
			newLine = cur.NewRange.Start
		case cur == nil:
			if strings.TrimSpace(line) != "" {
				return nil, fmt.Errorf("%w: content outside hunk: %q", ErrMalformedDiff, line)
			}
		case strings.HasPrefix(line, "+"):
			cur.Added = append(cur.Added, Line{Number: newLine, Text: line[1:]})
			newLine++
		case strings.HasPrefix(line, "-"):
			cur.Removed = append(cur.Removed, Line{Number: oldLine, Text: line[1:]})
			oldLine++
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file"
		case line == "":
			// trailing blank from the final newline split
		default:
			// context line
			oldLine++
			newLine++
		}
	}
	if cur != nil {
		hunks = append(hunks, *cur)
	}
	return hunks, nil
}

// resolvePaths picks the file path (and old path for renames) from the
// header. Deleted files keep their old path; /dev/null is never a path.
// The "diff --git" paths are the fallback for sections without ---/+++
// lines (binary files, mode-only changes).
func resolvePaths(hdr fileHeader) (path, oldPath string) {
	switch {
	case hdr.renameTo != "":
		return hdr.renameTo, hdr.renameFrom
	case hdr.newPath != "" && hdr.newPath != "/dev/null":
		return hdr.newPath, ""
	case hdr.oldPath != "" && hdr.oldPath != "/dev/null":
		return hdr.oldPath, ""
	case hdr.gitNewPath != "":
		if hdr.gitOldPath != hdr.gitNewPath {
			return hdr.gitNewPath, hdr.gitOldPath
		}
		return hdr.gitNewPath, ""
	case hdr.gitOldPath != "":
		return hdr.gitOldPath, ""
	}
	return "", ""
}

func resolveKind(hdr fileHeader) ChangeKind {
	switch {
	case hdr.binary:
		return KindBinary
	case hdr.renameTo != "":
		return KindRenamed
	case hdr.newFile || hdr.oldPath == "/dev/null":
		return KindAdded
	case hdr.deleted || hdr.newPath == "/dev/null":
		return KindDeleted
	default:
		return KindModified
	}
}

func stripPathPrefix(p, prefix string) string {
	p = strings.TrimSpace(p)
	if p == "/dev/null" {
		return p
	}
	return strings.TrimPrefix(p, prefix)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}
