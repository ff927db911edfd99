// Package align classifies hunks against a stated goal.
//
// Classification is a heuristic term-overlap check plus recognition of
// inline intent markers — a pure function of its inputs, no external
// calls, no persistence.
package align

import (
	"regexp"
	"strings"

	"github.com/narrate-dev/narrate/internal/hunk"
)

// Bucket is the alignment classification of a hunk.
type Bucket string

const (
	// Aligned hunks overlap the goal statement by file path or content.
	Aligned Bucket = "aligned"
	// Inferred hunks carry an inline intent marker but no goal overlap.
	Inferred Bucket = "inferred"
	// Unrecognized hunks have neither signal and deserve human attention:
	// they may belong to an unrelated concurrent change.
	Unrecognized Bucket = "unrecognized"
)

// Alignment is the bucket plus the evidence that produced it: a matched
// goal keyword, or the text of an intent-marker comment.
type Alignment struct {
	Bucket   Bucket `json:"bucket"`
	Evidence string `json:"evidence,omitempty"`
}

// Classify buckets every hunk. Aligned takes precedence over inferred
// when both signals are present. Hunks with neither signal default to
// unrecognized, so the result is defined for every input hunk.
func Classify(goal string, hunks []hunk.DiffHunk) map[string]Alignment {
	goalTerms := termSet(goal)
	result := make(map[string]Alignment, len(hunks))

	for _, h := range hunks {
		result[h.ID] = classifyHunk(goalTerms, h)
	}
	return result
}

func classifyHunk(goalTerms map[string]bool, h hunk.DiffHunk) Alignment {
	if len(goalTerms) > 0 {
		if term := matchTerms(goalTerms, pathTerms(h.FilePath)); term != "" {
			return Alignment{Bucket: Aligned, Evidence: term}
		}
		for _, line := range h.Added {
			if term := matchTerms(goalTerms, tokenize(line.Text)); term != "" {
				return Alignment{Bucket: Aligned, Evidence: term}
			}
		}
	}

	for _, line := range h.Added {
		if marker := intentMarker(line.Text); marker != "" {
			return Alignment{Bucket: Inferred, Evidence: marker}
		}
	}

	return Alignment{Bucket: Unrecognized}
}

// intentTags are comment tags conventionally used to state why a change
// was made.
var intentTags = []string{"why:", "intent:", "goal:", "reason:", "rationale:"}

var commentRe = regexp.MustCompile(`^\s*(?:#|//|--|/\*+|\*)\s*(.+)`)

// intentMarker returns the text of an intent-marker comment on the line,
// or "" when the line is not one.
func intentMarker(text string) string {
	m := commentRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	body := strings.TrimSpace(m[1])
	lower := strings.ToLower(body)
	for _, tag := range intentTags {
		if strings.HasPrefix(lower, tag) {
			return strings.TrimSpace(body[len(tag):])
		}
	}
	return ""
}

// stopwords are high-frequency terms that carry no alignment signal.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"this": true, "that": true, "into": true, "when": true, "then": true,
	"are": true, "was": true, "were": true, "will": true, "should": true,
	"add": true, "adds": true, "added": true, "new": true, "use": true,
}

func termSet(s string) map[string]bool {
	terms := make(map[string]bool)
	for _, t := range tokenize(s) {
		terms[t] = true
	}
	return terms
}

var tokenRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

// tokenize lowercases and splits on non-alphanumerics, dropping short
// tokens and stopwords.
func tokenize(s string) []string {
	var tokens []string
	for _, t := range tokenRe.FindAllString(strings.ToLower(s), -1) {
		if len(t) < 3 || stopwords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func pathTerms(path string) []string {
	return tokenize(path)
}

func matchTerms(goalTerms map[string]bool, candidates []string) string {
	for _, c := range candidates {
		if goalTerms[c] {
			return c
		}
	}
	return ""
}
