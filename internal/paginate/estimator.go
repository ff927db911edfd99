package paginate

import (
	"fmt"

	"github.com/narrate-dev/narrate/internal/hunk"
)

// binaryHunkCost is the fixed cost charged for a binary file's hunk,
// which carries no line content.
const binaryHunkCost = 8

// Estimator computes the token cost of a hunk. Implementations must be
// deterministic: pagination depends on identical estimates across runs.
type Estimator interface {
	Name() string
	Estimate(h hunk.DiffHunk) int
}

// ForName returns the estimator selected by configuration.
func ForName(name string) (Estimator, error) {
	switch name {
	case "", "lines":
		return LineCount{}, nil
	case "chars":
		return CharLength{}, nil
	default:
		return nil, fmt.Errorf("unknown cost estimator: %s", name)
	}
}

// LineCount charges one unit per changed line. The default estimator.
type LineCount struct{}

func (LineCount) Name() string { return "lines" }

func (LineCount) Estimate(h hunk.DiffHunk) int {
	if h.Kind == hunk.KindBinary {
		return binaryHunkCost
	}
	return len(h.Added) + len(h.Removed)
}

// CharLength approximates model tokens as one per four characters.
type CharLength struct{}

func (CharLength) Name() string { return "chars" }

func (CharLength) Estimate(h hunk.DiffHunk) int {
	if h.Kind == hunk.KindBinary {
		return binaryHunkCost
	}
	chars := 0
	for _, l := range h.Added {
		chars += len(l.Text) + 1
	}
	for _, l := range h.Removed {
		chars += len(l.Text) + 1
	}
	return chars / 4
}
