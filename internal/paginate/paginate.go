// Package paginate packs diff hunks into ordered pages whose estimated
// cost stays under a token budget.
package paginate

import (
	"fmt"
	"sort"

	"github.com/narrate-dev/narrate/internal/hunk"
)

// Ref points a page entry at a hunk by ID, carrying its estimated cost.
// Costs are computed once here and never re-estimated downstream.
type Ref struct {
	HunkID string `json:"hunkId"`
	Cost   int    `json:"cost"`
}

// Page is an immutable snapshot of hunk references under the budget.
// A single hunk whose own cost exceeds the budget is emitted alone with
// Truncated set; its content is still scanned in full — truncation only
// bounds the narrator-facing payload.
type Page struct {
	Index     int   `json:"index"`
	Hunks     []Ref `json:"hunks"`
	TotalCost int   `json:"totalCost"`
	Truncated bool  `json:"truncated,omitempty"`
	HasMore   bool  `json:"hasMore"`
}

// Paginate packs hunks into pages in stable file-path order. Hunks are
// never split across pages. Identical input and budget produce identical
// page boundaries.
func Paginate(hunks []hunk.DiffHunk, budget int, est Estimator) ([]Page, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("token budget must be positive, got %d", budget)
	}
	if len(hunks) == 0 {
		return nil, nil
	}

	ordered := make([]hunk.DiffHunk, len(hunks))
	copy(ordered, hunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FilePath < ordered[j].FilePath
	})

	var pages []Page
	var cur Page

	flush := func() {
		if len(cur.Hunks) == 0 {
			return
		}
		cur.Index = len(pages)
		pages = append(pages, cur)
		cur = Page{}
	}

	for _, h := range ordered {
		cost := est.Estimate(h)

		if cost > budget {
			// Oversized hunk: solitary page, flagged truncated.
			flush()
			pages = append(pages, Page{
				Index:     len(pages),
				Hunks:     []Ref{{HunkID: h.ID, Cost: cost}},
				TotalCost: cost,
				Truncated: true,
			})
			continue
		}

		if cur.TotalCost+cost > budget {
			flush()
		}
		cur.Hunks = append(cur.Hunks, Ref{HunkID: h.ID, Cost: cost})
		cur.TotalCost += cost
	}
	flush()

	for i := range pages {
		pages[i].HasMore = i < len(pages)-1
	}
	return pages, nil
}

// TotalCost sums the cost of all pages.
func TotalCost(pages []Page) int {
	total := 0
	for _, p := range pages {
		total += p.TotalCost
	}
	return total
}
