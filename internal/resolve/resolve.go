// Package resolve decides which diff a correction page shows and which corrections it can be compared against.
//
// Every function here is pure: no I/O, no cache access.
package resolve

import (
	"fmt"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/query"
)

// ResolveCompareTarget returns the active compare id. A zero compareID or one equal to correctionID means no compare.
func ResolveCompareTarget(correctionID, compareID int) (int, bool) {
	if compareID == 0 || compareID == correctionID {
		return 0, false
	}
	return compareID, true
}

// DiffKind selects between the baseline diff and an explicit comparison.
type DiffKind int

const (
	DiffBaseline DiffKind = iota
	DiffCompare
)

func (k DiffKind) String() string {
	if k == DiffCompare {
		return "compare"
	}
	return "baseline"
}

// DiffQuery is the diff a page needs. Base is only set for [DiffCompare]; Target is always the viewed correction.
type DiffQuery struct {
	Kind   DiffKind
	Base   int
	Target int
}

// SelectDiffQuery picks the diff for correctionID, comparing against compareID when it is an active compare target.
func SelectDiffQuery(correctionID, compareID int) DiffQuery {
	if base, ok := ResolveCompareTarget(correctionID, compareID); ok {
		return DiffQuery{Kind: DiffCompare, Base: base, Target: correctionID}
	}
	return DiffQuery{Kind: DiffBaseline, Target: correctionID}
}

// Key returns the cache key the query reads.
func (q DiffQuery) Key() query.Key {
	if q.Kind == DiffCompare {
		return query.CompareKey(q.Base, q.Target)
	}
	return query.DiffKey(q.Target)
}

// Option binds the query to opts.
func (q DiffQuery) Option(opts *query.Options) query.Option[*models.CorrectionDiff] {
	if q.Kind == DiffCompare {
		return opts.Compare(q.Base, q.Target)
	}
	return opts.Diff(q.Target)
}

// CompareID returns the base id for a compare query and 0 for a baseline one.
func (q DiffQuery) CompareID() int {
	if q.Kind == DiffCompare {
		return q.Base
	}
	return 0
}

func (q DiffQuery) String() string {
	if q.Kind == DiffCompare {
		return fmt.Sprintf("compare %d..%d", q.Base, q.Target)
	}
	return fmt.Sprintf("baseline %d", q.Target)
}

// CompareCandidates returns every history item other than correctionID, in history order.
//
// Status is not filtered: history lists are what the server returns.
func CompareCandidates(history []models.CorrectionHistoryItem, correctionID int) []models.CorrectionHistoryItem {
	candidates := make([]models.CorrectionHistoryItem, 0, len(history))
	for _, item := range history {
		if item.ID != correctionID {
			candidates = append(candidates, item)
		}
	}
	return candidates
}

// PreviousID returns the id of the item after index in a newest-first history, which is the correction before it.
// The oldest item and out-of-range indexes have none.
func PreviousID(history []models.CorrectionHistoryItem, index int) (int, bool) {
	if index < 0 || index+1 >= len(history) {
		return 0, false
	}
	return history[index+1].ID, true
}
