package models

import (
	"encoding/json"
)

// CorrectionPage is everything a correction detail view shows.
//
// Each part is fetched independently; a failed fetch leaves the part empty and records its error.
// When the detail fetch fails nothing else is requested.
type CorrectionPage struct {
	CorrectionID int
	CompareID    int // 0 when showing the baseline diff

	Correction *Correction
	Diff       *CorrectionDiff
	Revisions  []CorrectionRevisionSummary
	History    []CorrectionHistoryItem
	Candidates []CorrectionHistoryItem

	DetailErr    error
	DiffErr      error
	RevisionsErr error
	HistoryErr   error
}

// Comparing reports whether the diff is an explicit comparison rather than the baseline.
func (p *CorrectionPage) Comparing() bool {
	return p.CompareID != 0
}

// Err returns the first recorded error in fetch order.
func (p *CorrectionPage) Err() error {
	for _, err := range []error{p.DetailErr, p.DiffErr, p.RevisionsErr, p.HistoryErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

type pageJSON struct {
	CorrectionID int                         `json:"correction_id"`
	CompareID    *int                        `json:"compare_id"`
	Correction   *Correction                 `json:"correction"`
	Diff         *CorrectionDiff             `json:"diff"`
	Revisions    []CorrectionRevisionSummary `json:"revisions"`
	History      []CorrectionHistoryItem     `json:"history"`
	Candidates   []CorrectionHistoryItem     `json:"candidates"`
	Errors       map[string]string           `json:"errors,omitempty"`
}

// MarshalJSON renders errors as messages keyed by part.
func (p CorrectionPage) MarshalJSON() ([]byte, error) {
	out := pageJSON{
		CorrectionID: p.CorrectionID,
		Correction:   p.Correction,
		Diff:         p.Diff,
		Revisions:    nonNil(p.Revisions),
		History:      nonNil(p.History),
		Candidates:   nonNil(p.Candidates),
	}
	if p.CompareID != 0 {
		out.CompareID = &p.CompareID
	}

	for part, err := range map[string]error{
		"detail":    p.DetailErr,
		"diff":      p.DiffErr,
		"revisions": p.RevisionsErr,
		"history":   p.HistoryErr,
	} {
		if err == nil {
			continue
		}
		if out.Errors == nil {
			out.Errors = map[string]string{}
		}
		out.Errors[part] = err.Error()
	}

	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
