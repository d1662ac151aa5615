package models

import (
	"fmt"

	"github.com/desertthunder/correx/internal/shared"
)

// ChangeKind classifies a diff entry by which side is present.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota
	ChangeCreated
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeDeleted:
		return "deleted"
	default:
		return "modified"
	}
}

// CorrectionDiffEntry is one changed field.
//
// Path uses dot and bracket addressing, e.g. "localized_names[ja]".
// A nil Before marks a created field, a nil After a deleted one; both nil is invalid.
type CorrectionDiffEntry struct {
	Path   string  `json:"path"`
	Before *string `json:"before"`
	After  *string `json:"after"`
}

func (e CorrectionDiffEntry) Validate() error {
	if e.Path == "" {
		return fmt.Errorf("%w: diff entry has an empty path", shared.ErrInvalidResponse)
	}
	if e.Before == nil && e.After == nil {
		return fmt.Errorf("%w: diff entry %q has neither before nor after", shared.ErrInvalidResponse, e.Path)
	}
	return nil
}

func (e CorrectionDiffEntry) Kind() ChangeKind {
	switch {
	case e.Before == nil:
		return ChangeCreated
	case e.After == nil:
		return ChangeDeleted
	default:
		return ChangeModified
	}
}

// CorrectionDiff is the ordered list of field changes between a base and a target revision.
//
// Base ids are nil when the target has no earlier approved revision.
type CorrectionDiff struct {
	EntityID           int                   `json:"entity_id"`
	EntityType         EntityType            `json:"entity_type"`
	BaseCorrectionID   *int                  `json:"base_correction_id"`
	BaseHistoryID      *int                  `json:"base_history_id"`
	TargetCorrectionID int                   `json:"target_correction_id"`
	TargetHistoryID    int                   `json:"target_history_id"`
	Changes            []CorrectionDiffEntry `json:"changes"`
}

func (d CorrectionDiff) Validate() error {
	if !d.EntityType.Valid() {
		return fmt.Errorf("%w: diff has unknown entity type %q", shared.ErrInvalidResponse, d.EntityType)
	}
	for _, c := range d.Changes {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasBaseline reports whether the diff was computed against an earlier revision.
func (d CorrectionDiff) HasBaseline() bool {
	return d.BaseCorrectionID != nil
}

// Summary counts the changes by kind.
func (d CorrectionDiff) Summary() (created, modified, deleted int) {
	for _, c := range d.Changes {
		switch c.Kind() {
		case ChangeCreated:
			created++
		case ChangeDeleted:
			deleted++
		default:
			modified++
		}
	}
	return created, modified, deleted
}

// Ptr returns a pointer to v; fixtures and tests use it for nullable fields.
func Ptr[T any](v T) *T {
	return &v
}
