package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/correx/internal/shared"
)

// CorrectionStatus is the moderation state of a correction.
type CorrectionStatus string

const (
	StatusPending  CorrectionStatus = "Pending"
	StatusApproved CorrectionStatus = "Approved"
	StatusRejected CorrectionStatus = "Rejected"
)

func (s CorrectionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s *CorrectionStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(s), func(v string) bool { return CorrectionStatus(v).Valid() }, "correction status")
}

// CorrectionType is the kind of change a correction proposes.
type CorrectionType string

const (
	TypeCreate CorrectionType = "Create"
	TypeUpdate CorrectionType = "Update"
	TypeDelete CorrectionType = "Delete"
)

func (t CorrectionType) Valid() bool {
	switch t {
	case TypeCreate, TypeUpdate, TypeDelete:
		return true
	}
	return false
}

func (t *CorrectionType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(t), func(v string) bool { return CorrectionType(v).Valid() }, "correction type")
}

// HandleMethod is the moderation action applied to a pending correction.
type HandleMethod string

const (
	MethodApprove HandleMethod = "Approve"
	MethodReject  HandleMethod = "Reject"
)

func (m HandleMethod) Valid() bool {
	return m == MethodApprove || m == MethodReject
}

func unmarshalEnum(data []byte, dst *string, valid func(string) bool, what string) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !valid(s) {
		return fmt.Errorf("%w: unknown %s %q", shared.ErrInvalidResponse, what, s)
	}
	*dst = s
	return nil
}

// Correction is a proposed change to an entity. It is never mutated after it is fetched.
type Correction struct {
	ID         int              `json:"id"`
	Status     CorrectionStatus `json:"status"`
	Type       CorrectionType   `json:"type"`
	EntityType EntityType       `json:"entity_type"`
	EntityID   int              `json:"entity_id"`
	CreatedAt  time.Time        `json:"created_at"`
	HandledAt  *time.Time       `json:"handled_at"`
}

func (c Correction) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("%w: correction id must be positive, got %d", shared.ErrInvalidResponse, c.ID)
	}
	if !c.Status.Valid() || !c.Type.Valid() || !c.EntityType.Valid() {
		return fmt.Errorf("%w: correction %d has unknown status, type or entity type", shared.ErrInvalidResponse, c.ID)
	}
	if c.EntityID <= 0 {
		return fmt.Errorf("%w: correction %d has no entity id", shared.ErrInvalidResponse, c.ID)
	}
	return nil
}

// Handled reports whether a moderator approved or rejected the correction.
func (c Correction) Handled() bool {
	return c.HandledAt != nil
}

// CorrectionUserSummary identifies the author of a correction or revision.
type CorrectionUserSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CorrectionHistoryItem is one correction in an entity's history.
//
// History lists are ordered newest first.
type CorrectionHistoryItem struct {
	ID          int                   `json:"id"`
	Type        CorrectionType        `json:"type"`
	CreatedAt   time.Time             `json:"created_at"`
	HandledAt   *time.Time            `json:"handled_at"`
	Description string                `json:"description"`
	Author      CorrectionUserSummary `json:"author"`
}

func (h CorrectionHistoryItem) Validate() error {
	if h.ID <= 0 {
		return fmt.Errorf("%w: history item id must be positive, got %d", shared.ErrInvalidResponse, h.ID)
	}
	if !h.Type.Valid() {
		return fmt.Errorf("%w: history item %d has unknown type %q", shared.ErrInvalidResponse, h.ID, h.Type)
	}
	return nil
}

// CorrectionRevisionSummary is one entity revision recorded under a correction.
type CorrectionRevisionSummary struct {
	EntityHistoryID int                   `json:"entity_history_id"`
	Author          CorrectionUserSummary `json:"author"`
	Description     string                `json:"description"`
}

func (r CorrectionRevisionSummary) Validate() error {
	if r.EntityHistoryID <= 0 {
		return fmt.Errorf("%w: revision history id must be positive, got %d", shared.ErrInvalidResponse, r.EntityHistoryID)
	}
	return nil
}
