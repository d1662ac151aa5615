package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/correx/internal/shared"
)

// Snapshot is a query result persisted under its canonical cache key.
type Snapshot struct {
	id        string
	sequence  int
	key       string
	tag       string
	payload   []byte
	fetchedAt time.Time
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSnapshot creates a snapshot of payload fetched now. The id is assigned by the repository.
func NewSnapshot(sequence int, key, tag string, payload []byte) *Snapshot {
	now := time.Now()
	return &Snapshot{
		sequence:  sequence,
		key:       key,
		tag:       tag,
		payload:   payload,
		fetchedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Snapshot) ID() string { return s.id }
func (s *Snapshot) Sequence() int { return s.sequence }
func (s *Snapshot) Key() string { return s.key }
func (s *Snapshot) Tag() string { return s.tag }
func (s *Snapshot) Payload() []byte { return s.payload }
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }
func (s *Snapshot) UpdatedAt() time.Time { return s.updatedAt }
func (s *Snapshot) DeletedAt() *time.Time { return s.deletedAt }

func (s *Snapshot) SetID(id string) { s.id = id }
func (s *Snapshot) SetSequence(seq int) { s.sequence = seq }
func (s *Snapshot) SetPayload(payload []byte) { s.payload = payload }
func (s *Snapshot) SetFetchedAt(t time.Time) { s.fetchedAt = t }
func (s *Snapshot) SetCreatedAt(t time.Time) { s.createdAt = t }
func (s *Snapshot) SetUpdatedAt(t time.Time) { s.updatedAt = t }
func (s *Snapshot) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// Expired reports whether the snapshot is older than ttl at now. A zero ttl never expires.
func (s *Snapshot) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(s.fetchedAt) > ttl
}

func (s *Snapshot) Validate() error {
	if s.key == "" {
		return fmt.Errorf("%w: snapshot key is required", shared.ErrValidation)
	}
	if s.tag == "" {
		return fmt.Errorf("%w: snapshot tag is required", shared.ErrValidation)
	}
	if len(s.payload) == 0 {
		return fmt.Errorf("%w: snapshot payload is empty", shared.ErrValidation)
	}
	return nil
}
