package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
)

// SnapshotStore implements query.Store using [SnapshotRepository].
//
// Saving an existing key replaces its payload in place so each key has at most one live row.
type SnapshotStore struct {
	repo *SnapshotRepository
}

// NewSnapshotStore creates a new SnapshotStore with the given repository
func NewSnapshotStore(repo *SnapshotRepository) *SnapshotStore {
	return &SnapshotStore{repo: repo}
}

func (a *SnapshotStore) Load(key string) ([]byte, time.Time, bool, error) {
	s, err := a.repo.GetByKey(key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}
	return s.Payload(), s.FetchedAt(), true, nil
}

func (a *SnapshotStore) Save(key, tag string, payload []byte) error {
	existing, err := a.repo.GetByKey(key)
	switch {
	case err == nil:
		existing.SetPayload(payload)
		existing.SetFetchedAt(time.Now())
		return a.repo.Update(existing)
	case errors.Is(err, shared.ErrNotFound):
		if err := a.repo.Create(models.NewSnapshot(0, key, tag, payload)); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return nil
	default:
		return err
	}
}

func (a *SnapshotStore) Delete(key string) error {
	return a.repo.DeleteByKey(key)
}

// DeleteTag soft-deletes every live snapshot carrying tag. An empty tag is rejected rather than clearing all rows.
func (a *SnapshotStore) DeleteTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: empty snapshot tag", shared.ErrInvalidArgument)
	}
	_, err := a.repo.Clear(tag)
	return err
}
