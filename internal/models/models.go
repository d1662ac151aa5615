// package models defines the data model for the correction review client
package models

import (
	"time"
)

// Model is a row persisted by correx. Wire types fetched from the wiki are plain structs and do not implement it.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface shared by SQLite-backed stores.
//
// Delete is a soft delete; List criteria keys are store specific (e.g. "tag", "key_prefix").
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// Keyed is a [Model] addressed by a natural key in addition to its uuid.
type Keyed interface {
	Model
	Key() string
}

var _ Keyed = (*Snapshot)(nil)
