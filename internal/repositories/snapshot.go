package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
)

// SnapshotRepository implements [models.Repository] for persisted query [models.Snapshot]s.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `id, sequence, cache_key, tag, payload, fetched_at, created_at, updated_at, deleted_at`

func scanSnapshot(row interface{ Scan(...any) error }) (*models.Snapshot, error) {
	var (
		id        string
		sequence  int
		key       string
		tag       string
		payload   []byte
		fetchedAt time.Time
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &key, &tag, &payload, &fetchedAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	s := models.NewSnapshot(sequence, key, tag, payload)
	s.SetID(id)
	s.SetFetchedAt(fetchedAt)
	s.SetCreatedAt(createdAt)
	s.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		s.SetDeletedAt(&deletedAt.Time)
	}
	return s, nil
}

// Create inserts a new snapshot with generated ID and sequence
func (r *SnapshotRepository) Create(s *models.Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "query_snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO query_snapshots (id, sequence, cache_key, tag, payload, fetched_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, id, sequence, s.Key(), s.Tag(), string(s.Payload()), s.FetchedAt(), s.CreatedAt(), s.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	s.SetID(id)
	s.SetSequence(sequence)
	return nil
}

// Get retrieves a snapshot by ID, excluding soft-deleted rows
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM query_snapshots WHERE id = ? AND deleted_at IS NULL`

	s, err := scanSnapshot(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return s, nil
}

// GetByKey retrieves the live snapshot stored under a canonical cache key
func (r *SnapshotRepository) GetByKey(key string) (*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM query_snapshots WHERE cache_key = ? AND deleted_at IS NULL`

	s, err := scanSnapshot(r.db.QueryRow(query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return s, nil
}

// Update replaces a snapshot's payload and fetch time
func (r *SnapshotRepository) Update(s *models.Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	s.SetUpdatedAt(now)

	query := `
		UPDATE query_snapshots
		SET payload = ?, fetched_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, string(s.Payload()), s.FetchedAt(), now, s.ID())
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	return expectRows(result, "snapshot", s.ID())
}

// Delete soft-deletes a snapshot by ID
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE query_snapshots SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return expectRows(result, "snapshot", id)
}

// DeleteByKey soft-deletes the snapshot stored under key. A missing key is not an error.
func (r *SnapshotRepository) DeleteByKey(key string) error {
	_, err := r.db.Exec(`UPDATE query_snapshots SET deleted_at = ? WHERE cache_key = ? AND deleted_at IS NULL`, time.Now(), key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Clear soft-deletes every live snapshot, or only those with tag when it is non-empty, and returns the count.
func (r *SnapshotRepository) Clear(tag string) (int, error) {
	query := `UPDATE query_snapshots SET deleted_at = ? WHERE deleted_at IS NULL`
	args := []any{time.Now()}
	if tag != "" {
		query += ` AND tag = ?`
		args = append(args, tag)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(n), nil
}

// List retrieves live snapshots ordered by sequence.
//
// Supported criteria: "tag" (string), "key_prefix" (string), "fetched_before" (time.Time).
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.Snapshot, error) {
	var (
		where = []string{"deleted_at IS NULL"}
		args  []any
	)

	if tag, ok := criteria["tag"].(string); ok && tag != "" {
		where = append(where, "tag = ?")
		args = append(args, tag)
	}
	if prefix, ok := criteria["key_prefix"].(string); ok && prefix != "" {
		where = append(where, "substr(cache_key, 1, ?) = ?")
		args = append(args, len(prefix), prefix)
	}
	if before, ok := criteria["fetched_before"].(time.Time); ok {
		where = append(where, "fetched_at < ?")
		args = append(args, before)
	}

	query := `SELECT ` + snapshotColumns + ` FROM query_snapshots WHERE ` + strings.Join(where, " AND ") + ` ORDER BY sequence`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

func expectRows(result sql.Result, what, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s not found or already deleted", shared.ErrNotFound, what, id)
	}
	return nil
}
