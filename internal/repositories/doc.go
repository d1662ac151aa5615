// Package repositories implements SQLite persistence for fetched query results.
//
// [SnapshotRepository] handles CRUD operations with atomic sequence generation for human-readable ordering.
// Rows are soft-deleted via deleted_at timestamps and excluded from queries by default.
//
// Key Implementations:
//   - [SnapshotRepository] : Snapshot persistence with cache-key and tag lookups
//   - [SnapshotStore] : Adapter that lets the query cache persist results between runs
//
// Sequence numbers provide stable, human-readable ordering (e.g., snapshot #42) independent of UUIDs and fetch timestamps.
// [NextSequence] bumps the counter row of a "<table>_sequence" table in one statement.
package repositories
