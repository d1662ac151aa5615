package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/correx/internal/models"
)

var _ models.Repository[*models.Snapshot] = (*SnapshotRepository)(nil)

// sequenceTables lists the tables with a "<table>_sequence" counter row.
var sequenceTables = map[string]bool{
	"query_snapshots": true,
}

// NextSequence bumps the counter of table and returns the new value in one statement.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenceTables[table] {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}

	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
