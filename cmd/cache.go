package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/repositories"
	"github.com/desertthunder/correx/internal/shared"
)

func (r *Runner) snapshotRepository() (*repositories.SnapshotRepository, func() error, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return repositories.NewSnapshotRepository(db), db.Close, nil
}

// CacheList prints the persisted query snapshots.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.snapshotRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	criteria := map[string]any{}
	if tag := cmd.String("tag"); tag != "" {
		criteria["tag"] = tag
	}

	snapshots, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if cmd.Bool("json") {
		type row struct {
			Sequence  int    `json:"sequence"`
			Tag       string `json:"tag"`
			Key       string `json:"key"`
			FetchedAt string `json:"fetched_at"`
			Expired   bool   `json:"expired"`
		}
		now := time.Now()
		rows := make([]row, len(snapshots))
		for i, s := range snapshots {
			fetched := s.FetchedAt()
			rows[i] = row{s.Sequence(), s.Tag(), s.Key(), shared.FormatTimestamp(&fetched), s.Expired(r.config.Cache.TTL.Duration, now)}
		}
		return r.writeJSON(rows, true)
	}

	if len(snapshots) == 0 {
		return r.writePlain("No cached snapshots.\n")
	}
	for _, s := range snapshots {
		fetched := s.FetchedAt()
		r.writePlain("#%-4d %-22s %-36s %s\n", s.Sequence(), s.Tag(), s.Key(), shared.FormatTimestamp(&fetched))
	}
	return nil
}

// CacheClear soft-deletes persisted snapshots, optionally only those with --tag.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.snapshotRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := repo.Clear(cmd.String("tag"))
	if err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	r.logger.Info("cleared snapshots", "count", n, "tag", cmd.String("tag"))
	return r.writePlain("✓ Cleared %d snapshots\n", n)
}
