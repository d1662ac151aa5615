package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/correx/internal/formatter"
	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
	tu "github.com/desertthunder/correx/internal/testing"
)

// exportFixture extends the artist fixture so every history item has a diff.
func exportFixture() *tu.FakeCorrectionAPI {
	api := tu.NewArtistFixture()
	api.Comparisons[[2]int{90, 98}] = &models.CorrectionDiff{
		EntityID: 24, EntityType: models.EntityArtist,
		BaseCorrectionID: models.Ptr(90), TargetCorrectionID: 98, TargetHistoryID: 5011,
		Changes: []models.CorrectionDiffEntry{{Path: "links", Before: models.Ptr("[]"), After: models.Ptr(`["https://example.com"]`)}},
	}
	api.Diffs[90] = &models.CorrectionDiff{
		EntityID: 24, EntityType: models.EntityArtist,
		TargetCorrectionID: 90, TargetHistoryID: 5002,
		Changes: []models.CorrectionDiffEntry{{Path: "name", After: models.Ptr("ZUN")}},
	}
	return api
}

func TestExportHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes One File Per Correction", func(t *testing.T) {
		api := exportFixture()
		engine := newTestEngine(t, api)
		dir := t.TempDir()
		progress := make(chan ProgressUpdate, 20)

		result, err := engine.ExportHistory(ctx, progress, models.EntityArtist, 24, BulkExportOpts{
			Format:    formatter.FormatMarkdown,
			OutputDir: dir,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("ExportHistory failed: %v", err)
		}

		if result.TotalCorrections != 3 || result.SuccessfulExports != 3 || result.FailedExports != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
		for _, name := range []string{"104_vs_98.md", "98_vs_90.md", "90.md", "export_manifest.json"} {
			tu.AssertFileExists(t, filepath.Join(dir, name))
		}

		for i, res := range result.Results {
			if res.Index != i {
				t.Errorf("results out of history order: %+v", result.Results)
				break
			}
		}
		if result.Results[2].CompareID != 0 {
			t.Error("oldest correction should export its baseline diff")
		}

		content := tu.MustReadFile(t, filepath.Join(dir, "104_vs_98.md"))
		if !strings.Contains(content, "Changes compared with correction #98") {
			t.Errorf("expected comparison heading, got:\n%s", content)
		}

		var manifest BulkExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.EntityID != 24 || len(manifest.Results) != 3 {
			t.Errorf("unexpected manifest %+v", manifest)
		}

		close(progress)
		sawExport := false
		for u := range progress {
			if u.Phase == ExportCorrection {
				sawExport = true
			}
		}
		if !sawExport {
			t.Error("expected export progress updates")
		}
	})

	t.Run("Missing Diff Fails Only That Correction", func(t *testing.T) {
		api := tu.NewArtistFixture()
		engine := newTestEngine(t, api)
		dir := t.TempDir()

		result, err := engine.ExportHistory(ctx, nil, models.EntityArtist, 24, BulkExportOpts{
			Format:    formatter.FormatJSON,
			OutputDir: dir,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("ExportHistory failed: %v", err)
		}
		if result.SuccessfulExports != 1 || result.FailedExports != 2 {
			t.Errorf("expected 1 success and 2 failures, got %+v", result)
		}
		failed := result.Results[2]
		if failed.Success || !errors.Is(failed.Error, shared.ErrNotFound) || failed.ErrorMessage == "" {
			t.Errorf("unexpected failure record %+v", failed)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "104_vs_98.json"))
	})

	t.Run("History Failure", func(t *testing.T) {
		engine := newTestEngine(t, tu.NewArtistFixture())
		_, err := engine.ExportHistory(ctx, nil, models.EntityRelease, 1, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		engine := newTestEngine(t, exportFixture())
		cctx, cancel := context.WithCancel(ctx)
		engine.History(cctx, models.EntityArtist, 24)
		cancel()

		_, err := engine.ExportHistory(cctx, nil, models.EntityArtist, 24, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
