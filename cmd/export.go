package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/formatter"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/tasks"
)

// ExportHistory writes one file per correction in an entity's history plus a manifest.
func (r *Runner) ExportHistory(ctx context.Context, cmd *cli.Command) error {
	entityType, id, err := entityArgs(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	workers := int(cmd.Int("workers"))
	if workers < 0 || workers > 10 {
		return fmt.Errorf("%w: --workers must be between 1 and 10", shared.ErrInvalidFlag)
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: workers,
		RateLimit:  cmd.Float("rate"),
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	r.writePlainHeader(fmt.Sprintf("Exporting %s #%d corrections", entityType.Label(), id))

	var exporter tasks.BulkExporter = r.engine
	result, err := exporter.ExportHistory(ctx, progress, entityType, id, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalCorrections)
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("  ✓ #%d → %s\n", res.CorrectionID, res.File)
		} else {
			r.writePlain("  ✗ #%d: %s\n", res.CorrectionID, res.ErrorMessage)
		}
	}
	r.writePlainln("Output directory: %s", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		return fmt.Errorf("%w: %d of %d corrections failed to export", shared.ErrAPIRequest, result.FailedExports, result.TotalCorrections)
	}
	return nil
}
