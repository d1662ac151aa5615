package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/correx/internal/formatter"
	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
)

// BulkExportOpts contains configuration for history exports.
type BulkExportOpts struct {
	Format     formatter.Format // text, markdown, csv or json
	OutputDir  string           // Base output directory (default: {entity}_{id}_corrections_{epoch})
	NumWorkers int              // Concurrent workers (default: 4)
	RateLimit  float64          // Page loads per second (default: 5)
}

// CorrectionExportResult records the export of one history item.
type CorrectionExportResult struct {
	Index        int    `json:"index"`
	CorrectionID int    `json:"correction_id"`
	CompareID    int    `json:"compare_id,omitempty"`
	File         string `json:"file,omitempty"`
	Success      bool   `json:"success"`
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// BulkExportResult summarizes a history export. Results keep history order.
type BulkExportResult struct {
	EntityType        models.EntityType        `json:"entity_type"`
	EntityID          int                      `json:"entity_id"`
	TotalCorrections  int                      `json:"total_corrections"`
	SuccessfulExports int                      `json:"successful_exports"`
	FailedExports     int                      `json:"failed_exports"`
	OutputDirectory   string                   `json:"output_directory"`
	ManifestPath      string                   `json:"-"`
	Results           []CorrectionExportResult `json:"results"`
}

type exportJob struct {
	index  int
	params resolve.Params
}

// ExportHistory writes one file per correction in an entity's history.
//
// Each correction is compared against the item after it in the newest-first history; the oldest
// correction gets its baseline diff. Page loads are rate limited and run on a worker pool, and a
// manifest is written once every job has finished.
func (e *CorrectionEngine) ExportHistory(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	entityType models.EntityType,
	entityID int,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	history, err := e.History(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("%s_%d_corrections_%d", entityType.PathSegment(), entityID, time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		EntityType:       entityType,
		EntityID:         entityID,
		TotalCorrections: len(history),
		OutputDirectory:  opts.OutputDir,
		Results:          make([]CorrectionExportResult, 0, len(history)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, len(history))
	results := make(chan CorrectionExportResult, len(history))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, item := range history {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			params := resolve.Params{CorrectionID: item.ID}
			if prev, ok := resolve.PreviousID(history, i); ok {
				params.Compare = prev
			}
			jobs <- exportJob{index: i, params: params}
			e.sendProgress(prog, exportingCorrectionUpdate(i+1, len(history), item.ID))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(history), res))
		} else {
			result.FailedExports++
			res.ErrorMessage = res.Error.Error()
			e.sendProgress(prog, exportFailedUpdate(completed, len(history), res))
		}
		result.Results = append(result.Results, res)
	}
	slices.SortFunc(result.Results, func(a, b CorrectionExportResult) int { return a.Index - b.Index })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled after %d of %d corrections: %w", completed, len(history), err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteJSON(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.logger.Info("exported history", "entity", entityType, "entity_id", entityID, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// exportWorker loads and writes pages from the jobs channel.
func (e *CorrectionEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- CorrectionExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- e.exportCorrection(ctx, job, opts)
	}
}

func (e *CorrectionEngine) exportCorrection(ctx context.Context, job exportJob, opts BulkExportOpts) CorrectionExportResult {
	res := CorrectionExportResult{
		Index:        job.index,
		CorrectionID: job.params.CorrectionID,
		CompareID:    job.params.Compare,
	}

	page, err := e.Load(ctx, job.params, nil)
	if err != nil {
		res.Error = err
		return res
	}
	if page.DetailErr != nil {
		res.Error = fmt.Errorf("detail: %w", page.DetailErr)
		return res
	}
	if page.DiffErr != nil {
		res.Error = fmt.Errorf("diff: %w", page.DiffErr)
		return res
	}

	name := strconv.Itoa(job.params.CorrectionID)
	if job.params.Compare != 0 {
		name = fmt.Sprintf("%d_vs_%d", job.params.CorrectionID, job.params.Compare)
	}
	path := filepath.Join(opts.OutputDir, name+opts.Format.Ext())
	if err := formatter.WritePage(page, opts.Format, path); err != nil {
		res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return res
	}

	res.File = path
	res.Success = true
	return res
}
