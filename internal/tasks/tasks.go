// package tasks loads correction pages through the query cache and exports correction histories.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/query"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/services"
	"github.com/desertthunder/correx/internal/shared"
)

// Loader builds correction pages.
type Loader interface {
	Load(ctx context.Context, params resolve.Params, progress chan<- ProgressUpdate) (*models.CorrectionPage, error)
}

// BulkExporter writes an entity's correction history to disk.
type BulkExporter interface {
	ExportHistory(ctx context.Context, progress chan<- ProgressUpdate, entityType models.EntityType, entityID int, opts BulkExportOpts) (*BulkExportResult, error)
}

// EngineOpts configures a [CorrectionEngine]. Moderator and Logger are optional.
type EngineOpts struct {
	Cache     *query.Cache
	API       services.CorrectionAPI
	Moderator services.Moderator
	Logger    *log.Logger
}

// CorrectionEngine implements [Loader] and [BulkExporter] on top of a shared [query.Cache].
type CorrectionEngine struct {
	cache     *query.Cache
	opts      *query.Options
	moderator services.Moderator
	logger    *log.Logger
}

// NewCorrectionEngine creates an engine. The cache is borrowed; closing it is the caller's job.
func NewCorrectionEngine(o EngineOpts) *CorrectionEngine {
	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CorrectionEngine{
		cache:     o.Cache,
		opts:      query.NewOptions(o.API),
		moderator: o.Moderator,
		logger:    shared.WithLogger(logger, "component", "engine"),
	}
}

// Cache returns the engine's query cache.
func (e *CorrectionEngine) Cache() *query.Cache {
	return e.cache
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CorrectionEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load resolves and fetches everything a correction page shows.
//
// Invalid params are rejected with [shared.ErrValidation] before any request. The detail is fetched
// first; if it fails the page carries only that error. Otherwise the diff (or comparison), revisions
// and entity history are fetched concurrently and their failures are recorded on the page. A caller
// whose ctx ends gets ctx's error instead of a partial page.
func (e *CorrectionEngine) Load(ctx context.Context, params resolve.Params, progress chan<- ProgressUpdate) (*models.CorrectionPage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	q := params.DiffQuery()
	id := params.CorrectionID
	page := &models.CorrectionPage{CorrectionID: id, CompareID: q.CompareID()}

	e.sendProgress(progress, fetchDetailUpdate(id))
	detail, err := query.Ensure(ctx, e.cache, e.opts.Detail(id))
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		e.logger.Warn("correction detail failed", "id", id, "error", err)
		e.sendProgress(progress, fetchFailedUpdate(FetchDetail, 1, err))
		page.DetailErr = err
		page.History = []models.CorrectionHistoryItem{}
		page.Candidates = []models.CorrectionHistoryItem{}
		return page, nil
	}
	page.Correction = detail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page.Diff, page.DiffErr = query.Ensure(gctx, e.cache, q.Option(e.opts))
		if page.DiffErr != nil {
			e.logger.Warn("correction diff failed", "query", q.String(), "error", page.DiffErr)
			e.sendProgress(progress, fetchFailedUpdate(FetchDiff, 2, page.DiffErr))
			return ctx.Err()
		}
		e.sendProgress(progress, fetchDiffUpdate(2, q, page.Diff))
		return nil
	})
	g.Go(func() error {
		page.Revisions, page.RevisionsErr = query.Ensure(gctx, e.cache, e.opts.Revisions(id))
		if page.RevisionsErr != nil {
			e.logger.Warn("correction revisions failed", "id", id, "error", page.RevisionsErr)
			e.sendProgress(progress, fetchFailedUpdate(FetchRevisions, 3, page.RevisionsErr))
			return ctx.Err()
		}
		e.sendProgress(progress, fetchRevisionsUpdate(3, len(page.Revisions)))
		return nil
	})
	g.Go(func() error {
		page.History, page.HistoryErr = query.Ensure(gctx, e.cache, e.opts.History(detail.EntityType, detail.EntityID))
		if page.HistoryErr != nil {
			e.logger.Warn("entity history failed", "entity", detail.EntityType, "entity_id", detail.EntityID, "error", page.HistoryErr)
			e.sendProgress(progress, fetchFailedUpdate(FetchHistory, 4, page.HistoryErr))
			return ctx.Err()
		}
		e.sendProgress(progress, fetchHistoryUpdate(4, detail, len(page.History)))
		return nil
	})
	// part failures stay on the page; only the caller's cancellation aborts the load
	if err := g.Wait(); err != nil {
		e.logger.Debug("correction page abandoned", "id", id, "error", err)
		return nil, err
	}

	if page.History == nil {
		page.History = []models.CorrectionHistoryItem{}
	}
	page.Candidates = resolve.CompareCandidates(page.History, id)

	e.logger.Debug("loaded correction page", "id", id, "diff", q.String(), "candidates", len(page.Candidates))
	return page, nil
}

// History returns an entity's corrections, newest first.
func (e *CorrectionEngine) History(ctx context.Context, entityType models.EntityType, entityID int) ([]models.CorrectionHistoryItem, error) {
	if !entityType.Valid() || entityID <= 0 {
		return nil, fmt.Errorf("%w: entity %s #%d", shared.ErrInvalidArgument, entityType, entityID)
	}
	return query.Ensure(ctx, e.cache, e.opts.History(entityType, entityID))
}

// Pending returns the id of an entity's pending correction, or nil when there is none.
func (e *CorrectionEngine) Pending(ctx context.Context, entityType models.EntityType, entityID int) (*int, error) {
	if !entityType.Valid() || entityID <= 0 {
		return nil, fmt.Errorf("%w: entity %s #%d", shared.ErrInvalidArgument, entityType, entityID)
	}
	return query.Ensure(ctx, e.cache, e.opts.Pending(entityType, entityID))
}

// Moderate approves or rejects a correction and invalidates every cached query it affects.
func (e *CorrectionEngine) Moderate(ctx context.Context, id int, method models.HandleMethod) error {
	if e.moderator == nil {
		return fmt.Errorf("%w: moderation is not configured", shared.ErrNotAuthenticated)
	}
	if id <= 0 {
		return fmt.Errorf("%w: correction id must be positive, got %d", shared.ErrInvalidArgument, id)
	}
	if !method.Valid() {
		return fmt.Errorf("%w: unknown method %q (Approve, Reject)", shared.ErrInvalidArgument, method)
	}

	// entity keys are only known from the detail
	detail, detailErr := query.Ensure(ctx, e.cache, e.opts.Detail(id))

	if err := e.moderator.Handle(ctx, id, method); err != nil {
		return fmt.Errorf("failed to %s correction %d: %w", method, id, err)
	}
	e.logger.Info("moderated correction", "id", id, "method", method)

	// moderation moves the entity's approved baseline, so every diff and comparison is stale
	keys := []query.Key{query.DetailKey(id), query.RevisionsKey(id)}
	if detailErr == nil {
		keys = append(keys,
			query.HistoryKey(detail.EntityType, detail.EntityID),
			query.PendingKey(detail.EntityType, detail.EntityID),
		)
	}
	if err := e.cache.Invalidate(keys...); err != nil {
		return err
	}
	return e.cache.InvalidateTag(query.TagDiff, query.TagCompare)
}
