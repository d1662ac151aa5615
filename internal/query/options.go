package query

import (
	"context"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/services"
)

// Options binds a [services.CorrectionAPI] to the correction query keys.
type Options struct {
	api services.CorrectionAPI
}

func NewOptions(api services.CorrectionAPI) *Options {
	return &Options{api: api}
}

func (o *Options) Detail(id int) Option[*models.Correction] {
	return Option[*models.Correction]{
		Key: DetailKey(id),
		Fetch: func(ctx context.Context) (*models.Correction, error) {
			return o.api.FindOne(ctx, id)
		},
	}
}

func (o *Options) Revisions(id int) Option[[]models.CorrectionRevisionSummary] {
	return Option[[]models.CorrectionRevisionSummary]{
		Key: RevisionsKey(id),
		Fetch: func(ctx context.Context) ([]models.CorrectionRevisionSummary, error) {
			return o.api.FindRevisions(ctx, id)
		},
	}
}

func (o *Options) Diff(id int) Option[*models.CorrectionDiff] {
	return Option[*models.CorrectionDiff]{
		Key: DiffKey(id),
		Fetch: func(ctx context.Context) (*models.CorrectionDiff, error) {
			return o.api.FindDiff(ctx, id)
		},
	}
}

// Compare is the diff from base to target.
func (o *Options) Compare(base, target int) Option[*models.CorrectionDiff] {
	return Option[*models.CorrectionDiff]{
		Key: CompareKey(base, target),
		Fetch: func(ctx context.Context) (*models.CorrectionDiff, error) {
			return o.api.Compare(ctx, base, target)
		},
	}
}

func (o *Options) History(entityType models.EntityType, id int) Option[[]models.CorrectionHistoryItem] {
	return Option[[]models.CorrectionHistoryItem]{
		Key: HistoryKey(entityType, id),
		Fetch: func(ctx context.Context) ([]models.CorrectionHistoryItem, error) {
			return o.api.FindHistory(ctx, entityType, id)
		},
	}
}

func (o *Options) Pending(entityType models.EntityType, id int) Option[*int] {
	return Option[*int]{
		Key: PendingKey(entityType, id),
		Fetch: func(ctx context.Context) (*int, error) {
			return o.api.FindPending(ctx, entityType, id)
		},
	}
}
