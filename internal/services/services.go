// package services defines the [CorrectionAPI] interface for the wiki's correction endpoints
package services

import (
	"context"

	"github.com/desertthunder/correx/internal/models"
)

// CorrectionAPI reads corrections and their diffs from the wiki.
//
// Expected failures (not found, validation, auth, transport) are returned as errors that match the shared sentinels with [errors.Is].
type CorrectionAPI interface {
	// FindOne retrieves a single correction by id.
	FindOne(ctx context.Context, id int) (*models.Correction, error)

	// FindRevisions lists the revisions recorded under a correction.
	FindRevisions(ctx context.Context, id int) ([]models.CorrectionRevisionSummary, error)

	// FindDiff retrieves the baseline diff of a correction against the previous approved revision.
	FindDiff(ctx context.Context, id int) (*models.CorrectionDiff, error)

	// Compare retrieves the diff from base to target.
	Compare(ctx context.Context, base, target int) (*models.CorrectionDiff, error)

	// FindHistory lists the approved corrections of an entity, newest first.
	FindHistory(ctx context.Context, entityType models.EntityType, id int) ([]models.CorrectionHistoryItem, error)

	// FindPending returns the id of the entity's pending correction, if any.
	FindPending(ctx context.Context, entityType models.EntityType, id int) (*int, error)
}

// Moderator applies moderation actions to pending corrections.
type Moderator interface {
	Handle(ctx context.Context, id int, method models.HandleMethod) error
}
