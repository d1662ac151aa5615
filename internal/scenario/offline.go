package scenario

import (
	"context"
	"fmt"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
)

// OfflineAPI answers every request with [shared.ErrNotFound]. Previews pair it with a seeded cache.
type OfflineAPI struct{}

func offline(what string, args ...any) error {
	return fmt.Errorf("%w: %s is not part of the preview", shared.ErrNotFound, fmt.Sprintf(what, args...))
}

func (OfflineAPI) FindOne(_ context.Context, id int) (*models.Correction, error) {
	return nil, offline("correction %d", id)
}

func (OfflineAPI) FindRevisions(_ context.Context, id int) ([]models.CorrectionRevisionSummary, error) {
	return nil, offline("revisions of %d", id)
}

func (OfflineAPI) FindDiff(_ context.Context, id int) (*models.CorrectionDiff, error) {
	return nil, offline("diff of %d", id)
}

func (OfflineAPI) Compare(_ context.Context, base, target int) (*models.CorrectionDiff, error) {
	return nil, offline("comparison %d..%d", base, target)
}

func (OfflineAPI) FindHistory(_ context.Context, entityType models.EntityType, id int) ([]models.CorrectionHistoryItem, error) {
	return nil, offline("history of %s #%d", entityType.Label(), id)
}

func (OfflineAPI) FindPending(_ context.Context, entityType models.EntityType, id int) (*int, error) {
	return nil, offline("pending correction of %s #%d", entityType.Label(), id)
}

func (OfflineAPI) Handle(_ context.Context, id int, _ models.HandleMethod) error {
	return fmt.Errorf("%w: previews cannot moderate correction %d", shared.ErrNotAuthenticated, id)
}
