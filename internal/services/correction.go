package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
)

// CorrectionService implements [CorrectionAPI] and [Moderator] over an [APIService].
type CorrectionService struct {
	api *APIService
}

// NewCorrectionService creates a typed correction client.
func NewCorrectionService(api *APIService) *CorrectionService {
	return &CorrectionService{api: api}
}

func (s *CorrectionService) FindOne(ctx context.Context, id int) (*models.Correction, error) {
	var c models.Correction
	if err := s.get(ctx, "/correction/"+strconv.Itoa(id), &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CorrectionService) FindRevisions(ctx context.Context, id int) ([]models.CorrectionRevisionSummary, error) {
	var revisions []models.CorrectionRevisionSummary
	if err := s.get(ctx, "/correction/"+strconv.Itoa(id)+"/revisions", &revisions); err != nil {
		return nil, err
	}
	for _, r := range revisions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	if revisions == nil {
		revisions = []models.CorrectionRevisionSummary{}
	}
	return revisions, nil
}

func (s *CorrectionService) FindDiff(ctx context.Context, id int) (*models.CorrectionDiff, error) {
	return s.diff(ctx, "/correction/"+strconv.Itoa(id)+"/diff")
}

func (s *CorrectionService) Compare(ctx context.Context, base, target int) (*models.CorrectionDiff, error) {
	return s.diff(ctx, fmt.Sprintf("/correction/%d/compare/%d", base, target))
}

func (s *CorrectionService) FindHistory(ctx context.Context, entityType models.EntityType, id int) ([]models.CorrectionHistoryItem, error) {
	if !entityType.Valid() {
		return nil, fmt.Errorf("%w: unknown entity type %q", shared.ErrInvalidArgument, entityType)
	}

	var items []models.CorrectionHistoryItem
	if err := s.get(ctx, fmt.Sprintf("/%s/%d/corrections", entityType.PathSegment(), id), &items); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	if items == nil {
		items = []models.CorrectionHistoryItem{}
	}
	return items, nil
}

func (s *CorrectionService) FindPending(ctx context.Context, entityType models.EntityType, id int) (*int, error) {
	if !entityType.Valid() {
		return nil, fmt.Errorf("%w: unknown entity type %q", shared.ErrInvalidArgument, entityType)
	}

	var pending *int
	if err := s.get(ctx, fmt.Sprintf("/%s/%d/pending-correction", entityType.PathSegment(), id), &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// Handle approves or rejects a pending correction.
func (s *CorrectionService) Handle(ctx context.Context, id int, method models.HandleMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: unknown method %q", shared.ErrInvalidArgument, method)
	}

	path := "/correction/" + strconv.Itoa(id) + "?" + url.Values{"method": {string(method)}}.Encode()
	resp, err := s.api.Post(ctx, path, []byte("{}"))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return newAPIError(path, resp)
	}
	return nil
}

func (s *CorrectionService) diff(ctx context.Context, path string) (*models.CorrectionDiff, error) {
	var d models.CorrectionDiff
	if err := s.get(ctx, path, &d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Changes == nil {
		d.Changes = []models.CorrectionDiffEntry{}
	}
	return &d, nil
}

func (s *CorrectionService) get(ctx context.Context, path string, v any) error {
	resp, err := s.api.Get(ctx, path)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return newAPIError(path, resp)
	}
	if err := decodeData(resp.Body, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
