package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/shared"
)

// Observer receives pages that match the session's current selection.
type Observer func(*models.CorrectionPage)

// Session tracks the selected correction and compare target and reloads when either changes.
//
// Every change starts a new generation. A load that finishes after a newer change is discarded
// and reported as [shared.ErrSuperseded], so observers only ever see the latest selection.
type Session struct {
	loader Loader

	mu         sync.Mutex
	params     resolve.Params
	generation uint64
	current    *models.CorrectionPage
	observers  []Observer
}

func NewSession(loader Loader) *Session {
	return &Session{loader: loader}
}

// Subscribe registers fn for delivered pages. Observers run with the session locked and must not call back into it.
func (s *Session) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Selection returns the current parameters.
func (s *Session) Selection() resolve.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Page returns the most recently delivered page, or nil.
func (s *Session) Page() *models.CorrectionPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCorrection selects a correction and clears any compare target.
func (s *Session) SetCorrection(ctx context.Context, id int) (*models.CorrectionPage, error) {
	return s.Select(ctx, resolve.Params{CorrectionID: id})
}

// SetCompare changes the compare target of the current correction. 0 selects the baseline diff.
func (s *Session) SetCompare(ctx context.Context, compareID int) (*models.CorrectionPage, error) {
	s.mu.Lock()
	params := s.params
	s.mu.Unlock()

	if params.CorrectionID == 0 {
		return nil, fmt.Errorf("%w: no correction selected", shared.ErrMissingArgument)
	}
	params.Compare = compareID
	return s.Select(ctx, params)
}

// Select replaces the selection and loads it.
func (s *Session) Select(ctx context.Context, params resolve.Params) (*models.CorrectionPage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.params = params
	s.mu.Unlock()

	page, err := s.loader.Load(ctx, params, nil)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return page, fmt.Errorf("%w: correction %d", shared.ErrSuperseded, params.CorrectionID)
	}
	s.current = page
	for _, fn := range s.observers {
		fn(page)
	}
	return page, nil
}

// Reload loads the current selection again, picking up invalidated cache entries.
func (s *Session) Reload(ctx context.Context) (*models.CorrectionPage, error) {
	return s.Select(ctx, s.Selection())
}
