package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/shared"
	tu "github.com/desertthunder/correx/internal/testing"
)

// gatedLoader holds loads of gated corrections until their gate is closed.
type gatedLoader struct {
	inner   Loader
	gates   map[int]chan struct{}
	entered chan int
}

func (l *gatedLoader) Load(ctx context.Context, p resolve.Params, progress chan<- ProgressUpdate) (*models.CorrectionPage, error) {
	if gate, ok := l.gates[p.CorrectionID]; ok {
		l.entered <- p.CorrectionID
		<-gate
	}
	return l.inner.Load(ctx, p, progress)
}

type recorder struct {
	mu    sync.Mutex
	pages []*models.CorrectionPage
}

func (r *recorder) observe(p *models.CorrectionPage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, p)
}

func (r *recorder) ids() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][2]int, len(r.pages))
	for i, p := range r.pages {
		out[i] = [2]int{p.CorrectionID, p.CompareID}
	}
	return out
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("SetCorrection Then SetCompare", func(t *testing.T) {
		api := tu.NewArtistFixture()
		s := NewSession(newTestEngine(t, api))
		rec := &recorder{}
		s.Subscribe(rec.observe)

		if _, err := s.SetCorrection(ctx, 104); err != nil {
			t.Fatalf("SetCorrection failed: %v", err)
		}
		page, err := s.SetCompare(ctx, 98)
		if err != nil {
			t.Fatalf("SetCompare failed: %v", err)
		}
		if page.CompareID != 98 || len(page.Diff.Changes) != 2 {
			t.Errorf("expected 98..104 comparison, got %+v", page.Diff)
		}
		if s.Selection() != (resolve.Params{CorrectionID: 104, Compare: 98}) {
			t.Errorf("unexpected selection %+v", s.Selection())
		}
		if s.Page() != page {
			t.Error("Page() should return the last delivered page")
		}

		got := rec.ids()
		if len(got) != 2 || got[0] != [2]int{104, 0} || got[1] != [2]int{104, 98} {
			t.Errorf("unexpected deliveries %v", got)
		}
		if api.Calls("FindOne") != 1 || api.Calls("FindHistory") != 1 {
			t.Error("changing the compare target should reuse cached detail and history")
		}
	})

	t.Run("Compare Back To Baseline", func(t *testing.T) {
		s := NewSession(newTestEngine(t, tu.NewArtistFixture()))
		s.Select(ctx, resolve.Params{CorrectionID: 104, Compare: 90})

		page, err := s.SetCompare(ctx, 0)
		if err != nil || page.Comparing() {
			t.Errorf("expected baseline page, got %v, %v", page, err)
		}
	})

	t.Run("SetCompare Without Correction", func(t *testing.T) {
		s := NewSession(newTestEngine(t, tu.NewArtistFixture()))
		if _, err := s.SetCompare(ctx, 98); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Invalid Selection Keeps Previous", func(t *testing.T) {
		s := NewSession(newTestEngine(t, tu.NewArtistFixture()))
		s.SetCorrection(ctx, 104)

		if _, err := s.SetCompare(ctx, -2); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if s.Selection().Compare != 0 {
			t.Error("invalid input must not change the selection")
		}
	})

	t.Run("Superseded Load Is Not Delivered", func(t *testing.T) {
		gate := make(chan struct{})
		loader := &gatedLoader{
			inner:   newTestEngine(t, tu.NewArtistFixture()),
			gates:   map[int]chan struct{}{104: gate},
			entered: make(chan int, 1),
		}
		s := NewSession(loader)
		rec := &recorder{}
		s.Subscribe(rec.observe)

		done := make(chan error, 1)
		go func() {
			_, err := s.SetCorrection(ctx, 104)
			done <- err
		}()
		<-loader.entered

		if _, err := s.SetCorrection(ctx, 98); err != nil {
			t.Fatalf("SetCorrection(98) failed: %v", err)
		}
		close(gate)

		if err := <-done; !errors.Is(err, shared.ErrSuperseded) {
			t.Errorf("expected ErrSuperseded, got %v", err)
		}
		got := rec.ids()
		if len(got) != 1 || got[0] != [2]int{98, 0} {
			t.Errorf("only the latest selection should be delivered, got %v", got)
		}
		if s.Page().CorrectionID != 98 {
			t.Errorf("current page should be 98, got %d", s.Page().CorrectionID)
		}
	})

	t.Run("Reload Picks Up Invalidation", func(t *testing.T) {
		api := tu.NewArtistFixture()
		engine := newTestEngine(t, api)
		s := NewSession(engine)
		s.SetCorrection(ctx, 104)

		if err := engine.Moderate(ctx, 104, models.MethodApprove); err != nil {
			t.Fatalf("Moderate failed: %v", err)
		}
		if _, err := s.Reload(ctx); err != nil {
			t.Fatalf("Reload failed: %v", err)
		}
		if api.Calls("FindOne") != 2 {
			t.Errorf("expected detail to be refetched, FindOne called %d times", api.Calls("FindOne"))
		}
	})
}
