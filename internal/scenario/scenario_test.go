package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/query"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/services"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/tasks"
)

var (
	_ services.CorrectionAPI = OfflineAPI{}
	_ services.Moderator     = OfflineAPI{}
)

func TestEmbeddedScenarios(t *testing.T) {
	all, err := All()
	if err != nil {
		t.Fatalf("embedded scenarios failed to load: %v", err)
	}

	want := []string{"pending_update", "approved_update", "rejected_update", "approved_create", "rejected_delete"}
	if diff := cmp.Diff(want, Keys()); diff != "" {
		t.Errorf("scenario keys mismatch (-want +got):\n%s", diff)
	}

	for _, s := range all {
		if s.Detail.ID != 104 || s.Detail.EntityType != models.EntityArtist || s.Detail.EntityID != 24 {
			t.Errorf("%s: unexpected detail %+v", s.Key, s.Detail)
		}
	}

	t.Run("Pending Update", func(t *testing.T) {
		s, _ := Find("")
		if s.Key != DefaultKey || s.Detail.Status != models.StatusPending || s.Detail.Handled() {
			t.Errorf("unexpected default scenario %+v", s.Detail)
		}
		if diff := cmp.Diff([]int{90, 98}, s.CompareIDs()); diff != "" {
			t.Errorf("compare ids mismatch (-want +got):\n%s", diff)
		}
		if len(s.Diff.Changes) != 4 || *s.Diff.Changes[1].After != "上海アリス幻樂団" {
			t.Errorf("unexpected baseline diff %+v", s.Diff.Changes)
		}
		if len(s.History) != 3 || s.History[0].HandledAt != nil {
			t.Errorf("unexpected history %+v", s.History)
		}
	})

	t.Run("Approved Create Has No Baseline", func(t *testing.T) {
		s, _ := Find("approved_create")
		if s.Diff.HasBaseline() || s.Diff.BaseHistoryID != nil {
			t.Error("approved_create should have no baseline")
		}
		for _, c := range s.Diff.Changes {
			if c.Kind() != models.ChangeCreated {
				t.Errorf("%s: expected created change", c.Path)
			}
		}
		if len(s.Compare) != 0 || len(s.History) != 1 {
			t.Errorf("expected single-item history without compares, got %d/%d", len(s.History), len(s.Compare))
		}
	})

	t.Run("Rejected Delete Removes Fields", func(t *testing.T) {
		s, _ := Find("rejected_delete")
		if s.Detail.Type != models.TypeDelete || s.Detail.Status != models.StatusRejected {
			t.Errorf("unexpected detail %+v", s.Detail)
		}
		for _, c := range s.Diff.Changes {
			if c.Kind() != models.ChangeDeleted {
				t.Errorf("%s: expected deleted change", c.Path)
			}
		}
	})

	t.Run("Handled Updates", func(t *testing.T) {
		for _, key := range []string{"approved_update", "rejected_update"} {
			s, _ := Find(key)
			if !s.Detail.Handled() || s.History[0].HandledAt == nil {
				t.Errorf("%s: expected handled detail and history item", key)
			}
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if _, err := Find("nope"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("Invalid YAML", func(t *testing.T) {
		if _, err := Parse([]byte("scenarios: [")); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Entry Without Sides", func(t *testing.T) {
		data := []byte(`
scenarios:
  - key: broken
    detail: { id: 1, status: Pending, type: Update, entity_type: Song, entity_id: 2, created_at: 2025-01-01T00:00:00Z }
    diff:
      entity_id: 2
      entity_type: Song
      target_correction_id: 1
      target_history_id: 3
      changes:
        - { path: title, before: null, after: null }
`)
		_, err := Parse(data)
		if !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected invalid diff entry to be rejected, got %v", err)
		}
	})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	newEngine := func(t *testing.T, key string) *tasks.CorrectionEngine {
		t.Helper()
		cache := query.New(query.CacheOpts{})
		t.Cleanup(func() { cache.Close() })

		s, err := Find(key)
		if err != nil {
			t.Fatalf("Find(%q) failed: %v", key, err)
		}
		if err := s.Seed(cache); err != nil {
			t.Fatalf("Seed failed: %v", err)
		}
		return tasks.NewCorrectionEngine(tasks.EngineOpts{Cache: cache, API: OfflineAPI{}, Moderator: OfflineAPI{}})
	}

	t.Run("Baseline Page Loads Offline", func(t *testing.T) {
		page, err := newEngine(t, DefaultKey).Load(ctx, resolve.Params{CorrectionID: 104}, nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if page.Err() != nil {
			t.Fatalf("seeded page should load without errors, got %v", page.Err())
		}
		if len(page.Candidates) != 2 || len(page.Revisions) != 3 {
			t.Errorf("unexpected page %+v", page)
		}
	})

	t.Run("Seeded Compare", func(t *testing.T) {
		page, _ := newEngine(t, DefaultKey).Load(ctx, resolve.Params{CorrectionID: 104, Compare: 90}, nil)
		if page.DiffErr != nil || len(page.Diff.Changes) != 3 {
			t.Errorf("expected seeded 90..104 comparison, got %v", page.DiffErr)
		}
	})

	t.Run("Unseeded Compare Falls Through", func(t *testing.T) {
		page, _ := newEngine(t, "approved_create").Load(ctx, resolve.Params{CorrectionID: 104, Compare: 98}, nil)
		if !errors.Is(page.DiffErr, shared.ErrNotFound) {
			t.Errorf("expected offline not found, got %v", page.DiffErr)
		}
		if page.Correction == nil || len(page.Candidates) != 0 {
			t.Errorf("expected detail without candidates, got %+v", page)
		}
	})

	t.Run("Unseeded Correction", func(t *testing.T) {
		page, _ := newEngine(t, DefaultKey).Load(ctx, resolve.Params{CorrectionID: 98}, nil)
		if !errors.Is(page.DetailErr, shared.ErrNotFound) {
			t.Errorf("expected detail not found, got %v", page.DetailErr)
		}
	})

	t.Run("Moderation Is Refused", func(t *testing.T) {
		err := newEngine(t, DefaultKey).Moderate(ctx, 104, models.MethodApprove)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
