package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/correx/internal/shared"
)

func TestEntityType(t *testing.T) {
	tc := []struct {
		entity  EntityType
		segment string
		label   string
		route   string
	}{
		{EntityArtist, "artist", "Artist", "/artist/24"},
		{EntityLabel, "label", "Label", "/label/24"},
		{EntityRelease, "release", "Release", "/release/24"},
		{EntitySong, "song", "Song", "/song/24"},
		{EntityTag, "tag", "Tag", "/tag/24"},
		{EntityEvent, "event", "Event", "/event/24"},
		{EntitySongLyrics, "song-lyrics", "Song lyrics", ""},
		{EntityCreditRole, "credit-role", "Credit role", ""},
	}

	for _, tt := range tc {
		t.Run(string(tt.entity), func(t *testing.T) {
			if got := tt.entity.PathSegment(); got != tt.segment {
				t.Errorf("PathSegment() = %q, want %q", got, tt.segment)
			}
			if got := tt.entity.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}

			route, ok := tt.entity.WebRoute(24)
			if ok != (tt.route != "") || route != tt.route {
				t.Errorf("WebRoute(24) = %q, %v; want %q", route, ok, tt.route)
			}

			for _, raw := range []string{string(tt.entity), tt.segment} {
				parsed, err := ParseEntityType(raw)
				if err != nil || parsed != tt.entity {
					t.Errorf("ParseEntityType(%q) = %q, %v", raw, parsed, err)
				}
			}
		})
	}

	t.Run("ParseEntityType Unknown", func(t *testing.T) {
		if _, err := ParseEntityType("planet"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("UnmarshalJSON Unknown", func(t *testing.T) {
		var e EntityType
		if err := json.Unmarshal([]byte(`"Planet"`), &e); !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})
}

func TestCorrection(t *testing.T) {
	t.Run("Decode", func(t *testing.T) {
		data := `{"id":104,"status":"Pending","type":"Update","entity_type":"Artist","entity_id":24,"created_at":"2025-12-29T09:12:00+08:00","handled_at":null}`

		var c Correction
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			t.Fatalf("failed to decode correction: %v", err)
		}
		if err := c.Validate(); err != nil {
			t.Fatalf("expected valid correction: %v", err)
		}
		if c.Handled() {
			t.Error("pending correction should not be handled")
		}
		want := time.Date(2025, 12, 29, 1, 12, 0, 0, time.UTC)
		if !c.CreatedAt.Equal(want) {
			t.Errorf("CreatedAt = %v, want %v", c.CreatedAt, want)
		}
	})

	t.Run("Decode Unknown Status", func(t *testing.T) {
		var c Correction
		err := json.Unmarshal([]byte(`{"id":1,"status":"Maybe","type":"Update","entity_type":"Artist","entity_id":1}`), &c)
		if !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		c := Correction{ID: 0, Status: StatusPending, Type: TypeUpdate, EntityType: EntityArtist, EntityID: 24}
		if err := c.Validate(); !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse for zero id, got %v", err)
		}

		c.ID = 104
		c.EntityID = 0
		if err := c.Validate(); err == nil {
			t.Error("expected error for missing entity id")
		}
	})

	t.Run("HandleMethod", func(t *testing.T) {
		if !MethodApprove.Valid() || !MethodReject.Valid() {
			t.Error("approve and reject should be valid")
		}
		if HandleMethod("Ignore").Valid() {
			t.Error("unknown method should be invalid")
		}
	})
}

func TestCorrectionDiff(t *testing.T) {
	t.Run("Entry Kind", func(t *testing.T) {
		tc := []struct {
			name  string
			entry CorrectionDiffEntry
			want  ChangeKind
		}{
			{"modified", CorrectionDiffEntry{Path: "name", Before: Ptr("ZUN"), After: Ptr("ZUN (Team Shanghai Alice)")}, ChangeModified},
			{"created", CorrectionDiffEntry{Path: "links", After: Ptr(`["https://example.com"]`)}, ChangeCreated},
			{"deleted", CorrectionDiffEntry{Path: "profile_image_url", Before: Ptr("/avatar.png")}, ChangeDeleted},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.entry.Kind(); got != tt.want {
					t.Errorf("Kind() = %v, want %v", got, tt.want)
				}
				if err := tt.entry.Validate(); err != nil {
					t.Errorf("unexpected validation error: %v", err)
				}
			})
		}
	})

	t.Run("Both Sides Null Is Invalid", func(t *testing.T) {
		data := `{"entity_id":24,"entity_type":"Artist","base_correction_id":null,"base_history_id":null,
			"target_correction_id":104,"target_history_id":5012,"changes":[{"path":"name","before":null,"after":null}]}`

		var d CorrectionDiff
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			t.Fatalf("failed to decode diff: %v", err)
		}
		if err := d.Validate(); !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
		if d.HasBaseline() {
			t.Error("diff without base ids should have no baseline")
		}
	})

	t.Run("Summary", func(t *testing.T) {
		d := CorrectionDiff{
			EntityType: EntityArtist,
			Changes: []CorrectionDiffEntry{
				{Path: "name", Before: Ptr("a"), After: Ptr("b")},
				{Path: "links", After: Ptr("[]")},
				{Path: "aliases", After: Ptr("[]")},
				{Path: "profile_image_url", Before: Ptr("/x.png")},
			},
		}

		created, modified, deleted := d.Summary()
		if created != 2 || modified != 1 || deleted != 1 {
			t.Errorf("Summary() = %d, %d, %d; want 2, 1, 1", created, modified, deleted)
		}
	})
}

func TestHistoryAndRevisions(t *testing.T) {
	item := CorrectionHistoryItem{ID: 98, Type: TypeUpdate, Author: CorrectionUserSummary{ID: 12, Name: "Rin Hoshino"}}
	if err := item.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	item.Type = "Merge"
	if err := item.Validate(); !errors.Is(err, shared.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}

	rev := CorrectionRevisionSummary{EntityHistoryID: 0}
	if err := rev.Validate(); err == nil {
		t.Error("expected error for zero history id")
	}
}

func TestSnapshot(t *testing.T) {
	s := NewSnapshot(1, `["correction::detail",104]`, "correction::detail", []byte(`{"id":104}`))
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := s.FetchedAt()
	if s.Expired(0, now.Add(24*time.Hour)) {
		t.Error("zero ttl should never expire")
	}
	if s.Expired(time.Minute, now.Add(30*time.Second)) {
		t.Error("snapshot should be fresh within ttl")
	}
	if !s.Expired(time.Minute, now.Add(2*time.Minute)) {
		t.Error("snapshot should expire after ttl")
	}

	s.SetPayload(nil)
	if err := s.Validate(); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation for empty payload, got %v", err)
	}
}
