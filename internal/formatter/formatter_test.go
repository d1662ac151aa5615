package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
	tu "github.com/desertthunder/correx/internal/testing"
)

func fixturePage() *models.CorrectionPage {
	api := tu.NewArtistFixture()
	history := api.Histories["artist/24"]
	return &models.CorrectionPage{
		CorrectionID: 104,
		Correction:   api.Corrections[104],
		Diff:         api.Diffs[104],
		Revisions:    api.Revisions[104],
		History:      history,
		Candidates:   history[1:],
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"txt", FormatText},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"csv", FormatCSV},
		{"json", FormatJSON},
	}
	for _, tt := range tc {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
	if FormatMarkdown.Ext() != ".md" || FormatText.Ext() != ".txt" {
		t.Error("unexpected extensions")
	}
}

func TestPageToText(t *testing.T) {
	t.Run("Full Page", func(t *testing.T) {
		output := string(PageToText(fixturePage()))

		for _, want := range []string{
			"Correction #104: Update Artist #24",
			"Status: Pending",
			"Handled: None",
			"Changes since correction #98",
			"4 changes (0 added, 4 modified, 0 removed)",
			"~ localized_names[ja]:",
			"#5012 Kaze Ito: Added missing kana name",
			"#98 Update by Rin Hoshino",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q\n%s", want, output)
			}
		}
	})

	t.Run("Compare Marks Selected Candidate", func(t *testing.T) {
		page := fixturePage()
		page.CompareID = 90
		output := string(PageToText(page))

		if !strings.Contains(output, "Changes compared with correction #90") {
			t.Errorf("missing compare heading:\n%s", output)
		}
		if !strings.Contains(output, "* #90 Create") {
			t.Errorf("selected candidate not marked:\n%s", output)
		}
	})

	t.Run("Detail Failure", func(t *testing.T) {
		page := &models.CorrectionPage{CorrectionID: 7, DetailErr: shared.ErrNotFound}
		output := string(PageToText(page))
		if !strings.Contains(output, "Correction #7") || !strings.Contains(output, "Error: not found") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})

	t.Run("Part Failures", func(t *testing.T) {
		page := fixturePage()
		page.Diff = nil
		page.DiffErr = shared.ErrServerError
		page.Revisions = nil
		page.HistoryErr = shared.ErrTimeout
		output := string(PageToText(page))

		for _, want := range []string{"Error: server error", "No revisions.", "Error: operation timed out"} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q\n%s", want, output)
			}
		}
	})
}

func TestDiffToText(t *testing.T) {
	d := &models.CorrectionDiff{
		TargetCorrectionID: 3,
		Changes: []models.CorrectionDiffEntry{
			{Path: "name", After: models.Ptr("Alice")},
			{Path: "aliases[0]", Before: models.Ptr("Al")},
			{Path: "bio", Before: models.Ptr("old text"), After: models.Ptr("new text")},
		},
	}
	output := string(DiffToText(d))

	for _, want := range []string{
		"3 changes (1 added, 1 modified, 1 removed)",
		"+ name: Alice",
		"- aliases[0]: Al",
		"~ bio: [-old-]{+new+} text",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("diff output missing %q\n%s", want, output)
		}
	}
}

func TestPageToMarkdown(t *testing.T) {
	output := string(PageToMarkdown(fixturePage()))

	for _, want := range []string{
		"# Correction #104: Update Artist #24",
		"**Status**: Pending",
		"| Field | Change | Before | After |",
		"| `name` | modified | `ZUN` | `ZUN (Team Shanghai Alice)` |",
		"1. **#5012** Kaze Ito",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown output missing %q\n%s", want, output)
		}
	}

	t.Run("Escapes Pipes And Marks Missing Sides", func(t *testing.T) {
		d := &models.CorrectionDiff{Changes: []models.CorrectionDiffEntry{{Path: "note", After: models.Ptr("a|b")}}}
		output := string(DiffToMarkdown(d))
		if !strings.Contains(output, "| `note` | created | _none_ | `a\\|b` |") {
			t.Errorf("unexpected row:\n%s", output)
		}
	})
}

func TestDiffToCSV(t *testing.T) {
	d := &models.CorrectionDiff{
		Changes: []models.CorrectionDiffEntry{
			{Path: "name", Before: models.Ptr("A, B"), After: models.Ptr("")},
			{Path: "links", After: models.Ptr(`["x"]`)},
		},
	}

	data, err := DiffToCSV(d)
	if err != nil {
		t.Fatalf("DiffToCSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	want := [][]string{
		{"Path", "Change", "Before", "After"},
		{"name", "modified", "A, B", ""},
		{"links", "created", "", `["x"]`},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory(t *testing.T) {
	items := tu.NewArtistFixture().Histories["artist/24"]

	t.Run("Text", func(t *testing.T) {
		output := string(HistoryToText(models.EntityArtist, 24, items))
		if !strings.Contains(output, "Artist #24: 3 corrections") {
			t.Errorf("missing header:\n%s", output)
		}
		if strings.Index(output, "#104") > strings.Index(output, "#90") {
			t.Error("history must keep newest-first order")
		}
	})

	t.Run("CSV", func(t *testing.T) {
		data, err := HistoryToCSV(items)
		if err != nil {
			t.Fatalf("HistoryToCSV failed: %v", err)
		}
		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 4 || records[1][0] != "104" || records[1][4] != "" {
			t.Errorf("unexpected records %v", records)
		}
		if records[2][4] == "" {
			t.Error("handled correction should carry its handled time")
		}
	})
}

func TestFormatPage(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		page := fixturePage()
		page.RevisionsErr = shared.ErrNotFound
		data, err := FormatPage(page, FormatJSON)
		if err != nil {
			t.Fatalf("FormatPage failed: %v", err)
		}

		var decoded struct {
			CorrectionID int               `json:"correction_id"`
			CompareID    *int              `json:"compare_id"`
			Errors       map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.CorrectionID != 104 || decoded.CompareID != nil {
			t.Errorf("unexpected ids %+v", decoded)
		}
		if decoded.Errors["revisions"] != "not found" {
			t.Errorf("expected revisions error, got %v", decoded.Errors)
		}
	})

	t.Run("CSV Without Diff", func(t *testing.T) {
		page := &models.CorrectionPage{CorrectionID: 5, DiffErr: shared.ErrNotFound}
		if _, err := FormatPage(page, FormatCSV); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected wrapped diff error, got %v", err)
		}
	})

	t.Run("WritePage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "artist", "24", "104.md")
		if err := WritePage(fixturePage(), FormatMarkdown, path); err != nil {
			t.Fatalf("WritePage failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(string(tu.MustReadFile(t, path)), "# Correction #104") {
			t.Error("written file missing heading")
		}
	})
}

func TestInline(t *testing.T) {
	t.Run("Segments", func(t *testing.T) {
		got := Segments("ZUN", "ZUN (Team Shanghai Alice)")
		want := []Segment{
			{Op: SegmentEqual, Text: "ZUN"},
			{Op: SegmentAdded, Text: " (Team Shanghai Alice)"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("segments mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Identical", func(t *testing.T) {
		if got := Inline("same", "same"); got != "same" {
			t.Errorf("Inline() = %q", got)
		}
	})

	t.Run("Replacement", func(t *testing.T) {
		if got := Inline("/avatar.png", "/artist/zun.png"); !strings.Contains(got, "[-") || !strings.Contains(got, "{+") {
			t.Errorf("expected removal and addition markers, got %q", got)
		}
	})

	t.Run("RenderMarkdown", func(t *testing.T) {
		out, err := RenderMarkdown([]byte("# Correction #104\n"), 0)
		if err != nil {
			t.Fatalf("RenderMarkdown failed: %v", err)
		}
		if !strings.Contains(out, "Correction #104") {
			t.Errorf("rendered output missing heading text: %q", out)
		}
	})
}
