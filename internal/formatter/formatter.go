// package formatter renders corrections, diffs and histories as plain text, Markdown, CSV and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (text, markdown, csv, json)", shared.ErrInvalidFlag, s)
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

func value(s *string) string {
	if s == nil {
		return "(none)"
	}
	return *s
}

// Title is the one-line heading of a correction, e.g. "Correction #104: Update Artist #24".
func Title(c *models.Correction) string {
	return fmt.Sprintf("Correction #%d: %s %s #%d", c.ID, c.Type, c.EntityType.Label(), c.EntityID)
}

// DiffHeading describes what the page's diff is measured against.
func DiffHeading(page *models.CorrectionPage) string {
	if page.Comparing() {
		return fmt.Sprintf("Changes compared with correction #%d", page.CompareID)
	}
	if page.Diff != nil && page.Diff.BaseCorrectionID != nil {
		return fmt.Sprintf("Changes since correction #%d", *page.Diff.BaseCorrectionID)
	}
	return "Changes from previous approved baseline"
}

// SummaryLine counts the changes of d by kind.
func SummaryLine(d *models.CorrectionDiff) string {
	created, modified, deleted := d.Summary()
	return fmt.Sprintf("%d changes (%d added, %d modified, %d removed)", len(d.Changes), created, modified, deleted)
}

// PageToText renders a loaded correction page as plain text.
func PageToText(page *models.CorrectionPage) []byte {
	var buf bytes.Buffer

	if page.Correction == nil {
		fmt.Fprintf(&buf, "Correction #%d\n\n", page.CorrectionID)
		if page.DetailErr != nil {
			fmt.Fprintf(&buf, "Error: %v\n", page.DetailErr)
		}
		return buf.Bytes()
	}

	c := page.Correction
	fmt.Fprintf(&buf, "%s\n", Title(c))
	fmt.Fprintf(&buf, "Status: %s\n", c.Status)
	fmt.Fprintf(&buf, "Created: %s\n", shared.FormatTimestamp(&c.CreatedAt))
	fmt.Fprintf(&buf, "Handled: %s\n\n", shared.FormatTimestamp(c.HandledAt))

	fmt.Fprintf(&buf, "%s\n", DiffHeading(page))
	switch {
	case page.DiffErr != nil:
		fmt.Fprintf(&buf, "  Error: %v\n", page.DiffErr)
	case page.Diff != nil:
		buf.Write(DiffToText(page.Diff))
	}

	buf.WriteString("\nRevisions\n")
	switch {
	case page.RevisionsErr != nil:
		fmt.Fprintf(&buf, "  Error: %v\n", page.RevisionsErr)
	case len(page.Revisions) == 0:
		buf.WriteString("  No revisions.\n")
	default:
		for _, r := range page.Revisions {
			fmt.Fprintf(&buf, "  #%d %s: %s\n", r.EntityHistoryID, r.Author.Name, r.Description)
		}
	}

	buf.WriteString("\nCompare with\n")
	switch {
	case page.HistoryErr != nil:
		fmt.Fprintf(&buf, "  Error: %v\n", page.HistoryErr)
	case len(page.Candidates) == 0:
		buf.WriteString("  No other corrections.\n")
	default:
		for _, item := range page.Candidates {
			marker := " "
			if item.ID == page.CompareID {
				marker = "*"
			}
			fmt.Fprintf(&buf, " %s #%d %s by %s\n", marker, item.ID, item.Type, item.Author.Name)
		}
	}

	return buf.Bytes()
}

// DiffToText lists each change with inline highlighting for modified values.
func DiffToText(d *models.CorrectionDiff) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "  %s\n", SummaryLine(d))
	for _, c := range d.Changes {
		switch c.Kind() {
		case models.ChangeCreated:
			fmt.Fprintf(&buf, "  + %s: %s\n", c.Path, value(c.After))
		case models.ChangeDeleted:
			fmt.Fprintf(&buf, "  - %s: %s\n", c.Path, value(c.Before))
		default:
			fmt.Fprintf(&buf, "  ~ %s: %s\n", c.Path, Inline(*c.Before, *c.After))
		}
	}
	return buf.Bytes()
}

// PageToMarkdown renders a loaded correction page as Markdown.
func PageToMarkdown(page *models.CorrectionPage) []byte {
	var buf bytes.Buffer

	if page.Correction == nil {
		fmt.Fprintf(&buf, "# Correction #%d\n\n", page.CorrectionID)
		if page.DetailErr != nil {
			fmt.Fprintf(&buf, "> **Error**: %v\n", page.DetailErr)
		}
		return buf.Bytes()
	}

	c := page.Correction
	fmt.Fprintf(&buf, "# %s\n\n", Title(c))
	fmt.Fprintf(&buf, "**Status**: %s\n", c.Status)
	fmt.Fprintf(&buf, "**Created**: %s\n", shared.FormatTimestamp(&c.CreatedAt))
	fmt.Fprintf(&buf, "**Handled**: %s\n\n", shared.FormatTimestamp(c.HandledAt))

	fmt.Fprintf(&buf, "## %s\n\n", DiffHeading(page))
	switch {
	case page.DiffErr != nil:
		fmt.Fprintf(&buf, "> **Error**: %v\n\n", page.DiffErr)
	case page.Diff != nil:
		buf.Write(DiffToMarkdown(page.Diff))
	}

	buf.WriteString("## Revisions\n\n")
	if page.RevisionsErr != nil {
		fmt.Fprintf(&buf, "> **Error**: %v\n\n", page.RevisionsErr)
	}
	for i, r := range page.Revisions {
		fmt.Fprintf(&buf, "%d. **#%d** %s: %s\n", i+1, r.EntityHistoryID, r.Author.Name, r.Description)
	}

	return buf.Bytes()
}

// DiffToMarkdown renders the changes as a table.
func DiffToMarkdown(d *models.CorrectionDiff) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n\n", SummaryLine(d))
	if len(d.Changes) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("| Field | Change | Before | After |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, c := range d.Changes {
		fmt.Fprintf(&buf, "| `%s` | %s | %s | %s |\n", c.Path, c.Kind(), mdCell(c.Before), mdCell(c.After))
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

func mdCell(s *string) string {
	if s == nil {
		return "_none_"
	}
	return "`" + escapePipes(*s) + "`"
}

func escapePipes(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		if r == '|' {
			buf.WriteString(`\|`)
			continue
		}
		buf.WriteRune(r)
	}
	return buf.String()
}

// DiffToCSV converts the changes to CSV with columns: Path, Change, Before, After.
//
// Missing sides are empty cells; the Change column tells them apart from empty strings.
func DiffToCSV(d *models.CorrectionDiff) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Path", "Change", "Before", "After"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range d.Changes {
		record := []string{c.Path, c.Kind().String(), "", ""}
		if c.Before != nil {
			record[2] = *c.Before
		}
		if c.After != nil {
			record[3] = *c.After
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// HistoryToText lists an entity's corrections newest first.
func HistoryToText(entityType models.EntityType, entityID int, items []models.CorrectionHistoryItem) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s #%d: %d corrections\n\n", entityType.Label(), entityID, len(items))
	for _, item := range items {
		fmt.Fprintf(&buf, "#%d %s by %s\n", item.ID, item.Type, item.Author.Name)
		fmt.Fprintf(&buf, "  Created: %s  Handled: %s\n", shared.FormatTimestamp(&item.CreatedAt), shared.FormatTimestamp(item.HandledAt))
		if item.Description != "" {
			fmt.Fprintf(&buf, "  %s\n", item.Description)
		}
	}
	return buf.Bytes()
}

// HistoryToCSV converts a history list to CSV with columns: ID, Type, Author, Created, Handled, Description.
func HistoryToCSV(items []models.CorrectionHistoryItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Type", "Author", "Created", "Handled", "Description"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, item := range items {
		handled := ""
		if item.HandledAt != nil {
			handled = item.HandledAt.Format("2006-01-02T15:04:05Z07:00")
		}
		record := []string{
			strconv.Itoa(item.ID),
			string(item.Type),
			item.Author.Name,
			item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			handled,
			item.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatPage renders a page in the given format. CSV covers the diff entries only.
func FormatPage(page *models.CorrectionPage, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return PageToMarkdown(page), nil
	case FormatCSV:
		if page.Diff == nil {
			return nil, fmt.Errorf("correction %d has no diff to export: %w", page.CorrectionID, page.Err())
		}
		return DiffToCSV(page.Diff)
	case FormatJSON:
		return shared.MarshalJSON(page, true)
	default:
		return PageToText(page), nil
	}
}

// WritePage writes the rendered page to path, creating parent directories.
func WritePage(page *models.CorrectionPage, format Format, path string) error {
	data, err := FormatPage(page, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
