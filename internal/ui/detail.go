package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/correx/internal/formatter"
	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/shared"
)

func statusStyle(s models.CorrectionStatus) string {
	switch s {
	case models.StatusApproved:
		return styles.ok.Render(string(s))
	case models.StatusRejected:
		return styles.err.Render(string(s))
	default:
		return styles.warn.Render(string(s))
	}
}

// renderValue highlights removed and added runs of a modified value.
func renderValue(before, after string) string {
	var sb strings.Builder
	for _, s := range formatter.Segments(before, after) {
		switch s.Op {
		case formatter.SegmentRemoved:
			sb.WriteString(styles.removed.Render(s.Text))
		case formatter.SegmentAdded:
			sb.WriteString(styles.added.Render(s.Text))
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func renderChange(c models.CorrectionDiffEntry) string {
	switch c.Kind() {
	case models.ChangeCreated:
		return styles.added.Render(fmt.Sprintf("+ %s: %s", c.Path, *c.After))
	case models.ChangeDeleted:
		return styles.removed.Render(fmt.Sprintf("- %s: %s", c.Path, *c.Before))
	default:
		return fmt.Sprintf("%s %s: %s", styles.warn.Render("~"), c.Path, renderValue(*c.Before, *c.After))
	}
}

func renderError(err error) string {
	return "  " + styles.err.Render(fmt.Sprintf("Error: %v", err))
}

// renderPage lays out the detail view body: header, diff, revisions and compare candidates.
func renderPage(page *models.CorrectionPage) string {
	var b strings.Builder

	if page.Correction == nil {
		b.WriteString(styles.title.Render(fmt.Sprintf("Correction #%d", page.CorrectionID)) + "\n")
		if page.DetailErr != nil {
			b.WriteString(renderError(page.DetailErr) + "\n")
		}
		return b.String()
	}

	c := page.Correction
	b.WriteString(styles.title.Render(formatter.Title(c)) + "\n")
	fmt.Fprintf(&b, "Status:  %s\n", statusStyle(c.Status))
	fmt.Fprintf(&b, "Created: %s\n", shared.FormatTimestamp(&c.CreatedAt))
	fmt.Fprintf(&b, "Handled: %s\n\n", shared.FormatTimestamp(c.HandledAt))

	b.WriteString(styles.heading.Render(formatter.DiffHeading(page)) + "\n")
	switch {
	case page.DiffErr != nil:
		b.WriteString(renderError(page.DiffErr) + "\n")
	case page.Diff != nil:
		b.WriteString("  " + styles.help.Render(formatter.SummaryLine(page.Diff)) + "\n")
		for _, change := range page.Diff.Changes {
			b.WriteString("  " + renderChange(change) + "\n")
		}
	}

	b.WriteString("\n" + styles.heading.Render("Revisions") + "\n")
	switch {
	case page.RevisionsErr != nil:
		b.WriteString(renderError(page.RevisionsErr) + "\n")
	case len(page.Revisions) == 0:
		b.WriteString("  " + styles.help.Render("No revisions.") + "\n")
	default:
		for _, r := range page.Revisions {
			fmt.Fprintf(&b, "  #%d %s: %s\n", r.EntityHistoryID, r.Author.Name, r.Description)
		}
	}

	if page.HistoryErr != nil {
		b.WriteString("\n" + styles.heading.Render("Compare with") + "\n")
		b.WriteString(renderError(page.HistoryErr) + "\n")
	}

	return b.String()
}
