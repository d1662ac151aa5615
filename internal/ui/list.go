package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/shared"
)

var (
	_ list.Item = compareItem{}
	_ list.Item = historyItem{}
)

// compareItem is one choice in the compare picker. A zero id is the baseline.
type compareItem struct {
	id       int
	item     *models.CorrectionHistoryItem
	selected bool
}

func (i compareItem) FilterValue() string { return i.Title() }
func (i compareItem) Title() string {
	label := "Previous approved baseline"
	if i.item != nil {
		label = fmt.Sprintf("#%d %s", i.item.ID, i.item.Type)
	}
	if i.selected {
		label += " (current)"
	}
	return label
}
func (i compareItem) Description() string {
	if i.item == nil {
		return "Diff against the entity revision before this correction"
	}
	return describe(*i.item)
}

// compareItems lists the baseline followed by the page's candidates, marking the active compare target.
func compareItems(page *models.CorrectionPage) []list.Item {
	items := []list.Item{compareItem{selected: !page.Comparing()}}
	for i := range page.Candidates {
		c := &page.Candidates[i]
		items = append(items, compareItem{id: c.ID, item: c, selected: c.ID == page.CompareID})
	}
	return items
}

// historyItem wraps [models.CorrectionHistoryItem] with the id it is diffed against.
type historyItem struct {
	item     models.CorrectionHistoryItem
	previous int
}

func (i historyItem) FilterValue() string { return i.item.Description }
func (i historyItem) Title() string {
	return fmt.Sprintf("#%d %s", i.item.ID, i.item.Type)
}
func (i historyItem) Description() string {
	return describe(i.item)
}

// params opens the item compared against the correction before it, or its baseline when it is the oldest.
func (i historyItem) params() resolve.Params {
	return resolve.Params{CorrectionID: i.item.ID, Compare: i.previous}
}

func historyItems(history []models.CorrectionHistoryItem) []list.Item {
	items := make([]list.Item, len(history))
	for i, h := range history {
		prev, _ := resolve.PreviousID(history, i)
		items[i] = historyItem{item: h, previous: prev}
	}
	return items
}

func describe(h models.CorrectionHistoryItem) string {
	desc := fmt.Sprintf("%s • %s", h.Author.Name, shared.FormatTimestamp(&h.CreatedAt))
	if h.HandledAt == nil {
		desc += " • pending"
	}
	if h.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, h.Description)
	}
	return desc
}
