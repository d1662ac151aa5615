// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for reviewing a correction:
//  1. [DetailView] : Header, diff with inline highlighting, and revisions in a scrollable viewport
//  2. [CompareView] : Pick the previous approved baseline or another correction of the entity
//  3. [HistoryView] : Browse the entity's corrections; enter opens one compared against the correction before it
//  4. [ConfirmView] : Confirm approving or rejecting a pending correction
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Selections go through a [tasks.Session], so a page that finishes loading after a newer selection is dropped.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, c/h, a/x, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
