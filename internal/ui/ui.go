package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/correx/internal/formatter"
	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/tasks"
)

// Engine loads pages and applies moderation actions. [tasks.CorrectionEngine] implements it.
type Engine interface {
	tasks.Loader
	Moderate(ctx context.Context, id int, method models.HandleMethod) error
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DetailView ViewState = iota
	CompareView
	HistoryView
	ConfirmView
)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	engine      Engine
	session     *tasks.Session
	initial     resolve.Params
	width       int
	height      int
	detail      viewport.Model
	compareList list.Model
	historyList list.Model
	spinner     spinner.Model
	loading     bool
	page        *models.CorrectionPage
	method      models.HandleMethod
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model that opens params first.
func NewModel(ctx context.Context, engine Engine, params resolve.Params) *Model {
	return &Model{
		ctx:     ctx,
		view:    DetailView,
		engine:  engine,
		session: tasks.NewSession(engine),
		initial: params,
		detail:  viewport.New(80, 20),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and loads the initial page.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.selectPage(m.initial))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail.Width = msg.Width - 4
		m.detail.Height = msg.Height - 6
		// lists exist only while their view is open
		switch m.view {
		case CompareView:
			m.compareList.SetSize(msg.Width-4, msg.Height-8)
		case HistoryView:
			m.historyList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case DetailView:
			return m.handleDetailKeys(msg)
		case CompareView:
			return m.handleCompareKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgPageLoaded:
			return m.pageLoaded(msg.data.(pageLoaded))
		case MsgModerated:
			return m.moderated(msg.data.(moderated))
		}
	}

	return m.updateLists(msg)
}

func (m *Model) pageLoaded(data pageLoaded) (tea.Model, tea.Cmd) {
	// a newer selection is still loading
	if errors.Is(data.err, shared.ErrSuperseded) {
		return m, nil
	}
	m.loading = false
	if data.err != nil {
		m.err = data.err
		return m, nil
	}

	m.err = nil
	m.page = data.page
	m.detail.SetContent(renderPage(data.page))
	m.detail.GotoTop()
	return m, nil
}

func (m *Model) moderated(data moderated) (tea.Model, tea.Cmd) {
	if data.err != nil {
		m.status = styles.err.Render(fmt.Sprintf("Failed to %s correction #%d: %v", data.method, data.id, data.err))
		return m, nil
	}
	m.status = styles.ok.Render(fmt.Sprintf("✓ %s correction #%d", pastTense(data.method), data.id))
	return m, m.selectPage(m.session.Selection())
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.page == nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case DetailView:
		return m.renderDetail()
	case CompareView:
		return m.renderList(m.compareList, m.keys.enter, m.keys.back, m.keys.quit)
	case HistoryView:
		viewDiff := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view diff"))
		return m.renderList(m.historyList, viewDiff, m.keys.back, m.keys.quit)
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		return m, m.selectPage(m.session.Selection())
	case m.page == nil || m.page.Correction == nil:
		return m, nil
	case key.Matches(msg, m.keys.compare):
		m.openCompare()
		return m, nil
	case key.Matches(msg, m.keys.history):
		m.openHistory()
		return m, nil
	case key.Matches(msg, m.keys.approve):
		m.confirm(models.MethodApprove)
		return m, nil
	case key.Matches(msg, m.keys.reject):
		m.confirm(models.MethodReject)
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) handleCompareKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.compareList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = DetailView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.compareList.SelectedItem().(compareItem); ok {
			m.view = DetailView
			return m, m.selectPage(resolve.Params{CorrectionID: m.page.CorrectionID, Compare: item.id})
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.historyList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = DetailView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.historyList.SelectedItem().(historyItem); ok {
			m.view = DetailView
			return m, m.selectPage(item.params())
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = DetailView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = DetailView
		return m, m.moderate(m.page.CorrectionID, m.method)
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case CompareView:
		m.compareList, cmd = m.compareList.Update(msg)
	case HistoryView:
		m.historyList, cmd = m.historyList.Update(msg)
	}
	return m, cmd
}

func (m *Model) openCompare() {
	m.compareList = list.New(compareItems(m.page), list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.compareList.Title = fmt.Sprintf("Compare correction #%d with", m.page.CorrectionID)
	m.view = CompareView
}

func (m *Model) openHistory() {
	if m.page.HistoryErr != nil {
		m.status = styles.err.Render(fmt.Sprintf("History unavailable: %v", m.page.HistoryErr))
		return
	}
	c := m.page.Correction
	m.historyList = list.New(historyItems(m.page.History), list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.historyList.Title = fmt.Sprintf("%s #%d corrections", c.EntityType.Label(), c.EntityID)
	m.view = HistoryView
}

// confirm asks before moderating; only pending corrections can be handled.
func (m *Model) confirm(method models.HandleMethod) {
	if m.page.Correction.Status != models.StatusPending {
		m.status = styles.warn.Render(fmt.Sprintf("Correction #%d is already %s", m.page.CorrectionID, m.page.Correction.Status))
		return
	}
	m.method = method
	m.view = ConfirmView
}

func (m *Model) selectPage(params resolve.Params) tea.Cmd {
	m.loading = true
	m.status = ""
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		page, err := m.session.Select(m.ctx, params)
		return pageLoadedMsg(params, page, err)
	})
}

func (m *Model) moderate(id int, method models.HandleMethod) tea.Cmd {
	return func() tea.Msg {
		return moderatedMsg(id, method, m.engine.Moderate(m.ctx, id, method))
	}
}

func (m *Model) renderDetail() string {
	var header string
	switch {
	case m.loading:
		header = fmt.Sprintf("%s Loading correction #%d...", m.spinner.View(), m.session.Selection().CorrectionID)
	case m.err != nil:
		header = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{m.keys.compare, m.keys.history, m.keys.approve, m.keys.reject, m.keys.reload, m.keys.quit}
	if m.page == nil {
		return fmt.Sprintf("%s\n\n%s", header, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, m.detail.View(), m.status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("%s correction #%d?", m.method, m.page.CorrectionID))
	info := fmt.Sprintf("\n%s\nStatus: %s\n", formatter.Title(m.page.Correction), statusStyle(m.page.Correction.Status))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func pastTense(method models.HandleMethod) string {
	return strings.TrimSuffix(string(method), "e") + "ed"
}
