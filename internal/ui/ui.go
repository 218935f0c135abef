package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gamedex/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	SettingsView
)

// DefaultDebounce is the edit-settle window before a query is dispatched.
const DefaultDebounce = 350 * time.Millisecond

// SearchAPI is the slice of the availability client the TUI needs.
type SearchAPI interface {
	Search(ctx context.Context, q string) (*models.SearchResponse, error)
}

// debounceMsg fires when an edit has settled; stale generations are ignored.
type debounceMsg struct {
	gen int
}

// searchResultMsg carries the outcome of one dispatched query, tagged with
// the generation that issued it.
type searchResultMsg struct {
	gen     int
	results []models.SearchResult
	err     error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	api      SearchAPI
	debounce time.Duration
	keys     keyMap
	help     help.Model
	input    textinput.Model
	width    int
	height   int

	// search session state; gen tags the latest effective query and cancel
	// aborts the in-flight request, if any
	gen     int
	cancel  context.CancelFunc
	loading bool
	errMsg  string
	results []models.SearchResult

	selection   models.SubscriptionSelection
	settingsIdx int
}

// NewModel creates a TUI model over the given search API.
// A zero debounce falls back to [DefaultDebounce].
func NewModel(ctx context.Context, api SearchAPI, debounce time.Duration) *Model {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	input := textinput.New()
	input.Placeholder = "Search for a game..."
	input.Focus()
	input.CharLimit = 120

	return &Model{
		ctx:       ctx,
		view:      SearchView,
		api:       api,
		debounce:  debounce,
		keys:      newKeyMap(),
		help:      help.New(),
		input:     input,
		selection: models.DefaultSelection(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.abort()
			return m, tea.Quit
		case "tab":
			if m.view == SearchView {
				m.view = SettingsView
			} else {
				m.view = SearchView
			}
			return m, nil
		case "esc":
			if m.view == SettingsView {
				m.view = SearchView
				return m, nil
			}
			m.abort()
			return m, tea.Quit
		}

		if m.view == SettingsView {
			return m.handleSettingsKeys(msg)
		}
		return m.handleSearchKeys(msg)

	case debounceMsg:
		return m.handleDebounce(msg)

	case searchResultMsg:
		return m.handleResult(msg)
	}

	if m.view == SearchView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleSearchKeys forwards the key to the text input and restarts the
// debounce window whenever the value actually changed.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() == before {
		return m, cmd
	}

	m.gen++
	gen := m.gen
	tick := tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{gen: gen}
	})
	return m, tea.Batch(cmd, tick)
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	services := models.AllServices()

	switch msg.String() {
	case "up", "k":
		if m.settingsIdx > 0 {
			m.settingsIdx--
		}
	case "down", "j":
		if m.settingsIdx < len(services)-1 {
			m.settingsIdx++
		}
	case " ", "enter":
		m.selection = m.selection.Toggle(services[m.settingsIdx])
	}

	return m, nil
}

// handleDebounce dispatches the effective query once the edit has settled.
func (m *Model) handleDebounce(msg debounceMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		// Superseded by a later edit.
		return m, nil
	}

	effective := strings.TrimSpace(m.input.Value())
	if effective == "" {
		m.abort()
		m.loading = false
		m.errMsg = ""
		m.results = nil
		return m, nil
	}

	m.abort()
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.loading = true
	m.errMsg = ""

	gen := msg.gen
	return m, func() tea.Msg {
		resp, err := m.api.Search(ctx, effective)
		if err != nil {
			return searchResultMsg{gen: gen, err: err}
		}
		return searchResultMsg{gen: gen, results: resp.Results}
	}
}

// handleResult applies a query outcome unless it has been superseded.
// Stale messages — success or error — never touch visible state.
func (m *Model) handleResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}

	m.loading = false

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			// Cancellation is not a user-facing error.
			return m, nil
		}
		m.errMsg = msg.err.Error()
		if m.errMsg == "" {
			m.errMsg = "search failed"
		}
		m.results = nil
		return m, nil
	}

	m.results = msg.results
	return m, nil
}

// abort cancels the in-flight request, if any.
func (m *Model) abort() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SettingsView:
		return m.renderSettings()
	default:
		return m.renderSearch()
	}
}

func (m *Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("gamedex"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(styles.help.Render("Searching..."))
	case m.errMsg != "":
		b.WriteString(styles.err.Render("Error: " + m.errMsg))
	case len(m.results) == 0 && strings.TrimSpace(m.input.Value()) != "":
		b.WriteString(styles.help.Render("No games found"))
	default:
		for _, result := range m.results {
			b.WriteString(m.renderCard(result))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

// renderCard renders one search result with a badge row per service.
func (m *Model) renderCard(result models.SearchResult) string {
	var b strings.Builder

	name := result.Name
	if result.FirstReleaseYear > 0 {
		name = fmt.Sprintf("%s (%d)", name, result.FirstReleaseYear)
	}
	b.WriteString(styles.warn.Render(name))
	b.WriteString("\n")

	for _, svc := range models.AllServices() {
		var payload *models.ServiceAvailability
		if avail, ok := result.Services[svc]; ok {
			payload = &avail
		}
		badge := Badge(svc, payload, m.selection.Enabled(svc))
		b.WriteString("  ")
		b.WriteString(RenderBadge(badge))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderSettings() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Subscriptions"))
	b.WriteString("\n")

	for i, svc := range models.AllServices() {
		cursor := "  "
		if i == m.settingsIdx {
			cursor = styles.ok.Render("> ")
		}
		mark := "[ ]"
		if m.selection.Enabled(svc) {
			mark = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, mark, svc.DisplayName()))
	}

	b.WriteString("\n")
	b.WriteString(styles.help.Render("space toggle · esc back · ctrl+c quit"))
	return b.String()
}

// Selection exposes the current subscription selection. Used by tests.
func (m *Model) Selection() models.SubscriptionSelection {
	return m.selection
}
