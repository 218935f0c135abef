package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gamedex/internal/models"
	tu "gamedex/internal/testing"
)

func typeString(t *testing.T, m *Model, s string) {
	t.Helper()
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// drain runs a command and feeds its message back into the model, the way
// the bubbletea runtime would.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func TestModelSearch(t *testing.T) {
	t.Run("DispatchesOnlyFinalQuery", func(t *testing.T) {
		api := &tu.MockSearchAPI{}
		m := NewModel(context.Background(), api, time.Millisecond)

		typeString(t, m, "ha")
		firstGen := m.gen - 1

		// A timer armed by an earlier keystroke fires after more edits landed.
		m.Update(debounceMsg{gen: firstGen})
		if api.Calls.Load() != 0 {
			t.Fatal("stale debounce should not dispatch a query")
		}

		_, cmd := m.Update(debounceMsg{gen: m.gen})
		if cmd == nil {
			t.Fatal("current debounce should dispatch a query")
		}
		drain(m, cmd)

		if api.Calls.Load() != 1 {
			t.Errorf("expected exactly 1 dispatched query, got %d", api.Calls.Load())
		}
	})

	t.Run("EmptyQueryClearsWithoutCall", func(t *testing.T) {
		api := &tu.MockSearchAPI{}
		m := NewModel(context.Background(), api, time.Millisecond)
		m.results = []models.SearchResult{{Name: "Hades"}}
		m.errMsg = "old error"

		typeString(t, m, " ")
		_, cmd := m.Update(debounceMsg{gen: m.gen})

		if cmd != nil {
			t.Error("whitespace-only query should not dispatch")
		}
		if api.Calls.Load() != 0 {
			t.Error("whitespace-only query should not hit the API")
		}
		if m.results != nil {
			t.Error("results should be cleared")
		}
		if m.errMsg != "" {
			t.Error("error message should be cleared")
		}
	})

	t.Run("AppliesResults", func(t *testing.T) {
		api := &tu.MockSearchAPI{Responses: []tu.MockSearchResponse{
			{Results: []models.SearchResult{{IGDBID: 1942, Name: "Hades"}}},
		}}
		m := NewModel(context.Background(), api, time.Millisecond)

		typeString(t, m, "hades")
		_, cmd := m.Update(debounceMsg{gen: m.gen})
		drain(m, cmd)

		if m.loading {
			t.Error("loading should be cleared after a result")
		}
		if len(m.results) != 1 || m.results[0].Name != "Hades" {
			t.Errorf("expected Hades result, got %v", m.results)
		}
	})

	t.Run("StaleResultDropped", func(t *testing.T) {
		api := &tu.MockSearchAPI{}
		m := NewModel(context.Background(), api, time.Millisecond)
		m.results = []models.SearchResult{{Name: "Current"}}
		m.gen = 5

		m.Update(searchResultMsg{gen: 3, results: []models.SearchResult{{Name: "Old"}}})

		if len(m.results) != 1 || m.results[0].Name != "Current" {
			t.Errorf("stale results should be dropped, got %v", m.results)
		}
	})

	t.Run("StaleErrorDropped", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockSearchAPI{}, time.Millisecond)
		m.gen = 5

		m.Update(searchResultMsg{gen: 3, err: errors.New("search failed with status 500")})

		if m.errMsg != "" {
			t.Errorf("stale error should not surface, got %q", m.errMsg)
		}
	})

	t.Run("ErrorClearsResults", func(t *testing.T) {
		api := &tu.MockSearchAPI{Responses: []tu.MockSearchResponse{
			{Err: errors.New("search failed with status 500")},
		}}
		m := NewModel(context.Background(), api, time.Millisecond)
		m.results = []models.SearchResult{{Name: "Stale"}}

		typeString(t, m, "halo")
		_, cmd := m.Update(debounceMsg{gen: m.gen})
		drain(m, cmd)

		if m.errMsg != "search failed with status 500" {
			t.Errorf("expected status error message, got %q", m.errMsg)
		}
		if m.results != nil {
			t.Error("error should clear previous results")
		}
	})

	t.Run("CancellationIsSilent", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockSearchAPI{}, time.Millisecond)
		m.gen = 1
		m.loading = true

		m.Update(searchResultMsg{gen: 1, err: context.Canceled})

		if m.errMsg != "" {
			t.Errorf("cancellation should not surface as an error, got %q", m.errMsg)
		}
		if m.loading {
			t.Error("loading should be cleared")
		}
	})

	t.Run("NewQueryCancelsInFlight", func(t *testing.T) {
		api := &tu.MockSearchAPI{Block: make(chan struct{})}
		m := NewModel(context.Background(), api, time.Millisecond)

		typeString(t, m, "hal")
		_, cmd := m.Update(debounceMsg{gen: m.gen})
		if cmd == nil {
			t.Fatal("expected a dispatch command")
		}

		done := make(chan tea.Msg, 1)
		go func() { done <- cmd() }()

		// Another edit settles while the first request is in flight.
		typeString(t, m, "o")
		_, cmd2 := m.Update(debounceMsg{gen: m.gen})

		select {
		case msg := <-done:
			result, ok := msg.(searchResultMsg)
			if !ok {
				t.Fatalf("expected searchResultMsg, got %T", msg)
			}
			if !errors.Is(result.err, context.Canceled) {
				t.Errorf("expected canceled first request, got %v", result.err)
			}
			m.Update(result)
		case <-time.After(time.Second):
			t.Fatal("first request was not cancelled")
		}

		close(api.Block)
		drain(m, cmd2)

		if m.errMsg != "" {
			t.Errorf("superseding query should leave no error, got %q", m.errMsg)
		}
	})
}

func TestModelSettings(t *testing.T) {
	t.Run("TabSwitchesViews", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockSearchAPI{}, time.Millisecond)

		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.view != SettingsView {
			t.Error("tab should open settings")
		}
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.view != SearchView {
			t.Error("tab should return to search")
		}
	})

	t.Run("ToggleFlipsSelectedService", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockSearchAPI{}, time.Millisecond)
		m.Update(tea.KeyMsg{Type: tea.KeyTab})

		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})

		sel := m.Selection()
		if sel.Enabled(models.ServiceGamePass) {
			t.Error("first service should be toggled off")
		}
		if !sel.Enabled(models.ServicePSPlus) || !sel.Enabled(models.ServiceUbisoftPlus) {
			t.Error("other services should stay enabled")
		}
	})

	t.Run("CursorStaysInBounds", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockSearchAPI{}, time.Millisecond)
		m.Update(tea.KeyMsg{Type: tea.KeyTab})

		for i := 0; i < 10; i++ {
			m.Update(tea.KeyMsg{Type: tea.KeyDown})
		}
		if m.settingsIdx != len(models.AllServices())-1 {
			t.Errorf("cursor overran the list: %d", m.settingsIdx)
		}

		for i := 0; i < 10; i++ {
			m.Update(tea.KeyMsg{Type: tea.KeyUp})
		}
		if m.settingsIdx != 0 {
			t.Errorf("cursor underran the list: %d", m.settingsIdx)
		}
	})
}
