package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"gamedex/internal/services"
	"gamedex/internal/shared"
	"gamedex/internal/ui"
)

// TUI launches the interactive search interface.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/gamedex-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	api := services.NewAvailabilityClient(config.Search.APIBaseURL, r.httpClient)

	debounce := ui.DefaultDebounce
	if config.Search.DebounceMS > 0 {
		debounce = time.Duration(config.Search.DebounceMS) * time.Millisecond
	}

	model := ui.NewModel(ctx, api, debounce)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
