package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/ui"
)

// TUI opens the interactive correction viewer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	params, err := correctionParams(cmd)
	if err != nil {
		return err
	}
	return r.runTUI(ctx, func() ui.Engine {
		return r.newEngine(r.cache, r.corrections, r.moderator)
	}, params)
}

// runTUI redirects logs to a file while the program owns the terminal.
// The engine is built after the switch so its logger writes to the file too.
func (r *Runner) runTUI(ctx context.Context, build func() ui.Engine, params resolve.Params) error {
	path := r.config.Log.File
	if path == "" {
		path = "./tmp/correx-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(path)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	previous := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(previous)

	model := ui.NewModel(ctx, build(), params)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
