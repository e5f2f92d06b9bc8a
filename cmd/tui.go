package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotsearch/internal/shared"
	"github.com/desertthunder/spotsearch/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs would interfere with TUI rendering
	r.SetLogger(shared.NewDiscardLogger())

	opts, err := r.searchOptions(cmd)
	if err != nil {
		return err
	}

	client, err := r.catalog()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, client, opts, strings.Join(cmd.Args().Slice(), " "))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
