package main

import (
	"context"
	"fmt"

	"github.com/backline/backline/internal/repositories"
	"github.com/backline/backline/internal/shared"
	"github.com/backline/backline/internal/tasks"
	"github.com/backline/backline/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// connectionBrowser joins the connection and analytics repositories into the
// read surface the TUI consumes.
type connectionBrowser struct {
	*repositories.ConnectionRepository
	*repositories.AnalyticsRepository
}

// TUI launches the interactive terminal UI for browsing connections and rankings.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/backline-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	connections := repositories.NewConnectionRepository(db)
	analytics := repositories.NewAnalyticsRepository(db)
	engine := tasks.NewSyncEngine(r.platforms, connections, analytics, r.logger)

	browser := connectionBrowser{connections, analytics}
	model := ui.NewModel(ctx, browser, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
