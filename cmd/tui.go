package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/amjp/internal/shared"
	"github.com/desertthunder/amjp/internal/tasks"
	"github.com/desertthunder/amjp/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/amjp-tui.log"

// SyncUI launches the interactive terminal UI for a sync pass.
func (r *Runner) SyncUI(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	if config.Log.File == "" {
		fileLogger, err := shared.NewFileLogger(tuiLogPath)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		shared.SetLogLevel(fileLogger, r.logger.GetLevel())
		r.SetLogger(fileLogger)
	}

	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("history disabled", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	engine, err := r.newEngine(db)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, tasks.RunOpts{
		Scope:  r.scope(cmd),
		DryRun: cmd.Bool("dry-run"),
	})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if _, err := model.Result(); err != nil {
		r.logger.Error("sync finished with error", "error", err)
	}
	return nil
}
