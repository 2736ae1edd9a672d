package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/amjp/internal/ledger"
	"github.com/desertthunder/amjp/internal/repositories"
	"github.com/desertthunder/amjp/internal/shared"
	"github.com/urfave/cli/v3"
)

// LedgerShow lists every processed persistent ID.
func (r *Runner) LedgerShow(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadConfig(cmd); err != nil {
		return err
	}

	l := r.ledger()
	ids, err := l.Load()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ids, true)
	}

	r.writePlainHeader(fmt.Sprintf("Ledger: %s", l.Path()))
	r.writePlain("%d processed tracks\n", len(ids))
	for _, id := range ids {
		r.writePlain("  %s\n", id)
	}
	return nil
}

// LedgerCheck reports whether one persistent ID is in the ledger, and its recorded history when a database exists.
func (r *Runner) LedgerCheck(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: persistent ID is required", shared.ErrMissingArgument)
	}
	if _, err := r.loadConfig(cmd); err != nil {
		return err
	}

	ids, err := r.ledger().Load()
	if err != nil {
		return err
	}

	if ledger.Contains(ids, id) {
		r.writePlain("%s: processed\n", id)
	} else {
		r.writePlain("%s: not processed\n", id)
	}

	return r.printTrackHistory(id)
}

// printTrackHistory is best effort; a missing database file is not created here.
func (r *Runner) printTrackHistory(id string) error {
	path := r.config.Database.Path
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("history unavailable", "error", err)
		return nil
	}
	defer db.Close()

	updates, err := repositories.NewUpdateRepository(db).ListByPersistentID(id)
	if err != nil {
		r.logger.Warn("history unavailable", "error", err)
		return nil
	}
	if len(updates) == 0 {
		return nil
	}

	r.writePlainln("History:")
	for _, u := range updates {
		line := fmt.Sprintf("  %s  %-9s %s - %s", u.CreatedAt.Format("2006-01-02 15:04:05"), u.Outcome, u.Track.Artist, u.Track.Name)
		if u.Localized != nil {
			line += fmt.Sprintf(" -> %s - %s", u.Localized.Artist, u.Localized.Title)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}
