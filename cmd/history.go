package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/amjp/internal/formatter"
	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/repositories"
	"github.com/desertthunder/amjp/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryRuns lists recorded runs, newest first.
func (r *Runner) HistoryRuns(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadConfig(cmd); err != nil {
		return err
	}

	db, err := r.requireDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if runs == nil {
			runs = []*models.SyncRun{}
		}
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Sync Runs (%d)", len(runs)))
	for _, run := range runs {
		mode := ""
		if run.DryRun {
			mode = " [dry run]"
		}
		r.writePlain("#%-4d %s  %s%s\n", run.Sequence, run.StartedAt.Format("2006-01-02 15:04:05"), run.Scope, mode)
		r.writePlain("      %s\n", formatter.Summary(run))
		if run.ErrorMessage != "" {
			r.writePlain("      error: %s\n", run.ErrorMessage)
		}
	}
	return nil
}

// HistoryShow prints one run and its track updates. RUN is a run ID, a sequence number, or #sequence.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimSpace(cmd.StringArg("run"))
	if ref == "" {
		return fmt.Errorf("%w: run ID or sequence is required", shared.ErrMissingArgument)
	}

	var reportFormat formatter.Format
	if f := cmd.String("format"); f != "" {
		parsed, err := formatter.ParseFormat(f)
		if err != nil {
			return err
		}
		reportFormat = parsed
	}

	if _, err := r.loadConfig(cmd); err != nil {
		return err
	}

	db, err := r.requireDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := findRun(db, ref)
	if err != nil {
		return err
	}
	updates, err := repositories.NewUpdateRepository(db).ListByRun(run.ID)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		reportFormat = formatter.FormatJSON
	case reportFormat == "":
		reportFormat = formatter.FormatText
	}

	data, err := formatter.Export(reportFormat, run, updates)
	if err != nil {
		return err
	}
	r.writePlain("%s", data)
	return nil
}

func findRun(db *sql.DB, ref string) (*models.SyncRun, error) {
	runs := repositories.NewRunRepository(db)
	if seq, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		return runs.GetBySequence(seq)
	}
	return runs.Get(ref)
}
