package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/amjp/internal/formatter"
	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun performs one pass over the configured playlists. Progress goes to the log; the summary goes to output.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadConfig(cmd); err != nil {
		return err
	}

	var reportFormat formatter.Format
	reportPath := cmd.String("report")
	if reportPath != "" {
		f, err := formatter.ParseFormat(cmd.String("format"))
		if err != nil {
			return err
		}
		reportFormat = f
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

	opts := tasks.RunOpts{
		Scope:  r.scope(cmd),
		DryRun: cmd.Bool("dry-run"),
		Max:    int(cmd.Int("max")),
	}
	r.logger.Debug("starting sync", "scope", opts.Scope.String(), "dry_run", opts.DryRun, "max", opts.Max)

	result, runErr := engine.Run(ctx, nil, opts)
	if result == nil {
		return runErr
	}

	r.printSummary(result)

	if reportPath != "" {
		written, err := formatter.WriteReport(reportFile(reportPath, reportFormat, result.Run), reportFormat, result.Run, trackUpdates(result))
		if err != nil {
			return err
		}
		r.writePlain("Report written to: %s\n", written)
	}

	if runErr != nil && (errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)) {
		r.logger.Warn("sync interrupted", "processed", result.Processed())
		return nil
	}
	return runErr
}

func (r *Runner) printSummary(result *tasks.RunResult) {
	run := result.Run

	r.writePlain("\n")
	if run.DryRun {
		r.writePlainHeader("Dry Run Complete")
	} else {
		r.writePlainHeader("Sync Complete")
	}
	r.writePlain("Scope: %s\n", run.Scope)
	r.writePlain("%s\n", formatter.Summary(run))
	r.writePlain("Total processed: %d. Total skipped: %d\n", result.Processed(), result.SkippedTotal())

	if result.Stopped {
		r.writePlain("Stopped early: lookup limit reached\n")
	}
	if len(result.Malformed) > 0 {
		r.writePlain("Ignored %d malformed listing lines\n", len(result.Malformed))
	}

	if run.DryRun {
		if result.Planned > 0 {
			r.writePlainln("Would update %d tracks:", result.Planned)
			planned := filterTracks(result.Tracks, models.OutcomePlanned)
			for i, tr := range planned {
				r.writePlain("  %d. %s - %s -> %s - %s\n", i+1, tr.Track.Artist, tr.Track.Name, tr.Localized.Artist, tr.Localized.Title)
			}
		}
	}

	failed := filterTracks(result.Tracks, models.OutcomeFailed)
	if len(failed) > 0 {
		r.writePlainln("Failed to update %d tracks:", len(failed))
		for _, tr := range failed {
			r.writePlain("  - %s - %s (%s)\n", tr.Track.Artist, tr.Track.Name, tr.Track.PersistentID)
		}
	}
}

func filterTracks(results []tasks.TrackResult, outcome models.Outcome) []tasks.TrackResult {
	var out []tasks.TrackResult
	for _, tr := range results {
		if tr.Outcome == outcome {
			out = append(out, tr)
		}
	}
	return out
}

// trackUpdates converts in-memory results to the report shape.
func trackUpdates(result *tasks.RunResult) []*models.TrackUpdate {
	updates := make([]*models.TrackUpdate, 0, len(result.Tracks))
	for _, tr := range result.Tracks {
		updates = append(updates, &models.TrackUpdate{
			RunID:     result.Run.ID,
			Track:     tr.Track,
			Localized: tr.Localized,
			Outcome:   tr.Outcome,
			Response:  tr.Response,
		})
	}
	return updates
}

// reportFile resolves --report. An existing directory, or a path ending in a separator, receives a generated name.
func reportFile(path string, f formatter.Format, run *models.SyncRun) string {
	info, err := os.Stat(path)
	isDir := (err == nil && info.IsDir()) || os.IsPathSeparator(path[len(path)-1])
	if !isDir {
		return path
	}

	id := run.StartedAt.Unix()
	if run.Sequence > 0 {
		id = int64(run.Sequence)
	}
	return filepath.Join(path, fmt.Sprintf("amjp_run_%d.%s", id, f.Extension()))
}
