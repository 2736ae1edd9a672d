package main

import (
	"context"

	"github.com/desertthunder/amjp/internal/library"
	"github.com/urfave/cli/v3"
)

// LibraryTracks prints the parsed listing for the selected scope without looking anything up.
func (r *Runner) LibraryTracks(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadConfig(cmd); err != nil {
		return err
	}

	scope := r.scope(cmd)
	bridge := r.bridge()
	if err := bridge.EnsureRunning(ctx); err != nil {
		return err
	}

	raw, err := bridge.ListTracks(ctx, scope)
	if err != nil {
		return err
	}

	tracks, malformed := library.ParseListing(raw)
	for _, m := range malformed {
		r.logger.Warn("skipping malformed listing line", "line", m.Line, "text", m.Text)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	r.writePlainHeader("Tracks in " + scope.String())
	r.writePlain("%d entries\n\n", len(tracks))
	for i, t := range tracks {
		r.writePlain("%4d. %s  %s - %s\n", i+1, t.PersistentID, t.Artist, t.Name)
	}
	return nil
}
