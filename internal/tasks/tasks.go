// package tasks implements the library sync run.
//
// The core abstraction is SyncEngine, which walks the library listing and localizes each track once.
// Runs emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amjp/internal/ledger"
	"github.com/desertthunder/amjp/internal/library"
	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
	"golang.org/x/time/rate"
)

// Ledger is the processed-ID store consulted and extended by a run.
type Ledger interface {
	Load() ([]string, error)
	Record(id string) (bool, error)
	Lock() (func() error, error)
}

// Library drives the media application.
type Library interface {
	EnsureRunning(ctx context.Context) error
	ListTracks(ctx context.Context, scope models.Scope) (string, error)
	ApplyLocalizedMetadata(ctx context.Context, persistentID string, meta models.LocalizedMetadata) (library.UpdateResult, error)
}

// Lookup finds localized metadata for a track. A nil result means no match.
type Lookup interface {
	Lookup(ctx context.Context, title, artist string) *models.LocalizedMetadata
}

// Recorder receives the audit trail of a run. Its errors are logged and never stop the run.
type Recorder interface {
	StartRun(run *models.SyncRun) error
	RecordUpdate(update *models.TrackUpdate) error
	FinishRun(run *models.SyncRun) error
}

// Limiter paces catalog lookups.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RunOpts selects what a run covers.
type RunOpts struct {
	Scope  models.Scope
	DryRun bool // look up only; never apply or record
	Max    int  // stop after this many lookups; zero means no limit
}

// TrackResult is the outcome of one listing entry.
type TrackResult struct {
	Track     models.TrackRef
	Outcome   models.Outcome
	Localized *models.LocalizedMetadata
	Response  string
	Error     error
}

// RunResult contains all data from a sync run.
type RunResult struct {
	Run       *models.SyncRun
	Tracks    []TrackResult
	Malformed []library.Malformed
	Stopped   bool // Max was reached before the listing was exhausted
	Planned   int  // dry-run matches; SyncRun has no column for them
}

// Processed is the number of tracks whose metadata was written or found already in the library.
func (r *RunResult) Processed() int {
	return r.Run.Applied
}

// SkippedTotal counts ledger hits and repeats within the run.
func (r *RunResult) SkippedTotal() int {
	return r.Run.Skipped + r.Run.Duplicates
}

// EngineOpts contains the collaborators of a [SyncEngine]. History and Limiter are optional.
type EngineOpts struct {
	Ledger  Ledger
	Library Library
	Catalog Lookup
	History Recorder
	Limiter Limiter
	Logger  *log.Logger
}

// SyncEngine implements the sequential enumerate, dedupe, lookup, apply and record pipeline.
type SyncEngine struct {
	ledger  Ledger
	library Library
	catalog Lookup
	history Recorder
	limiter Limiter
	logger  *log.Logger
}

// NewSyncEngine creates a new SyncEngine. The limiter defaults to one lookup per second.
func NewSyncEngine(opts EngineOpts) (*SyncEngine, error) {
	if opts.Ledger == nil {
		return nil, fmt.Errorf("%w: ledger not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Library == nil {
		return nil, fmt.Errorf("%w: library bridge not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &SyncEngine{
		ledger:  opts.Ledger,
		library: opts.Library,
		catalog: opts.Catalog,
		history: opts.History,
		limiter: opts.Limiter,
		logger:  opts.Logger,
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs one sync pass over opts.Scope.
//
// Setup failures (held lock, unreadable ledger, unreachable application, failed listing) are returned before any
// lookup. Per-track failures are recorded in the result and never returned. A cancelled context stops the loop
// between tracks and returns the partial result with the context error.
func (e *SyncEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts) (*RunResult, error) {
	if !opts.Scope.All && opts.Scope.Playlist == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}
	if opts.Max < 0 {
		return nil, fmt.Errorf("%w: max must not be negative", shared.ErrInvalidArgument)
	}

	unlock, err := e.ledger.Lock()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			e.logger.Warn("failed to release ledger lock", "error", err)
		}
	}()

	result := &RunResult{Run: models.NewSyncRun(opts.Scope, opts.DryRun)}
	e.startRun(result.Run)

	err = e.run(ctx, progress, opts, result)
	if err != nil {
		result.Run.ErrorMessage = err.Error()
	}
	e.finishRun(result.Run)

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	e.logger.Infof("Sync complete. Total processed: %d. Total skipped: %d", result.Processed(), result.SkippedTotal())
	e.sendProgress(progress, completeUpdate(result))
	return result, err
}

func (e *SyncEngine) run(ctx context.Context, progress chan<- ProgressUpdate, opts RunOpts, result *RunResult) error {
	e.sendProgress(progress, loadLedgerUpdate())
	ids, err := e.ledger.Load()
	if err != nil {
		return err
	}
	processed := ledger.NewSet(ids)
	e.logger.Infof("Loaded %d previously processed songs.", len(ids))

	e.sendProgress(progress, launchAppUpdate())
	if err := e.library.EnsureRunning(ctx); err != nil {
		return err
	}

	e.sendProgress(progress, listTracksUpdate(opts.Scope))
	raw, err := e.library.ListTracks(ctx, opts.Scope)
	if err != nil {
		return err
	}

	result.Run.TotalEntries = library.CountEntries(raw)
	e.logger.Infof("Found %d total entries across %s.", result.Run.TotalEntries, opts.Scope)

	tracks, malformed := library.ParseListing(raw)
	result.Malformed = malformed
	for _, m := range malformed {
		e.logger.Warn("skipping malformed track line", "line", m.Line, "text", m.Text)
	}

	seen := ledger.NewSet(nil)
	lookups := 0
	total := len(tracks)

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if processed.Has(track.PersistentID) {
			e.addResult(result, TrackResult{Track: track, Outcome: models.OutcomeSkipped})
			continue
		}
		if seen.Has(track.PersistentID) {
			e.logger.Debug("already handled this run", "id", track.PersistentID, "name", track.Name)
			e.addResult(result, TrackResult{Track: track, Outcome: models.OutcomeDuplicate})
			continue
		}

		if opts.Max > 0 && lookups >= opts.Max {
			result.Stopped = true
			e.logger.Infof("Reached limit of %d tracks.", opts.Max)
			break
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		seen.Add(track.PersistentID)
		lookups++

		e.sendProgress(progress, processTrackUpdate(i+1, total, track))
		tr, err := e.processTrack(ctx, track, opts.DryRun)
		if err != nil {
			return err
		}

		e.addResult(result, tr)
		e.record(result.Run, tr)
		e.sendProgress(progress, trackResultUpdate(i+1, total, tr))
	}

	return nil
}

// processTrack looks up one track and applies the match. The returned error is reserved for ledger write failures,
// which leave the run unable to tell what it has done.
func (e *SyncEngine) processTrack(ctx context.Context, track models.TrackRef, dryRun bool) (TrackResult, error) {
	e.logger.Infof("Processing: %s by %s...", track.Name, track.Artist)

	tr := TrackResult{Track: track}

	meta := e.catalog.Lookup(ctx, track.Name, track.Artist)
	if meta == nil {
		e.logger.Info("  -> No localized metadata found.")
		tr.Outcome = models.OutcomeNoMatch
		return tr, nil
	}
	tr.Localized = meta

	if dryRun {
		e.logger.Infof("  -> Would update: %s by %s", meta.Title, meta.Artist)
		tr.Outcome = models.OutcomePlanned
		return tr, nil
	}

	res, err := e.library.ApplyLocalizedMetadata(ctx, track.PersistentID, *meta)
	tr.Response = res.Response
	if err != nil || !res.Status.Handled() {
		tr.Outcome = models.OutcomeFailed
		tr.Error = err
		if err != nil {
			e.logger.Warnf("  -> %v", err)
		} else {
			e.logger.Warnf("  -> %s", res.Response)
		}
		return tr, nil
	}

	if _, err := e.ledger.Record(track.PersistentID); err != nil {
		return tr, fmt.Errorf("failed to record %s: %w", track.PersistentID, err)
	}

	tr.Outcome = models.OutcomeApplied
	e.logger.Infof("  -> Updated: %s by %s", meta.Title, meta.Artist)
	return tr, nil
}

func (e *SyncEngine) addResult(result *RunResult, tr TrackResult) {
	result.Tracks = append(result.Tracks, tr)

	switch tr.Outcome {
	case models.OutcomeSkipped:
		result.Run.Skipped++
	case models.OutcomeDuplicate:
		result.Run.Duplicates++
	case models.OutcomeNoMatch:
		result.Run.NoMatch++
	case models.OutcomeApplied:
		result.Run.Applied++
	case models.OutcomeFailed:
		result.Run.Failed++
	case models.OutcomePlanned:
		result.Planned++
	}
}

func (e *SyncEngine) startRun(run *models.SyncRun) {
	if e.history == nil {
		return
	}
	if err := e.history.StartRun(run); err != nil {
		e.logger.Warn("failed to record sync run", "error", err)
	}
}

func (e *SyncEngine) record(run *models.SyncRun, tr TrackResult) {
	if e.history == nil || run.ID == "" {
		return
	}

	update := &models.TrackUpdate{
		RunID:     run.ID,
		Track:     tr.Track,
		Localized: tr.Localized,
		Outcome:   tr.Outcome,
		Response:  tr.Response,
		CreatedAt: time.Now(),
	}
	if err := e.history.RecordUpdate(update); err != nil {
		e.logger.Warn("failed to record track update", "id", tr.Track.PersistentID, "error", err)
	}
}

func (e *SyncEngine) finishRun(run *models.SyncRun) {
	now := time.Now()
	run.FinishedAt = &now

	if e.history == nil || run.ID == "" {
		return
	}
	if err := e.history.FinishRun(run); err != nil {
		e.logger.Warn("failed to finish sync run record", "run", run.ID, "error", err)
	}
}
