package library

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
)

const (
	defaultApp          = "Music"
	defaultLaunchWait   = 10 * time.Second
	defaultPollInterval = time.Second
)

// UpdateStatus classifies the value returned by the update script.
type UpdateStatus int

const (
	StatusFailed UpdateStatus = iota
	StatusSuccess
	StatusAlreadyInLibrary
)

func (s UpdateStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAlreadyInLibrary:
		return "already_in_library"
	default:
		return "failed"
	}
}

// Handled reports whether the track counts as processed and belongs in the ledger.
func (s UpdateStatus) Handled() bool {
	return s == StatusSuccess || s == StatusAlreadyInLibrary
}

// ClassifyOutcome maps a free-text script response to an [UpdateStatus] by substring.
func ClassifyOutcome(response string) UpdateStatus {
	switch {
	case strings.Contains(response, "Success"):
		return StatusSuccess
	case strings.Contains(response, "Already"):
		return StatusAlreadyInLibrary
	default:
		return StatusFailed
	}
}

// UpdateResult is the classified outcome of [Bridge.ApplyLocalizedMetadata] with the raw response.
type UpdateResult struct {
	Status   UpdateStatus
	Response string
}

// BridgeOpts configures a [Bridge].
type BridgeOpts struct {
	Scripter     Scripter
	App          string
	LaunchWait   time.Duration // upper bound on the readiness wait after launch
	PollInterval time.Duration
	Logger       *log.Logger
}

// Bridge drives the media application through a [Scripter].
type Bridge struct {
	scripter     Scripter
	app          string
	launchWait   time.Duration
	pollInterval time.Duration
	logger       *log.Logger
	wait         func(ctx context.Context, d time.Duration) error
}

// NewBridge creates a Bridge, filling unset options with defaults.
func NewBridge(opts BridgeOpts) *Bridge {
	if opts.Scripter == nil {
		opts.Scripter = NewOSAScript()
	}
	if opts.App == "" {
		opts.App = defaultApp
	}
	if opts.LaunchWait < 0 {
		opts.LaunchWait = defaultLaunchWait
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Bridge{
		scripter:     opts.Scripter,
		app:          opts.App,
		launchWait:   opts.LaunchWait,
		pollInterval: opts.PollInterval,
		logger:       opts.Logger,
		wait:         sleepContext,
	}
}

// App returns the scripting name of the driven application.
func (b *Bridge) App() string {
	return b.app
}

// EnsureRunning launches the application and polls until its library answers or launchWait elapses.
//
// An unanswered probe is logged and tolerated. The run then proceeds as if the fixed wait had passed.
func (b *Bridge) EnsureRunning(ctx context.Context) error {
	b.logger.Infof("Ensuring %s is open...", b.app)

	if _, err := b.scripter.Run(ctx, launchScript(b.app)); err != nil {
		return fmt.Errorf("%w: launch %s: %v", shared.ErrAppUnavailable, b.app, err)
	}

	deadline := time.Now().Add(b.launchWait)
	for attempt := 1; ; attempt++ {
		if b.ready(ctx) {
			b.logger.Debug("library ready", "app", b.app, "attempts", attempt)
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			b.logger.Warn("library did not report ready, continuing", "app", b.app, "waited", b.launchWait)
			return nil
		}

		if err := b.wait(ctx, min(b.pollInterval, remaining)); err != nil {
			return err
		}
	}
}

func (b *Bridge) ready(ctx context.Context) bool {
	out, err := b.scripter.Run(ctx, readyScript(b.app))
	if err != nil {
		b.logger.Debug("readiness probe failed", "error", err)
		return false
	}
	n, err := strconv.Atoi(out)
	return err == nil && n > 0
}

// ListTracks returns the raw "persistent_id|name|artist" listing for scope, one line per playlist entry.
//
// A track that sits in N playlists appears N times.
func (b *Bridge) ListTracks(ctx context.Context, scope models.Scope) (string, error) {
	if !scope.All && strings.TrimSpace(scope.Playlist) == "" {
		return "", fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	out, err := b.scripter.Run(ctx, listScript(b.app, scope))
	if err != nil {
		return "", fmt.Errorf("failed to list tracks for %s: %w", scope, err)
	}
	return out, nil
}

// ApplyLocalizedMetadata copies the track into the main library and overwrites its name, album and artist fields.
//
// A script that fails to run yields [StatusFailed] along with the error.
func (b *Bridge) ApplyLocalizedMetadata(ctx context.Context, persistentID string, meta models.LocalizedMetadata) (UpdateResult, error) {
	if persistentID == "" {
		return UpdateResult{Status: StatusFailed}, fmt.Errorf("%w: empty persistent ID", shared.ErrInvalidInput)
	}

	out, err := b.scripter.Run(ctx, updateScript(b.app, persistentID, meta))
	if err != nil {
		return UpdateResult{Status: StatusFailed, Response: out}, err
	}
	return UpdateResult{Status: ClassifyOutcome(out), Response: out}, nil
}

// Malformed is a listing line that did not split into three fields.
type Malformed struct {
	Line int
	Text string
}

// ParseListing splits a raw listing into track refs in order.
//
// The first field is the persistent ID and the last is the artist. Anything between is the name, so titles
// containing "|" survive. Blank lines are ignored and short lines are returned as [Malformed].
func ParseListing(raw string) ([]models.TrackRef, []Malformed) {
	var tracks []models.TrackRef
	var bad []Malformed

	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		first := strings.Index(line, "|")
		last := strings.LastIndex(line, "|")
		if first < 0 || first == last {
			bad = append(bad, Malformed{Line: i + 1, Text: line})
			continue
		}

		id := strings.TrimSpace(line[:first])
		if id == "" {
			bad = append(bad, Malformed{Line: i + 1, Text: line})
			continue
		}

		tracks = append(tracks, models.TrackRef{
			PersistentID: id,
			Name:         line[first+1 : last],
			Artist:       line[last+1:],
		})
	}

	return tracks, bad
}

// CountEntries returns the number of lines in a raw listing, blank lines included.
func CountEntries(raw string) int {
	if raw == "" {
		return 0
	}
	return len(strings.Split(raw, "\n"))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
