package models

import (
	"fmt"
	"strings"
	"time"
)

// TrackRef identifies one playlist entry in the media library.
//
// PersistentID is assigned by the library and stays stable across runs and playlist membership changes.
type TrackRef struct {
	PersistentID string `json:"persistent_id"`
	Name         string `json:"name"`
	Artist       string `json:"artist"`
}

// LocalizedMetadata is the storefront-specific metadata for a track as returned by the catalog.
type LocalizedMetadata struct {
	Title   string `json:"trackName"`
	Album   string `json:"collectionName"`
	Artist  string `json:"artistName"`
	ViewURL string `json:"trackViewUrl,omitempty"`
}

// Scope selects the playlists a scan covers: every non-special playlist, or one named playlist.
type Scope struct {
	All      bool
	Playlist string
}

// AllPlaylists is the scope covering every user playlist.
func AllPlaylists() Scope { return Scope{All: true} }

// NamedPlaylist is the scope covering a single playlist.
func NamedPlaylist(name string) Scope { return Scope{Playlist: name} }

func (s Scope) String() string {
	if s.All {
		return "all playlists"
	}
	return fmt.Sprintf("playlist %q", s.Playlist)
}

// Outcome is the terminal state of one track within a run.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"   // already in the ledger
	OutcomeDuplicate Outcome = "duplicate" // handled earlier in the same run
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeApplied   Outcome = "applied"
	OutcomeFailed    Outcome = "failed"
	OutcomePlanned   Outcome = "planned" // dry run: match found, nothing written
)

// Handled reports whether the outcome leaves the track in the ledger.
func (o Outcome) Handled() bool {
	return o == OutcomeApplied
}

// SyncRun is the persisted summary of one sync invocation.
type SyncRun struct {
	ID           string     `json:"id"`
	Sequence     int        `json:"sequence"`
	Scope        string     `json:"scope"`
	DryRun       bool       `json:"dry_run"`
	TotalEntries int        `json:"total_entries"`
	Applied      int        `json:"applied"`
	Skipped      int        `json:"skipped"`
	Duplicates   int        `json:"duplicates"`
	NoMatch      int        `json:"no_match"`
	Failed       int        `json:"failed"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// NewSyncRun creates an unsaved run starting now.
func NewSyncRun(scope Scope, dryRun bool) *SyncRun {
	return &SyncRun{Scope: scope.String(), DryRun: dryRun, StartedAt: time.Now()}
}

// Validate checks the fields required before insert.
func (r *SyncRun) Validate() error {
	if strings.TrimSpace(r.Scope) == "" {
		return fmt.Errorf("scope is required")
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("started_at is required")
	}
	if r.FinishedAt != nil && r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("finished_at precedes started_at")
	}
	return nil
}

// TrackUpdate records what happened to one non-skipped track in a run.
type TrackUpdate struct {
	ID        string             `json:"id"`
	RunID     string             `json:"run_id"`
	Track     TrackRef           `json:"track"`
	Localized *LocalizedMetadata `json:"localized,omitempty"`
	Outcome   Outcome            `json:"outcome"`
	Response  string             `json:"response,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Validate checks the fields required before insert.
func (u *TrackUpdate) Validate() error {
	switch {
	case u.RunID == "":
		return fmt.Errorf("run_id is required")
	case u.Track.PersistentID == "":
		return fmt.Errorf("persistent_id is required")
	case u.Outcome == "":
		return fmt.Errorf("outcome is required")
	}
	return nil
}
