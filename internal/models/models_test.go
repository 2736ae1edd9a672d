package models

import (
	"testing"
	"time"
)

func TestScope(t *testing.T) {
	if got := AllPlaylists().String(); got != "all playlists" {
		t.Errorf("AllPlaylists().String() = %q", got)
	}
	if got := NamedPlaylist("Anime").String(); got != `playlist "Anime"` {
		t.Errorf("NamedPlaylist().String() = %q", got)
	}
}

func TestOutcomeHandled(t *testing.T) {
	for _, o := range []Outcome{OutcomeSkipped, OutcomeDuplicate, OutcomeNoMatch, OutcomeFailed, OutcomePlanned} {
		if o.Handled() {
			t.Errorf("%s should not be handled", o)
		}
	}
	if !OutcomeApplied.Handled() {
		t.Error("applied should be handled")
	}
}

func TestSyncRunValidate(t *testing.T) {
	run := NewSyncRun(AllPlaylists(), false)
	if err := run.Validate(); err != nil {
		t.Fatalf("expected valid run, got %v", err)
	}

	before := run.StartedAt.Add(-time.Minute)
	run.FinishedAt = &before
	if err := run.Validate(); err == nil {
		t.Error("expected error when finished_at precedes started_at")
	}

	if err := (&SyncRun{StartedAt: time.Now()}).Validate(); err == nil {
		t.Error("expected error for empty scope")
	}
}

func TestTrackUpdateValidate(t *testing.T) {
	tests := []struct {
		name    string
		update  TrackUpdate
		wantErr bool
	}{
		{name: "valid", update: TrackUpdate{RunID: "r", Track: TrackRef{PersistentID: "ABC"}, Outcome: OutcomeApplied}},
		{name: "missing run", update: TrackUpdate{Track: TrackRef{PersistentID: "ABC"}, Outcome: OutcomeApplied}, wantErr: true},
		{name: "missing id", update: TrackUpdate{RunID: "r", Outcome: OutcomeApplied}, wantErr: true},
		{name: "missing outcome", update: TrackUpdate{RunID: "r", Track: TrackRef{PersistentID: "ABC"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
