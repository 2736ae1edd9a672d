package tasks

import (
	"fmt"

	"github.com/desertthunder/amjp/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadLedger Phase = iota
	LaunchApp
	ListTracks
	ProcessTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case LoadLedger:
		return "load_ledger"
	case LaunchApp:
		return "launch_app"
	case ListTracks:
		return "list_tracks"
	case ProcessTracks:
		return "process_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func loadLedgerUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: LoadLedger, Step: 1, Total: 1, Message: "Loading processed songs..."}
}

func launchAppUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: LaunchApp, Step: 1, Total: 1, Message: "Waiting for the library to open..."}
}

func listTracksUpdate(scope models.Scope) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading tracks from %s...", scope),
	}
}

func processTrackUpdate(step, total int, tr models.TrackRef) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Name),
	}
}

func trackResultUpdate(step, total int, tr TrackResult) ProgressUpdate {
	var msg string
	switch tr.Outcome {
	case models.OutcomeApplied:
		msg = fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, tr.Localized.Artist, tr.Localized.Title)
	case models.OutcomePlanned:
		msg = fmt.Sprintf("[%d/%d] ~ %s - %s", step, total, tr.Localized.Artist, tr.Localized.Title)
	case models.OutcomeNoMatch:
		msg = fmt.Sprintf("[%d/%d] ? %s - %s: no match", step, total, tr.Track.Artist, tr.Track.Name)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s - %s: %s", step, total, tr.Track.Artist, tr.Track.Name, failureReason(tr))
	}

	return ProgressUpdate{Phase: ProcessTracks, Step: step, Total: total, Message: msg, Data: tr}
}

func completeUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync complete: %d processed, %d skipped", result.Processed(), result.SkippedTotal()),
		Data:    result,
	}
}

func failureReason(tr TrackResult) string {
	if tr.Error != nil {
		return tr.Error.Error()
	}
	if tr.Response != "" {
		return tr.Response
	}
	return "unknown error"
}
