package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
	th "github.com/desertthunder/amjp/internal/testing"
)

func sampleRun() (*models.SyncRun, []*models.TrackUpdate) {
	started := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)
	run := &models.SyncRun{
		ID:           "run-1",
		Sequence:     7,
		Scope:        "all playlists",
		TotalEntries: 4,
		Applied:      1,
		Skipped:      1,
		Duplicates:   0,
		NoMatch:      1,
		Failed:       1,
		StartedAt:    started,
		FinishedAt:   &finished,
	}
	updates := []*models.TrackUpdate{
		{
			RunID:     "run-1",
			Track:     models.TrackRef{PersistentID: "ABC123", Name: "Lemon", Artist: "Kenshi Yonezu"},
			Localized: &models.LocalizedMetadata{Title: "レモン", Album: "Lemon", Artist: "米津玄師"},
			Outcome:   models.OutcomeApplied,
			Response:  "Success",
		},
		{
			RunID:   "run-1",
			Track:   models.TrackRef{PersistentID: "DEF456", Name: "Unknown, Song", Artist: "Nobody"},
			Outcome: models.OutcomeNoMatch,
		},
		{
			RunID:     "run-1",
			Track:     models.TrackRef{PersistentID: "GHI789", Name: "Pretender", Artist: "Official HIGE DANdism"},
			Localized: &models.LocalizedMetadata{Title: "Pretender", Album: "Traveler", Artist: "Official髭男dism"},
			Outcome:   models.OutcomeFailed,
			Response:  "execution error",
		},
	}
	return run, updates
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"txt", FormatText},
		{"text", FormatText},
		{" json ", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if err != nil {
				t.Fatalf("ParseFormat(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("extension", func(t *testing.T) {
		if FormatMarkdown.Extension() != "md" || FormatCSV.Extension() != "csv" {
			t.Error("unexpected extensions")
		}
	})
}

func TestExporters(t *testing.T) {
	run, updates := sampleRun()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(run, updates)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header and 3 rows, got %d", len(records))
		}
		if records[0][0] != "Persistent ID" || records[0][3] != "Outcome" {
			t.Errorf("unexpected header: %v", records[0])
		}
		if records[1][4] != "レモン" || records[1][6] != "米津玄師" {
			t.Errorf("unexpected localized columns: %v", records[1])
		}
		if records[2][1] != "Unknown, Song" {
			t.Errorf("expected comma in name to survive quoting, got %q", records[2][1])
		}
		if records[2][4] != "" {
			t.Errorf("expected empty localized title for no_match, got %q", records[2][4])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(run, updates)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Sync run #7",
			"**Scope**: all playlists",
			"**Duration**: 1m30s",
			"| 4 | 1 | 1 | 0 | 1 | 1 |",
			"1. Kenshi Yonezu - Lemon `applied` → 米津玄師 - レモン (Lemon)",
			"`failed` → Official髭男dism - Pretender (Traveler): execution error",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without updates", func(t *testing.T) {
		data, err := ExportToMarkdown(run, nil)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "No tracks were looked up") {
			t.Errorf("expected empty notice, got %s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		dry := *run
		dry.DryRun = true
		data, err := ExportToText(&dry, updates)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Run: #7",
			"Mode: dry run",
			"Entries: 4, applied: 1, skipped: 1, duplicates: 0, no match: 1, failed: 1",
			"1. [applied] Kenshi Yonezu - Lemon -> 米津玄師 - レモン",
			"2. [no_match] Nobody - Unknown, Song",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q\n%s", want, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(run, updates)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded struct {
			Run     models.SyncRun       `json:"run"`
			Updates []models.TrackUpdate `json:"updates"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Run.Sequence != 7 || len(decoded.Updates) != 3 {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
		if decoded.Updates[0].Localized.Title != "レモン" {
			t.Errorf("expected localized title, got %+v", decoded.Updates[0].Localized)
		}
	})

	t.Run("ExportToJSON empty updates is an array", func(t *testing.T) {
		data, err := ExportToJSON(run, nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"updates": []`) {
			t.Errorf("expected empty array, got %s", data)
		}
	})

	t.Run("Export rejects nil run", func(t *testing.T) {
		if _, err := Export(FormatCSV, nil, nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Export rejects unknown format", func(t *testing.T) {
		if _, err := Export(Format("xml"), run, nil); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteReport(t *testing.T) {
	run, updates := sampleRun()

	t.Run("writes to given path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "run.md")

		written, err := WriteReport(path, FormatMarkdown, run, updates)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# Sync run #7") {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("default filename", func(t *testing.T) {
		th.MustChdir(t, t.TempDir())

		written, err := WriteReport("", FormatCSV, run, updates)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if written != "amjp_run_7.csv" {
			t.Errorf("expected amjp_run_7.csv, got %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("unwritable path", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := WriteReport(dir, FormatText, run, updates); err == nil {
			t.Error("expected error when path is a directory")
		}
	})
}
