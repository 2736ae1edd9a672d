// package formatter renders sync run reports to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
)

// Format names a report encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts csv, markdown (or md), txt (or text) and json, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q (want csv, markdown, txt or json)", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ExportToCSV converts a run's updates to CSV with columns: Persistent ID, Name, Artist, Outcome, Localized Title,
// Localized Album, Localized Artist, Response
func ExportToCSV(run *models.SyncRun, updates []*models.TrackUpdate) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Persistent ID", "Name", "Artist", "Outcome", "Localized Title", "Localized Album", "Localized Artist", "Response"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, u := range updates {
		var title, album, artist string
		if u.Localized != nil {
			title, album, artist = u.Localized.Title, u.Localized.Album, u.Localized.Artist
		}
		record := []string{
			u.Track.PersistentID,
			u.Track.Name,
			u.Track.Artist,
			string(u.Outcome),
			title,
			album,
			artist,
			u.Response,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a run summary and its updates to Markdown
func ExportToMarkdown(run *models.SyncRun, updates []*models.TrackUpdate) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Sync run %s\n\n", runLabel(run)))
	buf.WriteString(fmt.Sprintf("**Scope**: %s\n", run.Scope))
	if run.DryRun {
		buf.WriteString("**Mode**: dry run\n")
	}
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", run.StartedAt.Format(time.RFC3339)))
	if run.FinishedAt != nil {
		buf.WriteString(fmt.Sprintf("**Duration**: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second)))
	}
	if run.ErrorMessage != "" {
		buf.WriteString(fmt.Sprintf("**Error**: %s\n", run.ErrorMessage))
	}
	buf.WriteString("\n")

	buf.WriteString("| Entries | Applied | Skipped | Duplicates | No match | Failed |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	buf.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d | %d |\n\n",
		run.TotalEntries, run.Applied, run.Skipped, run.Duplicates, run.NoMatch, run.Failed))

	buf.WriteString("## Tracks\n\n")
	if len(updates) == 0 {
		buf.WriteString("_No tracks were looked up._\n")
	}
	for i, u := range updates {
		buf.WriteString(fmt.Sprintf("%d. %s - %s `%s`", i+1, u.Track.Artist, u.Track.Name, u.Outcome))
		if u.Localized != nil {
			buf.WriteString(fmt.Sprintf(" → %s - %s (%s)", u.Localized.Artist, u.Localized.Title, u.Localized.Album))
		}
		if u.Outcome == models.OutcomeFailed && u.Response != "" {
			buf.WriteString(fmt.Sprintf(": %s", u.Response))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a run summary and its updates to plain text
func ExportToText(run *models.SyncRun, updates []*models.TrackUpdate) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s\n", runLabel(run)))
	buf.WriteString(fmt.Sprintf("Scope: %s\n", run.Scope))
	if run.DryRun {
		buf.WriteString("Mode: dry run\n")
	}
	buf.WriteString(Summary(run) + "\n\n")

	for i, u := range updates {
		line := fmt.Sprintf("%d. [%s] %s - %s", i+1, u.Outcome, u.Track.Artist, u.Track.Name)
		if u.Localized != nil {
			line += fmt.Sprintf(" -> %s - %s", u.Localized.Artist, u.Localized.Title)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

type jsonReport struct {
	Run     *models.SyncRun       `json:"run"`
	Updates []*models.TrackUpdate `json:"updates"`
}

// ExportToJSON encodes the run and its updates as one indented JSON document
func ExportToJSON(run *models.SyncRun, updates []*models.TrackUpdate) ([]byte, error) {
	if updates == nil {
		updates = []*models.TrackUpdate{}
	}
	return shared.MarshalJSON(jsonReport{Run: run, Updates: updates}, true)
}

// Export renders the report in format f
func Export(f Format, run *models.SyncRun, updates []*models.TrackUpdate) ([]byte, error) {
	if run == nil {
		return nil, fmt.Errorf("%w: nil run", shared.ErrInvalidInput)
	}

	switch f {
	case FormatCSV:
		return ExportToCSV(run, updates)
	case FormatMarkdown:
		return ExportToMarkdown(run, updates)
	case FormatText:
		return ExportToText(run, updates)
	case FormatJSON:
		return ExportToJSON(run, updates)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidFlag, f)
	}
}

// WriteReport renders and writes the report.
//
// An empty path defaults to amjp_run_{sequence or start epoch}.{ext} in the working directory. Parent directories are created.
func WriteReport(path string, f Format, run *models.SyncRun, updates []*models.TrackUpdate) (string, error) {
	data, err := Export(f, run, updates)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if path == "" {
		id := run.StartedAt.Unix()
		if run.Sequence > 0 {
			id = int64(run.Sequence)
		}
		path = fmt.Sprintf("amjp_run_%d.%s", id, f.Extension())
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

// Summary is the one-line count summary of a run
func Summary(run *models.SyncRun) string {
	return fmt.Sprintf("Entries: %d, applied: %d, skipped: %d, duplicates: %d, no match: %d, failed: %d",
		run.TotalEntries, run.Applied, run.Skipped, run.Duplicates, run.NoMatch, run.Failed)
}

func runLabel(run *models.SyncRun) string {
	if run.Sequence > 0 {
		return fmt.Sprintf("#%d", run.Sequence)
	}
	return run.StartedAt.Format("2006-01-02 15:04:05")
}
