package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
)

const runColumns = `id, sequence, scope, dry_run, total_entries, applied, skipped, duplicates,
			no_match, failed, error_message, started_at, finished_at`

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// RunRepository persists [models.SyncRun] records.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with a generated ID and sequence
func (r *RunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.ID = shared.GenerateID()
	run.Sequence = sequence

	query := `
		INSERT INTO sync_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		run.Scope,
		run.DryRun,
		run.TotalEntries,
		run.Applied,
		run.Skipped,
		run.Duplicates,
		run.NoMatch,
		run.Failed,
		nullString(run.ErrorMessage),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Finish writes the final counters and stamps finished_at when it is unset
func (r *RunRepository) Finish(run *models.SyncRun) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE sync_runs
		SET total_entries = ?, applied = ?, skipped = ?, duplicates = ?, no_match = ?,
			failed = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.TotalEntries,
		run.Applied,
		run.Skipped,
		run.Duplicates,
		run.NoMatch,
		run.Failed,
		nullString(run.ErrorMessage),
		run.FinishedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return run, err
}

// GetBySequence retrieves a run by its sequence number
func (r *RunRepository) GetBySequence(sequence int) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE sequence = ?`

	run, err := scanRun(r.db.QueryRow(query, sequence))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%d", shared.ErrRunNotFound, sequence)
	}
	return run, err
}

// List returns the most recent runs first. A limit of zero or less returns every run.
func (r *RunRepository) List(limit int) ([]*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs ORDER BY sequence DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanRun scans a single row into a [models.SyncRun]
func scanRun(row rowScanner) (*models.SyncRun, error) {
	var (
		run          models.SyncRun
		errorMessage sql.NullString
		finishedAt   sql.NullTime
	)

	err := row.Scan(
		&run.ID, &run.Sequence, &run.Scope, &run.DryRun, &run.TotalEntries,
		&run.Applied, &run.Skipped, &run.Duplicates, &run.NoMatch, &run.Failed,
		&errorMessage, &run.StartedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
