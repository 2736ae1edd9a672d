package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/amjp/internal/models"
)

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for runs (e.g., run #42). `history show` accepts them in place of the UUID.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// History writes one sync run and its track updates through the run and update repositories.
type History struct {
	Runs    *RunRepository
	Updates *UpdateRepository
}

// NewHistory creates a History over db
func NewHistory(db *sql.DB) *History {
	return &History{Runs: NewRunRepository(db), Updates: NewUpdateRepository(db)}
}

// StartRun inserts run and assigns its ID and sequence
func (h *History) StartRun(run *models.SyncRun) error {
	return h.Runs.Create(run)
}

// RecordUpdate inserts one track outcome for an existing run
func (h *History) RecordUpdate(update *models.TrackUpdate) error {
	return h.Updates.Create(update)
}

// FinishRun stores the final counters of run
func (h *History) FinishRun(run *models.SyncRun) error {
	return h.Runs.Finish(run)
}
