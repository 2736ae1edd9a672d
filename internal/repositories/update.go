package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
)

const updateColumns = `id, run_id, persistent_id, name, artist, localized_title, localized_album,
			localized_artist, outcome, response, created_at`

// UpdateRepository persists [models.TrackUpdate] records.
type UpdateRepository struct {
	db *sql.DB
}

// NewUpdateRepository creates a new UpdateRepository with the given database connection
func NewUpdateRepository(db *sql.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

// Create inserts a track update with a generated ID
func (r *UpdateRepository) Create(update *models.TrackUpdate) error {
	if err := update.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	update.ID = shared.GenerateID()
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now()
	}

	var title, album, artist any
	if update.Localized != nil {
		title = update.Localized.Title
		album = update.Localized.Album
		artist = update.Localized.Artist
	}

	query := `
		INSERT INTO track_updates (` + updateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		update.ID,
		update.RunID,
		update.Track.PersistentID,
		update.Track.Name,
		update.Track.Artist,
		title,
		album,
		artist,
		string(update.Outcome),
		nullString(update.Response),
		update.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert track update: %w", err)
	}

	return nil
}

// ListByRun returns a run's updates in the order they were recorded
func (r *UpdateRepository) ListByRun(runID string) ([]*models.TrackUpdate, error) {
	query := `SELECT ` + updateColumns + ` FROM track_updates WHERE run_id = ? ORDER BY created_at, rowid`
	return r.list(query, runID)
}

// ListByPersistentID returns every recorded update for one track, oldest first
func (r *UpdateRepository) ListByPersistentID(persistentID string) ([]*models.TrackUpdate, error) {
	query := `SELECT ` + updateColumns + ` FROM track_updates WHERE persistent_id = ? ORDER BY created_at, rowid`
	return r.list(query, persistentID)
}

func (r *UpdateRepository) list(query string, args ...any) ([]*models.TrackUpdate, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track updates: %w", err)
	}
	defer rows.Close()

	var updates []*models.TrackUpdate
	for rows.Next() {
		update, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return updates, nil
}

func scanUpdate(row rowScanner) (*models.TrackUpdate, error) {
	var (
		update   models.TrackUpdate
		outcome  string
		title    sql.NullString
		album    sql.NullString
		artist   sql.NullString
		response sql.NullString
	)

	err := row.Scan(
		&update.ID, &update.RunID, &update.Track.PersistentID, &update.Track.Name, &update.Track.Artist,
		&title, &album, &artist, &outcome, &response, &update.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan track update: %w", err)
	}

	update.Outcome = models.Outcome(outcome)
	if title.Valid || album.Valid || artist.Valid {
		update.Localized = &models.LocalizedMetadata{Title: title.String, Album: album.String, Artist: artist.String}
	}
	if response.Valid {
		update.Response = response.String
	}

	return &update, nil
}
