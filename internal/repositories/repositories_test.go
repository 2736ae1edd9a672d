package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/amjp/internal/models"
	"github.com/desertthunder/amjp/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createRun(t *testing.T, repo *RunRepository) *models.SyncRun {
	t.Helper()
	run := models.NewSyncRun(models.AllPlaylists(), false)
	if err := repo.Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return run
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "sync_runs")
		if err != nil {
			t.Fatalf("NextSequence returned error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	t.Run("unknown table", func(t *testing.T) {
		if _, err := NextSequence(db, "nope"); err == nil {
			t.Error("expected error for missing sequence table")
		}
	})
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := createRun(t, repo)

		if run.ID == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence)
		}

		second := createRun(t, repo)
		if second.Sequence != 2 {
			t.Errorf("expected sequence 2, got %d", second.Sequence)
		}
	})

	t.Run("Create rejects invalid run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := &models.SyncRun{StartedAt: time.Now()}
		if err := NewRunRepository(db).Create(run); err == nil {
			t.Fatal("expected validation error for empty scope")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewSyncRun(models.NamedPlaylist("J-Pop"), true)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		retrieved, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.Scope != `playlist "J-Pop"` {
			t.Errorf("expected scope %q, got %q", run.Scope, retrieved.Scope)
		}
		if !retrieved.DryRun {
			t.Error("expected dry run flag to round trip")
		}
		if retrieved.FinishedAt != nil {
			t.Error("expected unfinished run")
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewRunRepository(db).Get("missing"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("GetBySequence", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		createRun(t, repo)
		second := createRun(t, repo)

		retrieved, err := repo.GetBySequence(2)
		if err != nil {
			t.Fatalf("failed to get run by sequence: %v", err)
		}
		if retrieved.ID != second.ID {
			t.Errorf("expected ID %s, got %s", second.ID, retrieved.ID)
		}

		if _, err := repo.GetBySequence(9); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Finish", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := createRun(t, repo)
		run.TotalEntries = 5
		run.Applied = 2
		run.Skipped = 1
		run.Duplicates = 1
		run.NoMatch = 1
		run.ErrorMessage = "context canceled"

		if err := repo.Finish(run); err != nil {
			t.Fatalf("failed to finish run: %v", err)
		}
		if run.FinishedAt == nil {
			t.Fatal("expected finished_at to be stamped")
		}

		retrieved, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.Applied != 2 || retrieved.Skipped != 1 || retrieved.Duplicates != 1 || retrieved.NoMatch != 1 || retrieved.TotalEntries != 5 {
			t.Errorf("counters did not round trip: %+v", retrieved)
		}
		if retrieved.ErrorMessage != "context canceled" {
			t.Errorf("expected error message to round trip, got %q", retrieved.ErrorMessage)
		}
		if retrieved.FinishedAt == nil {
			t.Error("expected finished_at to be stored")
		}
	})

	t.Run("Finish unknown run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := models.NewSyncRun(models.AllPlaylists(), false)
		run.ID = "missing"
		if err := NewRunRepository(db).Finish(run); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for range 3 {
			createRun(t, repo)
		}

		runs, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].Sequence != 3 || runs[2].Sequence != 1 {
			t.Errorf("expected newest first, got sequences %d..%d", runs[0].Sequence, runs[2].Sequence)
		}

		limited, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 runs, got %d", len(limited))
		}
	})

	t.Run("List empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		runs, err := NewRunRepository(db).List(10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})
}

func TestUpdateRepository(t *testing.T) {
	lemon := models.TrackRef{PersistentID: "ABC123", Name: "Lemon", Artist: "Kenshi Yonezu"}

	t.Run("Create and ListByRun", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := createRun(t, NewRunRepository(db))
		repo := NewUpdateRepository(db)

		applied := &models.TrackUpdate{
			RunID:     run.ID,
			Track:     lemon,
			Localized: &models.LocalizedMetadata{Title: "レモン", Album: "Lemon", Artist: "米津玄師"},
			Outcome:   models.OutcomeApplied,
			Response:  "Success",
		}
		noMatch := &models.TrackUpdate{
			RunID:   run.ID,
			Track:   models.TrackRef{PersistentID: "DEF456", Name: "Unknown", Artist: "Nobody"},
			Outcome: models.OutcomeNoMatch,
		}

		for _, u := range []*models.TrackUpdate{applied, noMatch} {
			if err := repo.Create(u); err != nil {
				t.Fatalf("failed to create update: %v", err)
			}
			if u.ID == "" {
				t.Error("update ID should be set after creation")
			}
		}

		updates, err := repo.ListByRun(run.ID)
		if err != nil {
			t.Fatalf("failed to list updates: %v", err)
		}
		if len(updates) != 2 {
			t.Fatalf("expected 2 updates, got %d", len(updates))
		}

		first := updates[0]
		if first.Outcome != models.OutcomeApplied || first.Response != "Success" {
			t.Errorf("unexpected first update: %+v", first)
		}
		if first.Localized == nil || first.Localized.Artist != "米津玄師" {
			t.Errorf("expected localized metadata to round trip, got %+v", first.Localized)
		}
		if updates[1].Localized != nil {
			t.Errorf("expected no localized metadata for no_match, got %+v", updates[1].Localized)
		}
	})

	t.Run("ListByPersistentID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		runs := NewRunRepository(db)
		repo := NewUpdateRepository(db)
		for range 2 {
			run := createRun(t, runs)
			if err := repo.Create(&models.TrackUpdate{RunID: run.ID, Track: lemon, Outcome: models.OutcomeNoMatch}); err != nil {
				t.Fatalf("failed to create update: %v", err)
			}
		}

		updates, err := repo.ListByPersistentID("ABC123")
		if err != nil {
			t.Fatalf("failed to list updates: %v", err)
		}
		if len(updates) != 2 {
			t.Errorf("expected 2 updates, got %d", len(updates))
		}
	})

	t.Run("Create rejects missing run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewUpdateRepository(db).Create(&models.TrackUpdate{RunID: "missing", Track: lemon, Outcome: models.OutcomeApplied})
		if err == nil {
			t.Fatal("expected foreign key error")
		}
	})

	t.Run("Create rejects invalid update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewUpdateRepository(db).Create(&models.TrackUpdate{Track: lemon}); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestHistory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	h := NewHistory(db)
	run := models.NewSyncRun(models.AllPlaylists(), false)
	if err := h.StartRun(run); err != nil {
		t.Fatalf("StartRun returned error: %v", err)
	}

	update := &models.TrackUpdate{
		RunID:   run.ID,
		Track:   models.TrackRef{PersistentID: "ABC123", Name: "Lemon", Artist: "Kenshi Yonezu"},
		Outcome: models.OutcomeApplied,
	}
	if err := h.RecordUpdate(update); err != nil {
		t.Fatalf("RecordUpdate returned error: %v", err)
	}

	run.Applied = 1
	if err := h.FinishRun(run); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}

	stored, err := h.Runs.Get(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if stored.Applied != 1 || stored.FinishedAt == nil {
		t.Errorf("unexpected stored run: %+v", stored)
	}
}
