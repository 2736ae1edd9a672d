package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/amjp/internal/shared"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "processed_songs.json"))
}

func TestLedger(t *testing.T) {
	t.Run("Load Missing File", func(t *testing.T) {
		l := newTestLedger(t)

		ids, err := l.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ids == nil || len(ids) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", ids)
		}
	})

	t.Run("Load Existing File", func(t *testing.T) {
		l := newTestLedger(t)
		if err := os.WriteFile(l.Path(), []byte(`["A1", "B2"]`), 0644); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}

		ids, err := l.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(ids) != 2 || ids[0] != "A1" || ids[1] != "B2" {
			t.Errorf("unexpected ids %v", ids)
		}
	})

	t.Run("Load Null Is Empty", func(t *testing.T) {
		l := newTestLedger(t)
		if err := os.WriteFile(l.Path(), []byte(`null`), 0644); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}

		ids, err := l.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("expected empty ledger, got %v", ids)
		}
	})

	t.Run("Load Corrupt File Fails Hard", func(t *testing.T) {
		for name, content := range map[string]string{
			"not json":   "not json",
			"object":     `{"ids": []}`,
			"numbers":    `[1, 2]`,
			"empty file": "",
			"truncated":  `["A1", "B`,
		} {
			t.Run(name, func(t *testing.T) {
				l := newTestLedger(t)
				if err := os.WriteFile(l.Path(), []byte(content), 0644); err != nil {
					t.Fatalf("failed to seed ledger: %v", err)
				}

				_, err := l.Load()
				if !errors.Is(err, shared.ErrLedgerCorrupt) {
					t.Errorf("expected ErrLedgerCorrupt, got %v", err)
				}
			})
		}
	})

	t.Run("Record Appends And Persists", func(t *testing.T) {
		l := newTestLedger(t)

		added, err := l.Record("ABC123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !added {
			t.Error("expected first record to add")
		}

		content, err := os.ReadFile(l.Path())
		if err != nil {
			t.Fatalf("ledger file should exist: %v", err)
		}
		if string(content) != `["ABC123"]` {
			t.Errorf("unexpected ledger content %s", content)
		}
	})

	t.Run("Record Is Unique", func(t *testing.T) {
		l := newTestLedger(t)

		for i := 0; i < 3; i++ {
			if _, err := l.Record("ABC123"); err != nil {
				t.Fatalf("record %d failed: %v", i, err)
			}
		}
		added, err := l.Record("ABC123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if added {
			t.Error("expected duplicate record to report not added")
		}

		ids, _ := l.Load()
		if len(ids) != 1 {
			t.Errorf("expected exactly one entry, got %v", ids)
		}
	})

	t.Run("Record Is Monotonic", func(t *testing.T) {
		l := newTestLedger(t)

		want := []string{"A", "B", "C", "B", "D", "A"}
		prev := 0
		for _, id := range want {
			if _, err := l.Record(id); err != nil {
				t.Fatalf("record %s failed: %v", id, err)
			}
			ids, err := l.Load()
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if len(ids) < prev {
				t.Fatalf("ledger shrank from %d to %d", prev, len(ids))
			}
			prev = len(ids)
		}

		ids, _ := l.Load()
		expected := []string{"A", "B", "C", "D"}
		if len(ids) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, ids)
		}
		for i := range expected {
			if ids[i] != expected[i] {
				t.Errorf("position %d: expected %s, got %s", i, expected[i], ids[i])
			}
		}
	})

	t.Run("Record Reloads Before Writing", func(t *testing.T) {
		l := newTestLedger(t)
		if _, err := l.Record("A"); err != nil {
			t.Fatalf("record failed: %v", err)
		}

		if err := os.WriteFile(l.Path(), []byte(`["A","EXTERNAL"]`), 0644); err != nil {
			t.Fatalf("failed to modify ledger: %v", err)
		}

		if _, err := l.Record("B"); err != nil {
			t.Fatalf("record failed: %v", err)
		}

		ids, _ := l.Load()
		if len(ids) != 3 || ids[1] != "EXTERNAL" || ids[2] != "B" {
			t.Errorf("expected external entry to survive, got %v", ids)
		}
	})

	t.Run("Record Corrupt Ledger", func(t *testing.T) {
		l := newTestLedger(t)
		if err := os.WriteFile(l.Path(), []byte("{"), 0644); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}

		if _, err := l.Record("A"); !errors.Is(err, shared.ErrLedgerCorrupt) {
			t.Errorf("expected ErrLedgerCorrupt, got %v", err)
		}

		content, _ := os.ReadFile(l.Path())
		if string(content) != "{" {
			t.Error("corrupt ledger must not be overwritten")
		}
	})

	t.Run("Record Empty ID", func(t *testing.T) {
		l := newTestLedger(t)
		if _, err := l.Record(""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Record Creates Parent Directory", func(t *testing.T) {
		l := New(filepath.Join(t.TempDir(), "nested", "dir", "ledger.json"))
		if _, err := l.Record("A"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(l.Path()); err != nil {
			t.Errorf("ledger should exist: %v", err)
		}
	})

	t.Run("Record Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		l := New(filepath.Join(dir, "ledger.json"))
		for _, id := range []string{"A", "B"} {
			if _, err := l.Record(id); err != nil {
				t.Fatalf("record failed: %v", err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 1 {
			names := []string{}
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("expected only the ledger file, got %v", names)
		}
	})
}

func TestLedgerLock(t *testing.T) {
	l := newTestLedger(t)

	unlock, err := l.Lock()
	if err != nil {
		t.Fatalf("expected lock to succeed, got %v", err)
	}

	if _, err := New(l.Path()).Lock(); !errors.Is(err, shared.ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress while held, got %v", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}

	unlock, err = New(l.Path()).Lock()
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	_ = unlock()
}

func TestSet(t *testing.T) {
	s := NewSet([]string{"A", "B"})
	if !s.Has("A") || !s.Has("B") {
		t.Error("expected seeded members")
	}
	if s.Has("C") {
		t.Error("unexpected member C")
	}
	s.Add("C")
	if !s.Has("C") {
		t.Error("expected C after Add")
	}
}
