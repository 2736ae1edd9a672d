// Package ledger persists the set of track persistent IDs that a sync run has already handled.
//
// The ledger is a flat JSON array of strings. It is read in full at the start of a run and rewritten in full after every successful
// update. It is the only thing that decides whether a track is processed again.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/desertthunder/amjp/internal/shared"
	"github.com/gofrs/flock"
)

// Ledger reads and writes the processed-ID file at a fixed path.
//
// A Ledger does no locking of its own. Callers that might overlap take [Ledger.Lock] for the duration of a run.
type Ledger struct {
	path string
}

// New returns a Ledger backed by the file at path. The file need not exist yet.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Load returns the stored IDs in insertion order, or an empty slice when the file does not exist.
//
// A file that exists but is not a JSON array of strings is an error wrapping [shared.ErrLedgerCorrupt].
func (l *Ledger) Load() ([]string, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrLedgerCorrupt, l.path, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Record reloads the ledger, appends id when absent, and rewrites the whole file.
//
// Reports whether id was newly added.
func (l *Ledger) Record(id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: empty persistent ID", shared.ErrInvalidInput)
	}

	ids, err := l.Load()
	if err != nil {
		return false, err
	}

	for _, existing := range ids {
		if existing == id {
			return false, nil
		}
	}

	if err := l.write(append(ids, id)); err != nil {
		return false, err
	}
	return true, nil
}

// write replaces the ledger file through a temp file in the same directory.
func (l *Ledger) write(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set ledger permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// Lock takes an advisory lock on "<path>.lock" without blocking.
//
// Returns [shared.ErrRunInProgress] when another process holds it. The returned func releases the lock.
func (l *Ledger) Lock() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	lock := flock.New(l.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunInProgress, lock.Path())
	}
	return lock.Unlock, nil
}

// Set is an in-memory membership index over ledger IDs.
type Set map[string]struct{}

// NewSet indexes ids.
func NewSet(ids []string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Contains reports whether id appears in ids.
func Contains(ids []string, id string) bool {
	return slices.Contains(ids, id)
}
