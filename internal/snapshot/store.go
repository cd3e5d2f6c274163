// Package snapshot persists point-in-time system measurements.
//
// The store keeps the last two snapshots on disk (current and previous,
// rotated on save) and serves reads through a short-TTL memory cache so the
// fast path never touches the filesystem twice for one burst of queries.
// The decision pipeline only reads; an external refresher owns writes.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"veracity/internal/model"
)

// ErrNoSnapshot is returned when no snapshot has been captured yet.
var ErrNoSnapshot = errors.New("no snapshot available")

const (
	lastFile = "last.json"
	prevFile = "prev.json"

	keyLast = "snapshot:last"
	keyPrev = "snapshot:prev"
)

// Store manages snapshot persistence with a memory cache in front of disk.
type Store struct {
	dir string
	mem *gocache.Cache
}

// NewStore creates a store rooted at dir. cacheTTL bounds how long a read
// may be served from memory before going back to disk.
func NewStore(dir string, cacheTTL time.Duration) *Store {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Store{
		dir: dir,
		mem: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// DefaultDir returns the default snapshot directory (~/.veracity/snapshots).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".veracity/snapshots"
	}
	return filepath.Join(home, ".veracity", "snapshots")
}

// LoadLast returns the most recent snapshot.
func (s *Store) LoadLast() (*model.SystemSnapshot, error) {
	return s.load(keyLast, lastFile)
}

// LoadPrevious returns the snapshot before the most recent one.
func (s *Store) LoadPrevious() (*model.SystemSnapshot, error) {
	return s.load(keyPrev, prevFile)
}

// Save stores snap as the current snapshot, rotating the old current one
// into the previous slot.
func (s *Store) Save(snap *model.SystemSnapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	lastPath := filepath.Join(s.dir, lastFile)
	prevPath := filepath.Join(s.dir, prevFile)

	// Rotate current -> previous. A missing current file is fine (first save).
	if _, err := os.Stat(lastPath); err == nil {
		if err := os.Rename(lastPath, prevPath); err != nil {
			return fmt.Errorf("rotate snapshot: %w", err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(lastPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	s.mem.Flush()
	return nil
}

// Diff compares the previous and current snapshots. See model.DiffSnapshots
// for delta ordering.
func (s *Store) Diff() ([]model.Delta, error) {
	curr, err := s.LoadLast()
	if err != nil {
		return nil, err
	}
	prev, err := s.LoadPrevious()
	if err != nil {
		return nil, err
	}
	return model.DiffSnapshots(prev, curr), nil
}

func (s *Store) load(cacheKey, file string) (*model.SystemSnapshot, error) {
	if val, found := s.mem.Get(cacheKey); found {
		snap := val.(model.SystemSnapshot)
		return &snap, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap model.SystemSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	s.mem.Set(cacheKey, snap, gocache.DefaultExpiration)
	return &snap, nil
}
