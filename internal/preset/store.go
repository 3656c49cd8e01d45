// Package preset persists named layout presets as a single JSON collection
// on disk. Writes are atomic; a corrupted collection is quarantined to a
// backup file and replaced with a fresh one rather than partially parsed.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bkonrad/snapback/internal/apperr"
	"github.com/bkonrad/snapback/internal/layout"
)

const collectionFile = "presets.json"

// CorruptError reports that the stored collection could not be used and was
// moved aside. It matches errors.Is(err, apperr.ErrStoreCorrupted).
type CorruptError struct {
	// BackupPath is where the unreadable file was moved, empty when even
	// the move failed.
	BackupPath string
	Cause      error
}

func (e *CorruptError) Error() string {
	if e.BackupPath != "" {
		return fmt.Sprintf("preset store corrupted (backed up to %s): %v", e.BackupPath, e.Cause)
	}
	return fmt.Sprintf("preset store corrupted: %v", e.Cause)
}

func (e *CorruptError) Unwrap() error { return apperr.ErrStoreCorrupted }

// Store manages the preset collection under a data directory.
//
// Mutating methods still succeed over a corrupted store: the damaged file is
// quarantined, the operation runs against a fresh collection, and the
// returned error (matching apperr.ErrStoreCorrupted) reports what happened
// alongside the usable result.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the collection file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, collectionFile)
}

// List returns metadata for every preset, sorted by creation time then name.
func (s *Store) List() ([]layout.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, corrupt := s.load()
	metas := make([]layout.Meta, 0, len(col.Presets))
	for _, p := range col.Presets {
		metas = append(metas, layout.Meta{
			ID:          p.ID,
			Name:        p.Name,
			Created:     p.Created,
			WindowCount: len(p.Windows),
		})
	}
	sort.SliceStable(metas, func(i, j int) bool {
		if !metas[i].Created.Equal(metas[j].Created) {
			return metas[i].Created.Before(metas[j].Created)
		}
		return metas[i].Name < metas[j].Name
	})
	return metas, corrupt
}

// Save stores a new preset. A name already in use gets a numeric suffix
// instead of overwriting.
func (s *Store) Save(name string, windows []layout.Snapshot, monitorCount int) (layout.Preset, error) {
	if strings.TrimSpace(name) == "" {
		return layout.Preset{}, fmt.Errorf("%w: preset name is empty", apperr.ErrInvalidPreset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, corrupt := s.load()

	p := layout.Preset{
		ID:           uuid.NewString(),
		Name:         uniqueName(strings.TrimSpace(name), col.Presets, ""),
		Created:      time.Now().UTC(),
		MonitorCount: monitorCount,
		Windows:      windows,
	}
	if err := p.Validate(); err != nil {
		return layout.Preset{}, fmt.Errorf("%w: %v", apperr.ErrInvalidPreset, err)
	}

	col.Presets = append(col.Presets, p)
	if err := s.persist(col); err != nil {
		return layout.Preset{}, err
	}
	return p, corrupt
}

// Get returns a preset by id, falling back to a case-insensitive name match.
func (s *Store) Get(idOrName string) (layout.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, corrupt := s.load()
	for _, p := range col.Presets {
		if p.ID == idOrName {
			return p, corrupt
		}
	}
	for _, p := range col.Presets {
		if strings.EqualFold(p.Name, idOrName) {
			return p, corrupt
		}
	}
	if corrupt != nil {
		return layout.Preset{}, corrupt
	}
	return layout.Preset{}, fmt.Errorf("%w: preset %q", apperr.ErrNotFound, idOrName)
}

// Delete removes a preset by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, corrupt := s.load()
	for i, p := range col.Presets {
		if p.ID == id {
			col.Presets = append(col.Presets[:i], col.Presets[i+1:]...)
			if err := s.persist(col); err != nil {
				return err
			}
			return corrupt
		}
	}
	if corrupt != nil {
		return corrupt
	}
	return fmt.Errorf("%w: preset %q", apperr.ErrNotFound, id)
}

// Rename changes a preset's name, applying the same suffixing as Save when
// the new name collides with another preset.
func (s *Store) Rename(id, newName string) (layout.Preset, error) {
	if strings.TrimSpace(newName) == "" {
		return layout.Preset{}, fmt.Errorf("%w: preset name is empty", apperr.ErrInvalidPreset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, corrupt := s.load()
	for i := range col.Presets {
		if col.Presets[i].ID != id {
			continue
		}
		col.Presets[i].Name = uniqueName(strings.TrimSpace(newName), col.Presets, id)
		if err := s.persist(col); err != nil {
			return layout.Preset{}, err
		}
		return col.Presets[i], corrupt
	}
	if corrupt != nil {
		return layout.Preset{}, corrupt
	}
	return layout.Preset{}, fmt.Errorf("%w: preset %q", apperr.ErrNotFound, id)
}

// load reads and validates the collection. Any structural deviation
// quarantines the file and yields a fresh, empty collection plus a
// CorruptError; a missing file is simply empty.
func (s *Store) load() (*layout.Collection, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &layout.Collection{}, nil
		}
		return &layout.Collection{}, s.quarantine(path, err)
	}

	var col layout.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return &layout.Collection{}, s.quarantine(path, err)
	}
	if err := col.Validate(); err != nil {
		return &layout.Collection{}, s.quarantine(path, fmt.Errorf("%w: %v", apperr.ErrInvalidPreset, err))
	}
	return &col, nil
}

// quarantine moves an unreadable collection file out of the way so the next
// write starts clean, and builds the error the caller surfaces.
func (s *Store) quarantine(path string, cause error) *CorruptError {
	backup := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405"))
	if err := os.Rename(path, backup); err != nil {
		backup = ""
	}
	return &CorruptError{BackupPath: backup, Cause: cause}
}

// persist writes the collection atomically: temp file in the same directory,
// fsync, then rename over the old file.
func (s *Store) persist(col *layout.Collection) error {
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode presets: %w", err)
	}

	path := s.Path()
	tmp, err := os.CreateTemp(s.dir, collectionFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write presets: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync presets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// uniqueName returns name, or name with the lowest free " (n)" suffix when
// another preset (excluding excludeID) already uses it, case-insensitively.
func uniqueName(name string, presets []layout.Preset, excludeID string) string {
	taken := func(candidate string) bool {
		for _, p := range presets {
			if p.ID != excludeID && strings.EqualFold(p.Name, candidate) {
				return true
			}
		}
		return false
	}

	if !taken(name) {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
