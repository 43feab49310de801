// Package state persists named severity filter presets across runs in a
// JSON file, so a reviewer's saved selections survive between sessions.
package state

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

	"github.com/WSG23/overlayreview/internal/filter"
	"github.com/WSG23/overlayreview/internal/types"
)

// Preset is a saved severity selection.
type Preset struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Severities []types.Severity `json:"severities"`
	SavedAt    string           `json:"saved_at"`
}

// Store persists presets to a JSON file on disk.
type Store struct {
	mu      sync.RWMutex
	Presets map[string]Preset `json:"presets"`
	path    string
}

// New creates a new Store backed by the given file path.
func New(path string) *Store {
	return &Store{
		Presets: make(map[string]Preset),
		path:    path,
	}
}

// DefaultPath returns the default presets file path (~/.overlayreview/presets.json).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".overlayreview/presets.json"
	}
	return filepath.Join(home, ".overlayreview", "presets.json")
}

// Load reads the presets file. A missing file leaves the store empty.
// Symlinks are rejected.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Lstat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("presets file is a symlink (rejected for security): %s", s.path)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if s.Presets == nil {
		s.Presets = make(map[string]Preset)
	}
	return nil
}

// Save writes the store to disk, creating parent directories if needed.
// Directories are created with 0o700, files with 0o600.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if info, err := os.Lstat(s.path); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("presets file is a symlink (rejected for security): %s", s.path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Put saves severities under name, keeping the preset ID when it already exists.
func (s *Store) Put(name string, severities []types.Severity) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, fmt.Errorf("preset name is empty")
	}
	if len(severities) == 0 {
		return Preset{}, filter.ErrEmptySelection
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := Preset{
		ID:         uuid.NewString(),
		Name:       name,
		Severities: append([]types.Severity(nil), severities...),
		SavedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if existing, ok := s.Presets[name]; ok {
		p.ID = existing.ID
	}
	s.Presets[name] = p
	return p, nil
}

// Get returns the preset with the given name.
func (s *Store) Get(name string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.Presets[strings.TrimSpace(name)]
	return p, ok
}

// Delete removes a preset and reports whether it existed.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	_, ok := s.Presets[name]
	delete(s.Presets, name)
	return ok
}

// List returns presets sorted by name.
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Preset, 0, len(s.Presets))
	for _, p := range s.Presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Register loads every stored preset into f without changing its live selection.
func (s *Store) Register(f *filter.SeverityFilter) {
	for _, p := range s.List() {
		f.LoadPreset(p.Name, p.Severities)
	}
}

// Path returns the file path of this store.
func (s *Store) Path() string {
	return s.path
}
