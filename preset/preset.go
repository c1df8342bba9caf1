// Package preset persists named mix presets to a JSON file.
//
// The on-disk format is a single JSON object keyed by preset name. Each
// preset carries the full per-slot settings of the mix (volume, playing
// flag, effects) plus category, tags, and a creation timestamp.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ZaviQ7/ambient-sound-generator/mixer"
)

var ErrEmptyName = errors.New("preset name must not be empty")

type Preset struct {
	Name      string                        `json:"name"`
	Settings  map[string]mixer.SlotSettings `json:"settings"`
	Category  string                        `json:"category"`
	Tags      []string                      `json:"tags"`
	CreatedAt time.Time                     `json:"created_at"`
}

// Store is a preset collection bound to a JSON file.
type Store struct {
	path string

	mu      sync.Mutex
	presets map[string]Preset

	watchStop chan struct{}
	watchDone chan struct{}
}

func NewStore(path string) *Store {
	return &Store{
		path:    path,
		presets: make(map[string]Preset),
	}
}

func (s *Store) Path() string { return s.path }

// Load reads the preset file. A missing file leaves the store empty and
// returns nil. A file that fails to parse also leaves the store empty but
// returns the error so the caller can log it; the store stays usable
// either way.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading presets: %w", err)
	}

	loaded := make(map[string]Preset)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(s.path), err)
	}
	for name, p := range loaded {
		// The map key wins over any stale name field.
		p.Name = name
		loaded[name] = p
	}

	s.mu.Lock()
	s.presets = loaded
	s.mu.Unlock()
	return nil
}

// Save inserts or replaces a preset by name and persists the whole store.
func (s *Store) Save(p Preset) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.presets[p.Name] = p
	err := s.persistLocked()
	s.mu.Unlock()
	return err
}

// Delete removes a preset and persists. Returns false if it did not exist.
func (s *Store) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.presets[name]; !ok {
		return false, nil
	}
	delete(s.presets, name)
	return true, s.persistLocked()
}

func (s *Store) Get(name string) (Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presets[name]
	return p, ok
}

// Names returns all preset names, sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.presets)
}

// persistLocked writes the store atomically: marshal to a temp file in the
// same directory, then rename over the target.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.presets, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding presets: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".presets-*.json")
	if err != nil {
		return fmt.Errorf("writing presets: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing presets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing presets: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing presets: %w", err)
	}
	return nil
}

// ParseTags splits a comma-separated tag line, trimming whitespace and
// dropping empties.
func ParseTags(line string) []string {
	var tags []string
	for _, t := range strings.Split(line, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
