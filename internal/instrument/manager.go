// Package instrument discovers instrument sample packs on disk and syncs
// them into the catalog store.
package instrument

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/huiziwang666/ainfinite-string-piano/internal/store"
)

// ErrPackNotFound is returned when a requested sample pack cannot be found.
var ErrPackNotFound = errors.New("instrument pack not found")

// Manifest is the instrument.json file at the root of a sample pack.
// Sample paths are relative to the pack directory.
type Manifest struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	Samples     map[string]string `json:"samples"`
}

// Pack is a discovered sample pack.
type Pack struct {
	Manifest Manifest
	Dir      string
}

// Manager manages sample pack discovery and access.
type Manager struct {
	packDir string
	packs   map[string]*Pack
	mu      sync.RWMutex
}

// NewManager creates a new Manager with the given pack directory.
func NewManager(packDir string) *Manager {
	return &Manager{
		packDir: packDir,
		packs:   make(map[string]*Pack),
	}
}

// Discover scans the pack directory for instrument.json manifests.
// Each subdirectory is expected to be one sample pack. Directories without
// a valid manifest are skipped, not fatal.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.packs = make(map[string]*Pack)

	info, err := os.Stat(m.packDir)
	if os.IsNotExist(err) {
		return nil // No pack directory, nothing to discover
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.packDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(m.packDir, entry.Name())
		manifestPath := filepath.Join(dir, "instrument.json")

		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			continue
		}
		if manifest.Name == "" {
			continue
		}

		m.packs[manifest.Name] = &Pack{
			Manifest: manifest,
			Dir:      dir,
		}
	}

	return nil
}

// Get returns a discovered pack by instrument name.
func (m *Manager) Get(name string) (*Pack, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pack, ok := m.packs[name]
	if !ok {
		return nil, ErrPackNotFound
	}
	return pack, nil
}

// List returns all discovered packs.
func (m *Manager) List() []*Pack {
	m.mu.RLock()
	defer m.mu.RUnlock()

	packs := make([]*Pack, 0, len(m.packs))
	for _, p := range m.packs {
		packs = append(packs, p)
	}
	return packs
}

// Sync upserts every discovered pack into the catalog store, resolving
// sample paths against the pack directory.
func (m *Manager) Sync(s *store.Store) error {
	m.mu.RLock()
	packs := make([]*Pack, 0, len(m.packs))
	for _, p := range m.packs {
		packs = append(packs, p)
	}
	m.mu.RUnlock()

	repo := s.Instruments()
	for _, pack := range packs {
		inst := &store.Instrument{
			Name:        pack.Manifest.Name,
			DisplayName: pack.Manifest.DisplayName,
		}
		if err := repo.Upsert(inst); err != nil {
			return fmt.Errorf("sync pack %q: %w", pack.Manifest.Name, err)
		}

		samples := make(map[string]string, len(pack.Manifest.Samples))
		for pitch, rel := range pack.Manifest.Samples {
			samples[pitch] = filepath.Join(pack.Dir, rel)
		}
		if err := repo.SetSamples(inst.ID, samples); err != nil {
			return fmt.Errorf("sync samples for %q: %w", pack.Manifest.Name, err)
		}
	}

	return nil
}
