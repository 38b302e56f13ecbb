package instrument

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huiziwang666/ainfinite-string-piano/internal/store"
)

func writePack(t *testing.T, root, dir, manifest string) {
	t.Helper()

	packDir := filepath.Join(root, dir)
	if err := os.MkdirAll(packDir, 0755); err != nil {
		t.Fatalf("create pack dir: %v", err)
	}
	if manifest == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(packDir, "instrument.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()

	writePack(t, root, "harp", `{
		"name": "harp",
		"displayName": "Concert Harp",
		"samples": {"C3": "samples/c3.wav"}
	}`)
	writePack(t, root, "broken", `{not json`)
	writePack(t, root, "no-manifest", "")
	writePack(t, root, "unnamed", `{"displayName": "Anonymous"}`)

	m := NewManager(root)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	packs := m.List()
	if len(packs) != 1 {
		t.Fatalf("discovered %d packs, want 1", len(packs))
	}

	pack, err := m.Get("harp")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pack.Manifest.DisplayName != "Concert Harp" {
		t.Errorf("DisplayName = %q, want Concert Harp", pack.Manifest.DisplayName)
	}
	if pack.Dir != filepath.Join(root, "harp") {
		t.Errorf("Dir = %q, want pack directory", pack.Dir)
	}
}

func TestManager_DiscoverMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"))
	if err := m.Discover(); err != nil {
		t.Errorf("Discover() on missing dir error = %v, want nil", err)
	}
	if len(m.List()) != 0 {
		t.Error("expected no packs from a missing directory")
	}
}

func TestManager_GetNotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	m.Discover()

	if _, err := m.Get("missing"); !errors.Is(err, ErrPackNotFound) {
		t.Errorf("Get() error = %v, want ErrPackNotFound", err)
	}
}

func TestManager_Sync(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "harp", `{
		"name": "harp",
		"displayName": "Concert Harp",
		"samples": {"C3": "samples/c3.wav", "D3": "samples/d3.wav"}
	}`)

	m := NewManager(root)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	s, err := store.New(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	if err := m.Sync(s); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	samples, err := s.Instruments().Samples("harp")
	if err != nil {
		t.Fatalf("Samples() error = %v", err)
	}
	want := filepath.Join(root, "harp", "samples/c3.wav")
	if samples["C3"] != want {
		t.Errorf("C3 sample = %q, want %q", samples["C3"], want)
	}

	// Sync is idempotent.
	if err := m.Sync(s); err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	list, err := s.Instruments().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("catalog has %d instruments after re-sync, want 1", len(list))
	}
}
