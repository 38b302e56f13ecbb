package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"instruments", "instrument_samples"} {
		var name string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing after migrations: %v", table, err)
		}
	}
}

func TestInstrumentRepo_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	inst := &Instrument{Name: "harp", DisplayName: "Concert Harp"}
	if err := s.Instruments().Create(inst); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if inst.ID == "" {
		t.Fatal("Create should assign an ID")
	}

	got, err := s.Instruments().GetByName("harp")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.ID != inst.ID || got.DisplayName != "Concert Harp" {
		t.Errorf("GetByName() = %+v, want %+v", got, inst)
	}
}

func TestInstrumentRepo_GetByNameNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Instruments().GetByName("missing")
	if !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("GetByName() error = %v, want ErrInstrumentNotFound", err)
	}
}

func TestInstrumentRepo_Upsert(t *testing.T) {
	s := newTestStore(t)
	repo := s.Instruments()

	first := &Instrument{Name: "koto"}
	if err := repo.Upsert(first); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}

	second := &Instrument{Name: "koto", DisplayName: "Koto (13 strings)"}
	if err := repo.Upsert(second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Upsert created a new ID %q, want existing %q", second.ID, first.ID)
	}

	got, err := repo.GetByName("koto")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.DisplayName != "Koto (13 strings)" {
		t.Errorf("DisplayName = %q, want updated value", got.DisplayName)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() has %d instruments, want 1", len(list))
	}
}

func TestInstrumentRepo_Samples(t *testing.T) {
	s := newTestStore(t)
	repo := s.Instruments()

	inst := &Instrument{Name: "harp"}
	if err := repo.Create(inst); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	samples := map[string]string{
		"C3": "harp/c3.wav",
		"D3": "harp/d3.wav",
	}
	if err := repo.SetSamples(inst.ID, samples); err != nil {
		t.Fatalf("SetSamples() error = %v", err)
	}

	got, err := repo.Samples("harp")
	if err != nil {
		t.Fatalf("Samples() error = %v", err)
	}
	if len(got) != 2 || got["C3"] != "harp/c3.wav" || got["D3"] != "harp/d3.wav" {
		t.Errorf("Samples() = %v, want %v", got, samples)
	}

	// SetSamples replaces the previous mapping.
	if err := repo.SetSamples(inst.ID, map[string]string{"E3": "harp/e3.wav"}); err != nil {
		t.Fatalf("SetSamples() replace error = %v", err)
	}
	got, err = repo.Samples("harp")
	if err != nil {
		t.Fatalf("Samples() error = %v", err)
	}
	if len(got) != 1 || got["E3"] != "harp/e3.wav" {
		t.Errorf("Samples() after replace = %v", got)
	}
}

func TestInstrumentRepo_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	repo := s.Instruments()

	inst := &Instrument{Name: "harp"}
	repo.Create(inst)
	repo.SetSamples(inst.ID, map[string]string{"C3": "harp/c3.wav"})

	if err := repo.Delete(inst.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.GetByName("harp"); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("GetByName() after delete error = %v, want ErrInstrumentNotFound", err)
	}

	var count int
	s.DB().QueryRow(`SELECT COUNT(*) FROM instrument_samples`).Scan(&count)
	if count != 0 {
		t.Errorf("samples remaining after cascade delete: %d", count)
	}

	if err := repo.Delete(inst.ID); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("Delete() of missing instrument error = %v, want ErrInstrumentNotFound", err)
	}
}
