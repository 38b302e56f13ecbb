package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInstrumentNotFound is returned when a requested instrument does not exist.
var ErrInstrumentNotFound = errors.New("instrument not found")

// Instrument represents a playable instrument in the catalog.
type Instrument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InstrumentRepo provides access to the instrument catalog.
type InstrumentRepo struct {
	db *sql.DB
}

// Instruments returns the instrument repository.
func (s *Store) Instruments() *InstrumentRepo {
	return &InstrumentRepo{db: s.db}
}

// Create inserts a new instrument. A missing ID is generated.
func (r *InstrumentRepo) Create(inst *Instrument) error {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	if inst.DisplayName == "" {
		inst.DisplayName = inst.Name
	}

	_, err := r.db.Exec(
		`INSERT INTO instruments (id, name, display_name) VALUES (?, ?, ?)`,
		inst.ID, inst.Name, inst.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("create instrument: %w", err)
	}
	return nil
}

// Upsert creates the instrument or refreshes its display name, returning
// the stored record either way.
func (r *InstrumentRepo) Upsert(inst *Instrument) error {
	existing, err := r.GetByName(inst.Name)
	if errors.Is(err, ErrInstrumentNotFound) {
		return r.Create(inst)
	}
	if err != nil {
		return err
	}

	inst.ID = existing.ID
	if inst.DisplayName == "" {
		inst.DisplayName = inst.Name
	}
	_, err = r.db.Exec(
		`UPDATE instruments SET display_name = ? WHERE id = ?`,
		inst.DisplayName, inst.ID,
	)
	if err != nil {
		return fmt.Errorf("update instrument: %w", err)
	}
	return nil
}

// List returns all instruments ordered by name.
func (r *InstrumentRepo) List() ([]Instrument, error) {
	rows, err := r.db.Query(
		`SELECT id, name, display_name, created_at FROM instruments ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	var instruments []Instrument
	for rows.Next() {
		var inst Instrument
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.DisplayName, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		instruments = append(instruments, inst)
	}
	return instruments, rows.Err()
}

// GetByName looks up an instrument by its unique name.
func (r *InstrumentRepo) GetByName(name string) (*Instrument, error) {
	var inst Instrument
	err := r.db.QueryRow(
		`SELECT id, name, display_name, created_at FROM instruments WHERE name = ?`,
		name,
	).Scan(&inst.ID, &inst.Name, &inst.DisplayName, &inst.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInstrumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get instrument: %w", err)
	}
	return &inst, nil
}

// Delete removes an instrument and, via cascade, its samples.
func (r *InstrumentRepo) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM instruments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete instrument: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrInstrumentNotFound
	}
	return nil
}

// SetSamples replaces the pitch-to-file mapping for an instrument.
func (r *InstrumentRepo) SetSamples(instrumentID string, samples map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("set samples: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM instrument_samples WHERE instrument_id = ?`, instrumentID,
	); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}

	for pitch, path := range samples {
		if _, err := tx.Exec(
			`INSERT INTO instrument_samples (instrument_id, pitch, path) VALUES (?, ?, ?)`,
			instrumentID, pitch, path,
		); err != nil {
			return fmt.Errorf("insert sample %s: %w", pitch, err)
		}
	}

	return tx.Commit()
}

// Samples returns the pitch-to-file mapping for an instrument by name.
// Satisfies the audio trigger's catalog interface.
func (r *InstrumentRepo) Samples(name string) (map[string]string, error) {
	inst, err := r.GetByName(name)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT pitch, path FROM instrument_samples WHERE instrument_id = ?`,
		inst.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()

	samples := make(map[string]string)
	for rows.Next() {
		var pitch, path string
		if err := rows.Scan(&pitch, &path); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples[pitch] = path
	}
	return samples, rows.Err()
}
