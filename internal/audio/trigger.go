// Package audio turns pluck events into note playback messages. Actual sound
// rendering happens in the client; this service resolves samples, gates
// playback on the user-initiated resume, and manages instrument loading.
package audio

import (
	"log"
	"sync"
)

// NoteMessage is the playback instruction delivered to the sink. When Synth
// is set the client falls back to a synthesized tone at Frequency.
type NoteMessage struct {
	Pitch      string  `json:"pitch"`
	Frequency  float64 `json:"frequency"`
	Instrument string  `json:"instrument"`
	SamplePath string  `json:"samplePath,omitempty"`
	Synth      bool    `json:"synth"`
}

// Sink receives note messages for playback. Implementations must not block.
type Sink interface {
	PlayNote(msg NoteMessage)
}

// Catalog resolves instrument samples by pitch.
type Catalog interface {
	// Samples returns the pitch-to-file mapping for an instrument.
	Samples(instrument string) (map[string]string, error)
}

// Trigger is the audio trigger service. PlayNote is fire-and-forget;
// LoadInstrument is asynchronous and generation-counted so a superseded load
// can never clobber a newer selection.
type Trigger struct {
	sink    Sink
	catalog Catalog

	mu         sync.Mutex
	resumed    bool
	instrument string
	samples    map[string]string
	loadGen    uint64
}

// NewTrigger creates a Trigger delivering notes to sink and resolving
// samples from catalog. Both may be nil in tests.
func NewTrigger(sink Sink, catalog Catalog) *Trigger {
	return &Trigger{
		sink:    sink,
		catalog: catalog,
	}
}

// Resume unlocks playback. Platform audio permission gating requires a
// user-initiated action before any sound; notes played earlier are dropped.
func (t *Trigger) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resumed = true
}

// Resumed reports whether playback has been unlocked.
func (t *Trigger) Resumed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resumed
}

// Instrument returns the currently selected instrument name.
func (t *Trigger) Instrument() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.instrument
}

// LoadInstrument selects an instrument and loads its sample mapping in the
// background. If another selection supersedes this one before the load
// finishes, the result is discarded. Best effort: a failed load logs and
// leaves the instrument on synthesized fallback.
func (t *Trigger) LoadInstrument(name string) {
	t.mu.Lock()
	t.loadGen++
	gen := t.loadGen
	t.instrument = name
	t.samples = nil
	catalog := t.catalog
	t.mu.Unlock()

	if catalog == nil {
		return
	}

	go func() {
		samples, err := catalog.Samples(name)
		if err != nil {
			log.Printf("load instrument %q: %v (falling back to synth)", name, err)
			return
		}

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.loadGen != gen {
			// A newer selection won; drop this load.
			return
		}
		t.samples = samples
	}()
}

// PlayNote plays a pitch on the current instrument. It never blocks: the
// sample lookup is an in-memory map hit and the sink contract is
// non-blocking. Notes before Resume are dropped; unknown pitches and
// missing samples degrade to the synthesized fallback tone.
func (t *Trigger) PlayNote(pitch string) {
	t.mu.Lock()
	if !t.resumed {
		t.mu.Unlock()
		return
	}
	instrument := t.instrument
	samplePath, hasSample := t.samples[pitch]
	sink := t.sink
	t.mu.Unlock()

	if sink == nil {
		return
	}

	freq, err := NoteFrequency(pitch)
	if err != nil {
		log.Printf("play note: %v", err)
		return
	}

	sink.PlayNote(NoteMessage{
		Pitch:      pitch,
		Frequency:  freq,
		Instrument: instrument,
		SamplePath: samplePath,
		Synth:      !hasSample,
	})
}
