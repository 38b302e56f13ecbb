package audio

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// recordingSink collects delivered note messages.
type recordingSink struct {
	mu    sync.Mutex
	notes []NoteMessage
}

func (s *recordingSink) PlayNote(msg NoteMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, msg)
}

func (s *recordingSink) all() []NoteMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NoteMessage(nil), s.notes...)
}

// blockingCatalog serves sample maps, optionally holding each load until
// released so tests can interleave loads deterministically.
type blockingCatalog struct {
	samples map[string]map[string]string
	err     error
	gate    chan struct{}
}

func (c *blockingCatalog) Samples(instrument string) (map[string]string, error) {
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.samples[instrument], nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		pitch string
		want  float64
	}{
		{pitch: "A4", want: 440},
		{pitch: "C4", want: 261.6255653},
		{pitch: "C3", want: 130.8127827},
		{pitch: "B3", want: 246.9416506},
		{pitch: "F#3", want: 184.9972114},
		{pitch: "Bb2", want: 116.5409404},
	}

	for _, tt := range tests {
		t.Run(tt.pitch, func(t *testing.T) {
			got, err := NoteFrequency(tt.pitch)
			if err != nil {
				t.Fatalf("NoteFrequency(%q) error = %v", tt.pitch, err)
			}
			if math.Abs(got-tt.want) > 1e-4 {
				t.Errorf("NoteFrequency(%q) = %f, want %f", tt.pitch, got, tt.want)
			}
		})
	}
}

func TestNoteFrequency_Invalid(t *testing.T) {
	for _, pitch := range []string{"", "C", "H4", "C#", "Cx4"} {
		if _, err := NoteFrequency(pitch); err == nil {
			t.Errorf("NoteFrequency(%q) succeeded, want error", pitch)
		}
	}
}

func TestTrigger_ResumeGate(t *testing.T) {
	sink := &recordingSink{}
	trigger := NewTrigger(sink, nil)

	trigger.PlayNote("C4")
	if notes := sink.all(); len(notes) != 0 {
		t.Fatalf("note before Resume reached the sink: %v", notes)
	}

	trigger.Resume()
	trigger.PlayNote("C4")

	notes := sink.all()
	if len(notes) != 1 {
		t.Fatalf("got %d notes after Resume, want 1", len(notes))
	}
	if !notes[0].Synth {
		t.Error("note without a loaded sample should fall back to synth")
	}
	if math.Abs(notes[0].Frequency-261.6255653) > 1e-4 {
		t.Errorf("C4 frequency = %f", notes[0].Frequency)
	}
}

func TestTrigger_SampleResolution(t *testing.T) {
	sink := &recordingSink{}
	catalog := &blockingCatalog{
		samples: map[string]map[string]string{
			"harp": {"C4": "harp/c4.wav"},
		},
	}
	trigger := NewTrigger(sink, catalog)
	trigger.Resume()

	trigger.LoadInstrument("harp")
	waitFor(t, func() bool {
		trigger.PlayNote("C4")
		notes := sink.all()
		return len(notes) > 0 && !notes[len(notes)-1].Synth
	})

	notes := sink.all()
	last := notes[len(notes)-1]
	if last.SamplePath != "harp/c4.wav" {
		t.Errorf("SamplePath = %q, want harp/c4.wav", last.SamplePath)
	}
	if last.Instrument != "harp" {
		t.Errorf("Instrument = %q, want harp", last.Instrument)
	}

	// Pitches missing from the sample map still degrade to synth.
	trigger.PlayNote("D4")
	notes = sink.all()
	if last := notes[len(notes)-1]; !last.Synth {
		t.Error("missing sample should fall back to synth")
	}
}

func TestTrigger_SupersededLoadDiscarded(t *testing.T) {
	sink := &recordingSink{}
	gate := make(chan struct{})
	catalog := &blockingCatalog{
		samples: map[string]map[string]string{
			"harp": {"C4": "harp/c4.wav"},
			"koto": {"C4": "koto/c4.wav"},
		},
		gate: gate,
	}
	trigger := NewTrigger(sink, catalog)
	trigger.Resume()

	// The first load blocks on the gate; the second supersedes it before
	// either completes.
	trigger.LoadInstrument("harp")
	trigger.LoadInstrument("koto")

	close(gate)

	waitFor(t, func() bool {
		trigger.PlayNote("C4")
		notes := sink.all()
		return len(notes) > 0 && !notes[len(notes)-1].Synth
	})

	notes := sink.all()
	last := notes[len(notes)-1]
	if last.SamplePath != "koto/c4.wav" {
		t.Errorf("SamplePath = %q, want koto/c4.wav (superseded load must not win)", last.SamplePath)
	}
	if trigger.Instrument() != "koto" {
		t.Errorf("Instrument() = %q, want koto", trigger.Instrument())
	}
}

func TestTrigger_LoadFailureFallsBackToSynth(t *testing.T) {
	sink := &recordingSink{}
	catalog := &blockingCatalog{err: errors.New("catalog offline")}
	trigger := NewTrigger(sink, catalog)
	trigger.Resume()

	trigger.LoadInstrument("harp")
	time.Sleep(20 * time.Millisecond)

	trigger.PlayNote("C4")
	notes := sink.all()
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if !notes[0].Synth {
		t.Error("failed instrument load should leave playback on synth fallback")
	}
}
