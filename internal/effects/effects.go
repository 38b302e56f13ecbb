// Package effects derives the visual feedback state from pluck events: note
// counting, celebration milestones, particle bursts, and a spring-smoothed
// excitement level for the mascot readout.
package effects

import (
	"sync"

	"github.com/charmbracelet/harmonica"

	"github.com/huiziwang666/ainfinite-string-piano/internal/engine"
	"github.com/huiziwang666/ainfinite-string-piano/internal/layout"
)

const (
	// DefaultMilestone is the note-count interval for celebration effects.
	DefaultMilestone = 25

	// excitementPerPluck is how much each pluck raises the excitement
	// target before clamping.
	excitementPerPluck = 0.25

	// targetRelax is the per-frame decay of the excitement target.
	targetRelax = 0.95

	springFrequency = 6.0
	springDamping   = 0.8
)

// Burst describes one particle burst to spawn at a plucked string.
type Burst struct {
	StringID int     `json:"stringId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
}

// State is the per-frame effects output handed to renderers.
type State struct {
	NoteCount  int     `json:"noteCount"`
	Excitement float64 `json:"excitement"`
	Milestone  bool    `json:"milestone"`
	Bursts     []Burst `json:"bursts,omitempty"`
}

// Board accumulates effect state across frames. It is an event consumer
// only: it never touches engine-owned state.
type Board struct {
	mu            sync.Mutex
	spring        harmonica.Spring
	excitement    float64
	excitementVel float64
	target        float64
	noteCount     int
	milestone     int
	strings       map[int]layout.String
}

// NewBoard creates a Board stepped at the given frame rate, with
// celebrations every milestone notes.
func NewBoard(fps int, milestone int) *Board {
	if fps <= 0 {
		fps = 30
	}
	if milestone <= 0 {
		milestone = DefaultMilestone
	}
	return &Board{
		spring:    harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
		milestone: milestone,
		strings:   make(map[int]layout.String),
	}
}

// SetLayout tells the board where strings sit so bursts can be placed.
func (b *Board) SetLayout(strings []layout.String) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.strings = make(map[int]layout.String, len(strings))
	for _, s := range strings {
		b.strings[s.ID] = s
	}
}

// Observe consumes one frame's pluck events and returns the effects state
// for that frame. Called once per frame from the frame loop.
func (b *Board) Observe(events []engine.PluckEvent) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	milestone := false
	var bursts []Burst

	for _, ev := range events {
		b.noteCount++
		if b.noteCount%b.milestone == 0 {
			milestone = true
		}

		b.target += excitementPerPluck

		burst := Burst{StringID: ev.StringID, Y: ev.FingerY}
		if s, ok := b.strings[ev.StringID]; ok {
			burst.X = s.XPos
			burst.Color = s.Color
		}
		bursts = append(bursts, burst)
	}

	if b.target > 1 {
		b.target = 1
	}
	b.target *= targetRelax

	b.excitement, b.excitementVel = b.spring.Update(b.excitement, b.excitementVel, b.target)

	return State{
		NoteCount:  b.noteCount,
		Excitement: b.excitement,
		Milestone:  milestone,
		Bursts:     bursts,
	}
}

// NoteCount returns the total plucks observed.
func (b *Board) NoteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.noteCount
}

// Reset zeroes counts and excitement.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.noteCount = 0
	b.excitement = 0
	b.excitementVel = 0
	b.target = 0
}
