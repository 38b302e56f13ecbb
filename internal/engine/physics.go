package engine

import "github.com/huiziwang666/ainfinite-string-piano/internal/layout"

// StringState is the mutable physics record for one string. Vibration decays
// monotonically toward zero absent a new pluck; bend is recomputed or decayed
// every frame and never grows without finger input.
type StringState struct {
	Bend      float64
	Vibration float64
}

// AtRest reports whether the string has settled enough to take bend input.
func (s StringState) AtRest() bool {
	return s.Vibration <= VibrationRestFloor
}

// StringSnapshot is the read-only per-string view handed to renderers each
// frame: the descriptor plus the current physics.
type StringSnapshot struct {
	ID        int     `json:"id"`
	Pitch     string  `json:"pitch"`
	Color     string  `json:"color"`
	XPos      float64 `json:"xPos"`
	Bend      float64 `json:"bend"`
	Vibration float64 `json:"vibration"`
}

// state returns the physics record for a string id, creating it lazily on
// first sight.
func (e *Engine) state(id int) *StringState {
	st, ok := e.physics[id]
	if !ok {
		st = &StringState{}
		e.physics[id] = st
	}
	return st
}

// State returns a copy of one string's physics record.
func (e *Engine) State(id int) StringState {
	if st, ok := e.physics[id]; ok {
		return *st
	}
	return StringState{}
}

// Snapshot returns the current layout with physics, in layout order.
func (e *Engine) Snapshot() []StringSnapshot {
	snap := make([]StringSnapshot, len(e.strings))
	for i, s := range e.strings {
		st := e.State(s.ID)
		snap[i] = StringSnapshot{
			ID:        s.ID,
			Pitch:     s.Pitch,
			Color:     s.Color,
			XPos:      s.XPos,
			Bend:      st.Bend,
			Vibration: st.Vibration,
		}
	}
	return snap
}

// Layout returns the string descriptors the engine currently plays.
func (e *Engine) Layout() []layout.String {
	return e.strings
}

// SetLayout swaps the string layout, e.g. after a string count or pitch
// range change. Physics entries for ids no longer present are orphaned and
// ignored; surviving ids keep their state.
func (e *Engine) SetLayout(strings []layout.String) {
	e.strings = strings
}
