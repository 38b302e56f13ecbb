// Package engine implements the gesture-to-pluck interaction engine: the
// per-frame pipeline that fuses hand landmark detections with per-string
// physical state and emits pluck events.
package engine

import (
	"math"
	"time"

	"github.com/huiziwang666/ainfinite-string-piano/internal/capture"
	"github.com/huiziwang666/ainfinite-string-piano/internal/detector"
	"github.com/huiziwang666/ainfinite-string-piano/internal/layout"
)

// Tuning constants. The decay factors are per rendered frame and assume the
// frame loop runs on a fixed-rate ticker.
const (
	// ReachThreshold is the maximum horizontal distance (normalized width
	// units) at which a finger can drag a string's bend.
	ReachThreshold = 0.08

	// PullScale scales the bend magnitude a finger imparts.
	PullScale = 0.8

	// BendDecay is the per-frame spring-back factor applied to bend when no
	// finger is in reach.
	BendDecay = 0.8

	// VibrationImpulse is the amplitude a string snaps to on a pluck.
	VibrationImpulse = 1.0

	// VibrationDecay is the per-frame geometric decay of vibration.
	VibrationDecay = 0.92

	// VibrationRestFloor is the amplitude below which a string counts as at
	// rest and decay stops.
	VibrationRestFloor = 0.01

	// VibrationActivityFloor is the amplitude above which a string is
	// considered mid-pluck and ignores bend input.
	VibrationActivityFloor = 0.1

	// PlayableZoneY is the lower edge of the pluckable zone. The bottom
	// third of the frame is reserved so the player's hand stays visible
	// instead of occluding the controls.
	PlayableZoneY = 0.67

	// DebounceWindow is the minimum time between triggers of one string.
	DebounceWindow = 120 * time.Millisecond

	// DefaultRenderWidth is the pixel width bend magnitudes are scaled to
	// when the config leaves it unset.
	DefaultRenderWidth = 640
)

// PluckEvent is fired when a finger crosses a string. Events are produced
// and consumed within a single frame; the engine keeps no record of them
// beyond the debounce ledger.
type PluckEvent struct {
	StringID int       `json:"stringId"`
	Pitch    string    `json:"pitch"`
	FingerY  float64   `json:"fingerY"`
	At       time.Time `json:"-"`
	AtMs     int64     `json:"triggeredAtMs"`
}

// Source supplies hand landmarks for a frame. fresh is false when the frame
// was already processed; detector.Tracker satisfies this.
type Source interface {
	Detect(frame *capture.Frame) (hands []detector.HandLandmarks, fresh bool, err error)
}

// Config holds engine construction options.
type Config struct {
	// RenderWidth is the stage width in pixels bend offsets are scaled to.
	RenderWidth float64

	// Now supplies the monotonic clock used for the debounce ledger.
	// Defaults to time.Now.
	Now func() time.Time
}

// fingerSlot retains per-hand memory between frames for crossing detection.
// prevX survives a visibility drop, but a crossing requires visibility on
// two consecutive frames, so a reacquired finger gets a re-arm frame before
// it can trigger.
type fingerSlot struct {
	prevX      float64
	hasPrev    bool
	wasVisible bool
}

// trackedFinger is the per-frame view of one hand's index fingertip in
// logical (mirrored) stage coordinates.
type trackedFinger struct {
	x       float64
	y       float64
	visible bool
}

// Engine owns all mutable interaction state: per-string physics, the
// debounce ledger, finger memory, and the coasting landmark cache. It is
// driven by a single goroutine; Tick is one step of the frame loop.
type Engine struct {
	source      Source
	strings     []layout.String
	physics     map[int]*StringState
	lastTrigger map[int]time.Time
	fingers     [detector.MaxHands]fingerSlot
	cache       []detector.HandLandmarks
	renderWidth float64
	now         func() time.Time
}

// New creates an engine over the given string layout.
func New(source Source, strings []layout.String, cfg Config) *Engine {
	width := cfg.RenderWidth
	if width <= 0 {
		width = DefaultRenderWidth
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		source:      source,
		strings:     strings,
		physics:     make(map[int]*StringState),
		lastTrigger: make(map[int]time.Time),
		renderWidth: width,
		now:         now,
	}
}

// Tick runs one frame of the interaction pipeline and returns the pluck
// events fired this frame, if any. A nil frame, a stale frame, or an
// unavailable detector all degrade to coasting on the previous landmarks;
// nothing in here is a fatal path.
func (e *Engine) Tick(frame *capture.Frame) []PluckEvent {
	now := e.now()

	// Step 1: acquire landmarks. A fresh result replaces the cache even
	// when empty (hands gone means the cache is cleared); a stale frame or
	// detector failure coasts on the last known hands.
	if e.source != nil && frame != nil {
		if hands, fresh, err := e.source.Detect(frame); err == nil && fresh {
			e.cache = hands
		}
	}

	var fingers [detector.MaxHands]trackedFinger
	for i := 0; i < detector.MaxHands && i < len(e.cache); i++ {
		tip := e.cache[i].FingerTip()
		fingers[i] = trackedFinger{
			// The camera feed is horizontally flipped relative to the stage.
			x:       1 - tip.X,
			y:       tip.Y,
			visible: true,
		}
	}

	// Vibration decay runs every frame, before this frame's triggers, so a
	// fresh pluck leaves the frame at full amplitude.
	for _, st := range e.physics {
		if st.Vibration > VibrationRestFloor {
			st.Vibration *= VibrationDecay
		}
	}

	// Step 2: bend update per string. Closest pull wins; with no finger in
	// reach the bend springs back toward zero.
	for _, s := range e.strings {
		st := e.state(s.ID)

		var best float64
		found := false
		if st.Vibration < VibrationActivityFloor {
			for _, f := range fingers {
				if !f.visible {
					continue
				}
				dist := f.x - s.XPos
				if math.Abs(dist) >= ReachThreshold {
					continue
				}
				pull := 1 - math.Abs(dist)/ReachThreshold
				candidate := dist * e.renderWidth * pull * PullScale
				if !found || math.Abs(candidate) > math.Abs(best) {
					best = candidate
					found = true
				}
			}
		}

		if found {
			st.Bend = best
		} else {
			st.Bend *= BendDecay
		}
	}

	// Step 3: crossing detection per finger per string, gated by the
	// playable zone and the per-string debounce ledger.
	var events []PluckEvent
	for i := range fingers {
		f := fingers[i]
		slot := e.fingers[i]
		if !f.visible || !slot.wasVisible || !slot.hasPrev {
			continue
		}
		if f.y > PlayableZoneY {
			continue
		}

		for _, s := range e.strings {
			crossedRight := slot.prevX < s.XPos && s.XPos <= f.x
			crossedLeft := slot.prevX > s.XPos && s.XPos >= f.x
			if !crossedRight && !crossedLeft {
				continue
			}

			// Debounce is per string, shared across fingers, so a second
			// finger cannot double-fire a string inside its cooldown.
			if last, ok := e.lastTrigger[s.ID]; ok && now.Sub(last) <= DebounceWindow {
				continue
			}
			e.lastTrigger[s.ID] = now

			// The string snaps cleanly into vibration.
			e.state(s.ID).Bend = 0

			events = append(events, PluckEvent{
				StringID: s.ID,
				Pitch:    s.Pitch,
				FingerY:  f.y,
				At:       now,
				AtMs:     now.UnixMilli(),
			})
		}
	}

	// Step 4: commit previous-position memory. prevX is retained on loss
	// so the slot state stays coherent, but wasVisible drops, which forces
	// the re-arm frame.
	for i := range fingers {
		if fingers[i].visible {
			e.fingers[i].prevX = fingers[i].x
			e.fingers[i].hasPrev = true
			e.fingers[i].wasVisible = true
		} else {
			e.fingers[i].wasVisible = false
		}
	}

	// Step 5: apply vibration impulses for this frame's plucks.
	for _, ev := range events {
		e.state(ev.StringID).Vibration = VibrationImpulse
	}

	return events
}

// Reset clears the landmark cache and finger memory so a capture restart
// begins from a clean detection state. Physics keeps decaying naturally and
// the debounce ledger survives, so a stop/start cannot re-fire a string
// inside its cooldown.
func (e *Engine) Reset() {
	e.cache = nil
	for i := range e.fingers {
		e.fingers[i] = fingerSlot{}
	}
}

// SetSource swaps the landmark source and clears detection state, since
// cached landmarks from the old source are meaningless for the new one.
func (e *Engine) SetSource(source Source) {
	e.source = source
	e.Reset()
}
