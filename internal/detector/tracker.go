package detector

import (
	"errors"
	"sync"

	"github.com/huiziwang666/ainfinite-string-piano/internal/capture"
)

// ErrDetectorUnavailable is returned when the underlying detector is not
// ready or fails on a frame. Callers treat it as "no hands visible this
// frame"; it never aborts the frame loop.
var ErrDetectorUnavailable = errors.New("hand detector unavailable")

// Tracker wraps a Detector and deduplicates work by frame identity:
// inference runs at most once per new frame PTS. Calling Detect again with
// an unchanged PTS reports fresh=false without touching the detector, so
// the detector need not keep pace with the display refresh.
type Tracker struct {
	detector Detector
	mu       sync.Mutex
	lastPTS  int64
	primed   bool
}

// NewTracker creates a Tracker around the given detector.
func NewTracker(d Detector) *Tracker {
	return &Tracker{detector: d}
}

// Detect runs hand detection for the frame. When the frame's PTS matches the
// previously processed one, it returns (nil, false, nil) without invoking the
// detector. Detector failures surface as ErrDetectorUnavailable.
func (t *Tracker) Detect(frame *capture.Frame) ([]HandLandmarks, bool, error) {
	if frame == nil {
		return nil, false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.detector == nil {
		return nil, false, ErrDetectorUnavailable
	}

	if t.primed && frame.PTS == t.lastPTS {
		return nil, false, nil
	}

	hands, err := t.detector.Detect(frame)
	if err != nil {
		return nil, false, ErrDetectorUnavailable
	}

	t.lastPTS = frame.PTS
	t.primed = true

	if len(hands) > MaxHands {
		hands = hands[:MaxHands]
	}
	return hands, true, nil
}

// Reset clears the dedup bookkeeping so the next frame is always treated as
// new. Called when capture stops, so a restart begins from a clean state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primed = false
	t.lastPTS = 0
}

// Close releases the underlying detector.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detector == nil {
		return nil
	}
	return t.detector.Close()
}
