package detector

import (
	"sync"

	"github.com/huiziwang666/ainfinite-string-piano/internal/capture"
)

// MockDetector is a test implementation of the Detector interface.
// It serves either a fixed result or a scripted per-call sequence, so tests
// can drive the interaction engine with deterministic fingertip motion
// without a camera or model.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	script [][]HandLandmarks
	pos    int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets a fixed result returned by every Detect call.
// Clears any scripted sequence.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.script = nil
	m.pos = 0
}

// SetScript sets a per-call result sequence. Once the script is exhausted,
// Detect keeps returning the final entry.
func (m *MockDetector) SetScript(script [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
	m.pos = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands, the next scripted result, or the
// configured error.
func (m *MockDetector) Detect(frame *capture.Frame) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	if m.script != nil {
		if m.pos >= len(m.script) {
			return m.script[len(m.script)-1], nil
		}
		hands := m.script[m.pos]
		m.pos++
		return hands, nil
	}

	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// HandWithFingerAt builds a plausible right hand whose index fingertip sits
// at (x, y) in raw (un-mirrored) normalized image coordinates. The rest of
// the index chain and the wrist trail below the tip.
func HandWithFingerAt(x, y float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: x, Y: y + 0.25, Z: 0.0}
	landmarks.Points[IndexMCP] = Point3D{X: x, Y: y + 0.15, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: x, Y: y + 0.10, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: x, Y: y + 0.05, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: x, Y: y, Z: 0.0}

	// Remaining fingers curled near the palm; the engine ignores them.
	for i := ThumbCMC; i <= ThumbTip; i++ {
		landmarks.Points[i] = Point3D{X: x + 0.05, Y: y + 0.2, Z: -0.02}
	}
	for i := MiddleMCP; i <= PinkyTip; i++ {
		landmarks.Points[i] = Point3D{X: x - 0.03, Y: y + 0.18, Z: -0.03}
	}

	return landmarks
}
