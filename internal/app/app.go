// Package app wires the capture, detection, interaction, and playback
// components into the running string piano application.
package app

import (
	"log"
	"sync"

	"github.com/huiziwang666/ainfinite-string-piano/internal/audio"
	"github.com/huiziwang666/ainfinite-string-piano/internal/capture"
	"github.com/huiziwang666/ainfinite-string-piano/internal/detector"
	"github.com/huiziwang666/ainfinite-string-piano/internal/effects"
	"github.com/huiziwang666/ainfinite-string-piano/internal/engine"
	"github.com/huiziwang666/ainfinite-string-piano/internal/layout"
	"github.com/huiziwang666/ainfinite-string-piano/internal/server/api"
	"github.com/huiziwang666/ainfinite-string-piano/internal/store"
)

// Frame loop timing.
const (
	// FrameRate is the fixed tick rate of the interaction loop. The
	// engine's per-frame decay constants are tuned against it.
	FrameRate = 30
)

// Defaults for the configuration surface.
const (
	DefaultStringCount = 12
	DefaultPitchRange  = layout.RangeMid
)

// Publisher receives the per-frame state fan-out; the WebSocket state
// broadcaster satisfies it.
type Publisher interface {
	Publish(v interface{})
}

// FrameUpdate is the consolidated per-frame snapshot handed to consumers:
// string physics for rendering, this frame's plucks, effects state, and the
// notes to play.
type FrameUpdate struct {
	Timestamp int64                   `json:"timestamp"`
	Strings   []engine.StringSnapshot `json:"strings"`
	Plucks    []engine.PluckEvent     `json:"plucks,omitempty"`
	Effects   effects.State           `json:"effects"`
	Notes     []audio.NoteMessage     `json:"notes,omitempty"`
}

// Config holds configuration options for the application.
type Config struct {
	Store       *store.Store
	CameraID    int
	StringCount int
	PitchRange  layout.Range
	Instrument  string
	RenderWidth float64
	Publisher   Publisher
}

// App is the application orchestrator. It owns the camera, the hand
// tracker, the interaction engine, the audio trigger, and the effects
// board, and drives them from a single frame loop goroutine.
type App struct {
	config    Config
	camera    capture.Camera
	tracker   *detector.Tracker
	engine    *engine.Engine
	trigger   *audio.Trigger
	board     *effects.Board
	notes     *noteCollector
	publisher Publisher
	onNote    func(pitch string)

	current api.Config
	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
}

// noteCollector buffers note messages emitted during a frame so they ride
// out with that frame's update.
type noteCollector struct {
	mu    sync.Mutex
	notes []audio.NoteMessage
}

func (c *noteCollector) PlayNote(msg audio.NoteMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, msg)
}

func (c *noteCollector) drain() []audio.NoteMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	notes := c.notes
	c.notes = nil
	return notes
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.StringCount == 0 {
		config.StringCount = DefaultStringCount
	}
	if config.PitchRange == "" {
		config.PitchRange = DefaultPitchRange
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.CameraID),
		board:     effects.NewBoard(FrameRate, effects.DefaultMilestone),
		notes:     &noteCollector{},
		publisher: config.Publisher,
		current: api.Config{
			StringCount: config.StringCount,
			PitchRange:  string(config.PitchRange),
			Instrument:  config.Instrument,
		},
	}

	// Try MediaPipe first, fall back to the mock detector
	var d detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		d = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		d = detector.NewMockDetector()
	}
	a.tracker = detector.NewTracker(d)

	strings := layout.Generate(config.StringCount, config.PitchRange)
	a.engine = engine.New(a.tracker, strings, engine.Config{
		RenderWidth: config.RenderWidth,
	})
	a.board.SetLayout(strings)

	var catalog audio.Catalog
	if config.Store != nil {
		catalog = config.Store.Instruments()
	}
	a.trigger = audio.NewTrigger(a.notes, catalog)
	if config.Instrument != "" {
		a.trigger.LoadInstrument(config.Instrument)
	}

	return a
}

// SetEnabled enables or disables the interaction loop without stopping
// capture.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether the interaction loop is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector swaps the hand detector implementation.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker = detector.NewTracker(d)
	a.engine.SetSource(a.tracker)
}

// SetCamera swaps the camera implementation.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetPublisher installs the consumer receiving per-frame updates.
func (a *App) SetPublisher(p Publisher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publisher = p
}

// OnNote registers a callback invoked for every pluck, used by the tray to
// show the last note played.
func (a *App) OnNote(fn func(pitch string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onNote = fn
}

// Config returns the current configuration surface.
func (a *App) Config() api.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Apply installs a new configuration: the string layout is re-derived
// deterministically and an instrument change kicks off a background load.
// Physics entries for vanished string ids are orphaned, not destroyed.
func (a *App) Apply(cfg api.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if cfg.StringCount != a.current.StringCount || cfg.PitchRange != a.current.PitchRange {
		strings := layout.Generate(cfg.StringCount, layout.Range(cfg.PitchRange))
		a.engine.SetLayout(strings)
		a.board.SetLayout(strings)
	}

	if cfg.Instrument != a.current.Instrument {
		a.trigger.LoadInstrument(cfg.Instrument)
	}

	a.current = cfg
	return nil
}

// Resume unlocks audio playback in response to a user action.
func (a *App) Resume() {
	a.trigger.Resume()
}

// Trigger returns the audio trigger service.
func (a *App) Trigger() *audio.Trigger {
	return a.trigger
}

// Board returns the effects board.
func (a *App) Board() *effects.Board {
	return a.board
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(FrameRate)

	a.stopCh = make(chan struct{})
	go a.runLoop(a.stopCh)

	log.Println("Interaction loop started")
	return nil
}

// Stop halts the frame loop, closes the camera, and synchronously clears
// all cached landmark and finger-position state so a restart begins from a
// clean detection baseline.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.engine.Reset()
	a.tracker.Reset()

	log.Println("Interaction loop stopped")
}

// Close releases the detector resources. The app cannot be restarted after
// Close.
func (a *App) Close() {
	a.Stop()
	if err := a.tracker.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
}
