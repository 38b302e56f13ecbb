package app

import (
	"log"
	"time"
)

// runLoop drives the interaction engine at the fixed frame rate until
// stopCh closes. The engine and physics are only touched from this
// goroutine and from Apply/Stop, both of which hold the app mutex.
func (a *App) runLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.step()
		}
	}
}

// step processes one frame: read, tick the engine, trigger notes, and
// publish the consolidated update.
func (a *App) step() {
	a.mu.Lock()
	if !a.enabled {
		a.mu.Unlock()
		return
	}
	camera := a.camera
	publisher := a.publisher
	a.mu.Unlock()

	frame, err := camera.ReadFrame()
	if err != nil {
		// Transient read failures are expected during device warm-up.
		return
	}

	a.mu.Lock()
	events := a.engine.Tick(frame)
	strings := a.engine.Snapshot()
	onNote := a.onNote
	a.mu.Unlock()
	frame.Close()

	for _, ev := range events {
		a.trigger.PlayNote(ev.Pitch)
		if onNote != nil {
			onNote(ev.Pitch)
		}
	}

	fx := a.board.Observe(events)
	if fx.Milestone {
		log.Printf("Milestone reached: %d notes played", fx.NoteCount)
	}

	if publisher != nil {
		publisher.Publish(FrameUpdate{
			Timestamp: time.Now().UnixMilli(),
			Strings:   strings,
			Plucks:    events,
			Effects:   fx,
			Notes:     a.notes.drain(),
		})
	}
}
