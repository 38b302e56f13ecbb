package effects

import (
	"testing"

	"github.com/huiziwang666/ainfinite-string-piano/internal/engine"
	"github.com/huiziwang666/ainfinite-string-piano/internal/layout"
)

func pluck(stringID int, y float64) engine.PluckEvent {
	return engine.PluckEvent{StringID: stringID, FingerY: y}
}

func TestBoard_CountsNotes(t *testing.T) {
	board := NewBoard(30, DefaultMilestone)

	board.Observe([]engine.PluckEvent{pluck(0, 0.3), pluck(1, 0.3)})
	state := board.Observe([]engine.PluckEvent{pluck(2, 0.3)})

	if state.NoteCount != 3 {
		t.Errorf("NoteCount = %d, want 3", state.NoteCount)
	}
	if board.NoteCount() != 3 {
		t.Errorf("NoteCount() = %d, want 3", board.NoteCount())
	}
}

func TestBoard_MilestoneFlag(t *testing.T) {
	board := NewBoard(30, 5)

	for i := 0; i < 4; i++ {
		state := board.Observe([]engine.PluckEvent{pluck(0, 0.3)})
		if state.Milestone {
			t.Fatalf("note %d flagged a milestone early", i+1)
		}
	}

	state := board.Observe([]engine.PluckEvent{pluck(0, 0.3)})
	if !state.Milestone {
		t.Error("5th note should flag the milestone")
	}

	state = board.Observe([]engine.PluckEvent{pluck(0, 0.3)})
	if state.Milestone {
		t.Error("6th note should not flag a milestone")
	}
}

func TestBoard_BurstsCarryStringDescriptor(t *testing.T) {
	board := NewBoard(30, DefaultMilestone)
	strings := layout.Generate(3, layout.RangeMid)
	board.SetLayout(strings)

	state := board.Observe([]engine.PluckEvent{pluck(1, 0.42)})

	if len(state.Bursts) != 1 {
		t.Fatalf("got %d bursts, want 1", len(state.Bursts))
	}
	burst := state.Bursts[0]
	if burst.X != strings[1].XPos {
		t.Errorf("burst X = %f, want %f", burst.X, strings[1].XPos)
	}
	if burst.Color != strings[1].Color {
		t.Errorf("burst Color = %q, want %q", burst.Color, strings[1].Color)
	}
	if burst.Y != 0.42 {
		t.Errorf("burst Y = %f, want 0.42", burst.Y)
	}
}

func TestBoard_ExcitementRisesAndRelaxes(t *testing.T) {
	board := NewBoard(30, DefaultMilestone)

	// A flurry of plucks drives excitement up.
	var peak float64
	for i := 0; i < 10; i++ {
		state := board.Observe([]engine.PluckEvent{pluck(0, 0.3)})
		if state.Excitement > peak {
			peak = state.Excitement
		}
	}
	if peak <= 0 {
		t.Fatal("excitement never rose above zero during plucks")
	}

	// Quiet frames relax it back toward zero.
	var last float64
	for i := 0; i < 300; i++ {
		last = board.Observe(nil).Excitement
	}
	if last >= peak/2 {
		t.Errorf("excitement after quiet frames = %f, expected to relax below %f", last, peak/2)
	}
}

func TestBoard_QuietFrameState(t *testing.T) {
	board := NewBoard(30, DefaultMilestone)

	state := board.Observe(nil)
	if state.NoteCount != 0 || state.Milestone || len(state.Bursts) != 0 {
		t.Errorf("quiet frame state = %+v, want zeroed", state)
	}
}

func TestBoard_Reset(t *testing.T) {
	board := NewBoard(30, DefaultMilestone)
	board.Observe([]engine.PluckEvent{pluck(0, 0.3)})

	board.Reset()

	state := board.Observe(nil)
	if state.NoteCount != 0 {
		t.Errorf("NoteCount after Reset = %d, want 0", state.NoteCount)
	}
}
