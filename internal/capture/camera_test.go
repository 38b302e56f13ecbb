package capture

import "testing"

func TestNewCamera_Defaults(t *testing.T) {
	cam := NewCamera(0)

	if cam.IsOpen() {
		t.Error("camera should not be open before Open is called")
	}
	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}
}

func TestCamera_ReadFrameNotOpen(t *testing.T) {
	cam := NewCamera(0)

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Errorf("ReadFrame on closed camera returned %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	tests := []struct {
		name string
		fps  int
		want int
	}{
		{name: "valid fps", fps: 15, want: 15},
		{name: "zero ignored", fps: 0, want: DefaultFPS},
		{name: "negative ignored", fps: -5, want: DefaultFPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(0)
			cam.SetFPS(tt.fps)
			if cam.FPS() != tt.want {
				t.Errorf("FPS() = %d, want %d", cam.FPS(), tt.want)
			}
		})
	}
}

func TestMockCamera_Playback(t *testing.T) {
	frames := []*Frame{
		{PTS: 1, Width: 640, Height: 480},
		{PTS: 2, Width: 640, Height: 480},
	}

	cam := NewMockCamera(frames, false)

	if _, err := cam.ReadFrame(); err != ErrCameraNotOpen {
		t.Fatalf("ReadFrame before Open returned %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for i, want := range []int64{1, 2} {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d error = %v", i, err)
		}
		if frame.PTS != want {
			t.Errorf("frame %d PTS = %d, want %d", i, frame.PTS, want)
		}
	}

	if _, err := cam.ReadFrame(); err == nil {
		t.Error("expected error after frame sequence is exhausted")
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frames := []*Frame{{PTS: 7}}
	cam := NewMockCamera(frames, true)
	cam.Open()

	for i := 0; i < 3; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d error = %v", i, err)
		}
		if frame.PTS != 7 {
			t.Errorf("looped frame PTS = %d, want 7", frame.PTS)
		}
	}
}

func TestMockCamera_Reset(t *testing.T) {
	frames := []*Frame{{PTS: 1}, {PTS: 2}}
	cam := NewMockCamera(frames, false)
	cam.Open()

	cam.ReadFrame()
	cam.Reset()

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame after Reset error = %v", err)
	}
	if frame.PTS != 1 {
		t.Errorf("frame after Reset PTS = %d, want 1", frame.PTS)
	}
}
