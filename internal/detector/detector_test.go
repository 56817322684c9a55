package detector

import (
	"errors"
	"image"
	"math"
	"path/filepath"
	"testing"
)

const epsilon = 1e-9

func TestPoint3D_Pixel(t *testing.T) {
	tests := []struct {
		name string
		p    Point3D
		w, h int
		want image.Point
	}{
		{"origin", Point3D{0, 0, 0}, 1920, 1080, image.Point{0, 0}},
		{"center", Point3D{0.5, 0.5, 0}, 1920, 1080, image.Point{960, 540}},
		{"truncates", Point3D{0.3337, 0.6669, 0}, 1000, 1000, image.Point{333, 666}},
		{"far corner", Point3D{1, 1, 0.2}, 800, 600, image.Point{800, 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Pixel(tt.w, tt.h); got != tt.want {
				t.Errorf("Pixel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandLandmarks_IsRight(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{Right, true},
		{Left, false},
		{"", false},
		{"right", false},
	}

	for _, tt := range tests {
		h := HandLandmarks{Handedness: tt.label}
		if got := h.IsRight(); got != tt.want {
			t.Errorf("IsRight(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestHandLandmarks_Translate(t *testing.T) {
	h := PinchLandmarks(Right)
	moved := h.Translate(0.1, -0.05)

	for i := 0; i < NumLandmarks; i++ {
		if math.Abs(moved.Points[i].X-(h.Points[i].X+0.1)) > epsilon {
			t.Errorf("point %d X = %f, want %f", i, moved.Points[i].X, h.Points[i].X+0.1)
		}
		if math.Abs(moved.Points[i].Y-(h.Points[i].Y-0.05)) > epsilon {
			t.Errorf("point %d Y = %f, want %f", i, moved.Points[i].Y, h.Points[i].Y-0.05)
		}
		if moved.Points[i].Z != h.Points[i].Z {
			t.Errorf("point %d Z changed", i)
		}
	}

	if h.Points[Wrist].X != 0.50 {
		t.Error("Translate must not modify the receiver")
	}
}

func TestFixtures_Geometry(t *testing.T) {
	t.Run("pinch tips touch", func(t *testing.T) {
		h := PinchLandmarks(Right)
		dx := h.Points[IndexTip].X - h.Points[ThumbTip].X
		dy := h.Points[IndexTip].Y - h.Points[ThumbTip].Y
		if d := math.Sqrt(dx*dx + dy*dy); d >= 0.05 {
			t.Errorf("index-thumb distance = %f, want < 0.05", d)
		}
	})

	t.Run("extended tips above knuckles", func(t *testing.T) {
		h := OpenPalmLandmarks(Left)
		for _, f := range fingerColumns {
			if h.Points[f.tip].Y >= h.Points[f.mcp].Y {
				t.Errorf("tip %d not above its knuckle", f.tip)
			}
		}
		if h.Handedness != Left {
			t.Errorf("handedness = %q, want Left", h.Handedness)
		}
	})

	t.Run("curled tips below knuckles", func(t *testing.T) {
		h := FistLandmarks(Right)
		for _, f := range fingerColumns {
			if h.Points[f.tip].Y <= h.Points[f.mcp].Y {
				t.Errorf("tip %d not below its knuckle", f.tip)
			}
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks(Right)})

		hands, err := mock.Detect(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 || hands[0].Handedness != Right {
			t.Errorf("unexpected hands: %+v", hands)
		}
	})

	t.Run("queued frames drain before fixed hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks(Right)})
		mock.Queue(nil, []HandLandmarks{PinchLandmarks(Left), PinchLandmarks(Right)})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 0 {
			t.Errorf("first frame = %d hands, want 0", len(first))
		}
		if len(second) != 2 {
			t.Errorf("second frame = %d hands, want 2", len(second))
		}
		if len(third) != 1 {
			t.Errorf("third frame = %d hands, want 1", len(third))
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		wantErr := errors.New("boom")
		mock.SetError(wantErr)

		_, err := mock.Detect(nil)
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})

	t.Run("close", func(t *testing.T) {
		mock := NewMockDetector()
		if err := mock.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if !mock.Closed() {
			t.Error("Closed() = false after Close()")
		}
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("two hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0.3}],"handedness":"Left","score":0.9},{"points":[],"handedness":"Right","score":0.8}]}` + "\n")

		hands, err := parseResponse(line, 2)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 2 {
			t.Fatalf("got %d hands, want 2", len(hands))
		}
		if hands[0].Handedness != Left || hands[1].Handedness != Right {
			t.Errorf("handedness = %q,%q", hands[0].Handedness, hands[1].Handedness)
		}
		if hands[0].Points[Wrist] != (Point3D{X: 0.1, Y: 0.2, Z: 0.3}) {
			t.Errorf("wrist = %+v", hands[0].Points[Wrist])
		}
		// missing points stay zero
		if hands[0].Points[PinkyTip] != (Point3D{}) {
			t.Errorf("pinky tip = %+v, want zero", hands[0].Points[PinkyTip])
		}
	})

	t.Run("limits to max hands", func(t *testing.T) {
		line := []byte(`{"hands":[{"handedness":"Left"},{"handedness":"Right"},{"handedness":"Right"}]}`)
		hands, err := parseResponse(line, 2)
		if err != nil {
			t.Fatalf("parseResponse() error = %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("got %d hands, want 2", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"error":"model not loaded"}`), 2)
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"hands":`), 2)
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Script = filepath.Join(t.TempDir(), "missing.py")

	_, err := NewMediaPipeDetector(cfg, nil)
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("error = %v, want ErrScriptNotFound", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 2 {
		t.Errorf("MaxHands = %d, want 2", cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.5 || cfg.MinTrackingConf != 0.5 {
		t.Errorf("confidence = %f/%f, want 0.5/0.5", cfg.MinConfidence, cfg.MinTrackingConf)
	}
}
