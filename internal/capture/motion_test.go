package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func whiteFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
}

func TestMotionGate_Change(t *testing.T) {
	g := NewMotionGate(1.0, 0)
	defer g.Close()

	black := blankFrame()
	defer black.Close()
	white := whiteFrame()
	defer white.Close()

	if got := g.Change(&black); got != 100 {
		t.Errorf("first frame change = %f, want 100", got)
	}
	if got := g.Change(&black); got != 0 {
		t.Errorf("identical frame change = %f, want 0", got)
	}
	if got := g.Change(&white); got < 50 {
		t.Errorf("black to white change = %f, want > 50", got)
	}
}

func TestMotionGate_Hold(t *testing.T) {
	g := NewMotionGate(1.0, 2)
	defer g.Close()

	black := blankFrame()
	defer black.Close()
	white := whiteFrame()
	defer white.Close()

	steps := []struct {
		frame *gocv.Mat
		want  bool
	}{
		{&black, true},  // first frame
		{&black, true},  // idle 1
		{&black, true},  // idle 2
		{&black, false}, // idle 3 exceeds hold
		{&white, true},  // motion reopens
		{&white, true},
		{&white, true},
		{&white, false},
	}

	for i, s := range steps {
		if got := g.Open(s.frame); got != s.want {
			t.Errorf("step %d: Open() = %v, want %v", i, got, s.want)
		}
	}
}

func TestMotionGate_Reset(t *testing.T) {
	g := NewMotionGate(1.0, 0)
	defer g.Close()

	black := blankFrame()
	defer black.Close()

	g.Open(&black)
	if g.Open(&black) {
		t.Fatal("still frame with zero hold should close the gate")
	}

	g.Reset()
	if !g.Open(&black) {
		t.Error("first frame after Reset should open the gate")
	}
}

func TestMotionGate_EmptyFrame(t *testing.T) {
	g := NewMotionGate(1.0, 0)
	defer g.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if got := g.Change(&empty); got != 0 {
		t.Errorf("empty frame change = %f, want 0", got)
	}
	if got := g.Change(nil); got != 0 {
		t.Errorf("nil frame change = %f, want 0", got)
	}
}

func TestMotionGate_CloseTwice(t *testing.T) {
	g := NewMotionGate(1.0, 0)
	g.Close()
	g.Close()
}
