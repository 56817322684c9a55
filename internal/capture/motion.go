package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	// GaussianBlurSize is the blur kernel applied before differencing.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change counted as motion.
	DiffThreshold = 25
)

// MotionGate decides whether a frame is worth sending to the hand
// detector. It stays open for a number of frames after the last motion so
// that a hand held still keeps being tracked.
type MotionGate struct {
	threshold float64
	hold      int
	prevGray  gocv.Mat
	primed    bool
	idle      int
	mu        sync.Mutex
}

// NewMotionGate creates a gate that opens when more than threshold percent
// of pixels change and stays open for hold frames afterwards.
func NewMotionGate(threshold float64, hold int) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		hold:      hold,
		prevGray:  gocv.NewMat(),
	}
}

// Change returns the percentage of pixels that changed since the previous
// frame. The first frame after a reset reports 100.
func (g *MotionGate) Change(frame *gocv.Mat) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.change(frame)
}

func (g *MotionGate) change(frame *gocv.Mat) float64 {
	if frame == nil || frame.Empty() {
		return 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(GaussianBlurSize, GaussianBlurSize), 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.prevGray)
		g.primed = true
		return 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100
	blurred.CopyTo(&g.prevGray)
	return changed
}

// Open feeds one frame and reports whether the detector should run on it.
func (g *MotionGate) Open(frame *gocv.Mat) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.change(frame) > g.threshold {
		g.idle = 0
		return true
	}
	g.idle++
	return g.idle <= g.hold
}

// Reset forgets the baseline frame; the next frame opens the gate.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.primed = false
	g.idle = 0
}

// Close releases the baseline frame.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prevGray.Close()
	g.prevGray = gocv.NewMat()
	g.primed = false
}
