package gesture

import (
	"github.com/ayusman/handmouse/internal/detector"
)

// Params are the classifier thresholds.
type Params struct {
	// ExtendedRatio is the finger ratio above which a finger counts as extended.
	ExtendedRatio float64
	// RatioEpsilon replaces a zero knuckle-to-wrist distance in the finger ratio.
	RatioEpsilon float64
	// PinchDistance is the index-to-thumb tip distance below which a
	// LAST3/LAST4 hand is pinching.
	PinchDistance float64
	// VSpreadRatio is the tip spread over knuckle spread above which a
	// FIRST2 hand is a V.
	VSpreadRatio float64
	// ClosedDepth is the tip depth gap below which a FIRST2 hand is two
	// fingers held together.
	ClosedDepth float64
	// StableFrames is how many repeats of a candidate it takes to become
	// the stable gesture.
	StableFrames int
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		ExtendedRatio: 0.5,
		RatioEpsilon:  0.01,
		PinchDistance: 0.05,
		VSpreadRatio:  1.7,
		ClosedDepth:   0.1,
		StableFrames:  5,
	}
}

// Classify returns the raw candidate gesture for one hand in one frame,
// along with the finger mask it was derived from. An absent hand is Palm.
func Classify(hand *detector.HandLandmarks, role Role, p Params) (Gesture, FingerState) {
	f := NewFeatures(hand)
	if !f.Present() {
		return Of(Palm), 0
	}

	fingers := f.FingerState(p.ExtendedRatio, p.RatioEpsilon)

	switch fingers {
	case last3Mask, AllFingers:
		if f.Dist(detector.IndexTip, detector.ThumbTip) < p.PinchDistance {
			if role == Minor {
				return Of(PinchMinor), fingers
			}
			return Of(PinchMajor), fingers
		}

	case first2Mask:
		spread := f.Dist(detector.IndexTip, detector.MiddleTip)
		base := f.Dist(detector.IndexMCP, detector.MiddleMCP)
		// base is never zero on a real hand; a zero here yields +Inf and a V.
		if spread/base > p.VSpreadRatio {
			return Of(VGest), fingers
		}
		if f.DepthGap(detector.IndexTip, detector.MiddleTip) < p.ClosedDepth {
			return Of(TwoFingerClosed), fingers
		}
		return Of(Mid), fingers
	}

	return fingers.Gesture(), fingers
}

// Debouncer holds a candidate back until it has been seen on enough
// consecutive frames. Both the previous candidate and the stable output
// start as Palm.
type Debouncer struct {
	frames    int
	candidate Gesture
	stable    Gesture
	count     int
}

// NewDebouncer returns a debouncer that promotes a candidate once it has
// repeated frames times after its first sighting.
func NewDebouncer(frames int) *Debouncer {
	return &Debouncer{
		frames:    frames,
		candidate: Of(Palm),
		stable:    Of(Palm),
	}
}

// Observe feeds one frame's candidate and returns the stable gesture.
func (d *Debouncer) Observe(candidate Gesture) Gesture {
	if candidate == d.candidate {
		d.count++
	} else {
		d.count = 0
		d.candidate = candidate
	}

	if d.count >= d.frames {
		d.stable = candidate
	}
	return d.stable
}

// Stable returns the current stable gesture without observing a frame.
func (d *Debouncer) Stable() Gesture {
	return d.stable
}

// Candidate returns the most recently observed candidate and its repeat count.
func (d *Debouncer) Candidate() (Gesture, int) {
	return d.candidate, d.count
}

// Tracker is the per-role gesture state that persists across frames.
type Tracker struct {
	role     Role
	params   Params
	debounce *Debouncer
	hand     *detector.HandLandmarks
	fingers  FingerState
}

// NewTracker creates the gesture state for one hand role.
func NewTracker(role Role, p Params) *Tracker {
	return &Tracker{
		role:     role,
		params:   p,
		debounce: NewDebouncer(p.StableFrames),
	}
}

// Update classifies this frame's hand and returns the stable gesture. An
// absent hand returns Palm and leaves the debounce state untouched.
func (t *Tracker) Update(hand *detector.HandLandmarks) Gesture {
	t.hand = hand
	if hand == nil {
		return Of(Palm)
	}

	candidate, fingers := Classify(hand, t.role, t.params)
	t.fingers = fingers
	return t.debounce.Observe(candidate)
}

// Role returns the hand role this tracker follows.
func (t *Tracker) Role() Role {
	return t.role
}

// Hand returns the landmarks from the last Update, nil if absent.
func (t *Tracker) Hand() *detector.HandLandmarks {
	return t.hand
}

// Fingers returns the finger mask from the last frame the hand was present.
func (t *Tracker) Fingers() FingerState {
	return t.fingers
}

// Stable returns the stable gesture without observing a frame.
func (t *Tracker) Stable() Gesture {
	return t.debounce.Stable()
}
