package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/handmouse/internal/detector"
)

const epsilon = 1e-9

// indexHand places the wrist, index knuckle and index tip on a vertical
// line so that the index finger ratio is exactly tipRise/0.1. Every other
// landmark sits at the origin and reads as curled.
func indexHand(tipRise float64) *detector.HandLandmarks {
	h := &detector.HandLandmarks{Handedness: detector.Right}
	h.Points[detector.Wrist] = detector.Point3D{X: 0.5, Y: 0.9}
	h.Points[detector.IndexMCP] = detector.Point3D{X: 0.5, Y: 0.8}
	h.Points[detector.IndexTip] = detector.Point3D{X: 0.5, Y: 0.8 - tipRise}
	return h
}

func TestFeatures_FingerRatioBoundary(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name     string
		tipRise  float64
		wantBit  bool
		wantRate float64
	}{
		{"exactly at threshold stays curled", 0.05, false, 0.5},
		{"rounds down to threshold", 0.054, false, 0.5},
		{"rounds up past threshold", 0.056, true, 0.6},
		{"clearly extended", 0.2, true, 2.0},
		{"tip below knuckle", -0.03, false, -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFeatures(indexHand(tt.tipRise))

			if got := f.FingerRatio(0, p.RatioEpsilon); math.Abs(got-tt.wantRate) > epsilon {
				t.Errorf("FingerRatio() = %v, want %v", got, tt.wantRate)
			}

			state := f.FingerState(p.ExtendedRatio, p.RatioEpsilon)
			if got := state.Has(IndexFinger); got != tt.wantBit {
				t.Errorf("index bit = %v, want %v (state %s)", got, tt.wantBit, state)
			}
			if state&^IndexFinger != 0 {
				t.Errorf("unexpected bits in %s", state)
			}
		})
	}
}

func TestFeatures_ZeroDenominatorUsesEpsilon(t *testing.T) {
	// knuckle level with the wrist: the signed knuckle-to-wrist distance is zero
	h := &detector.HandLandmarks{}
	h.Points[detector.Wrist] = detector.Point3D{X: 0.4, Y: 0.9}
	h.Points[detector.IndexMCP] = detector.Point3D{X: 0.5, Y: 0.9}

	tests := []struct {
		name    string
		tipY    float64
		want    float64
		wantBit bool
	}{
		{"small rise", 0.899, 0.1, false},
		{"rise divided by epsilon", 0.894, 0.6, true},
		{"tip on knuckle", 0.9, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.Points[detector.IndexTip] = detector.Point3D{X: 0.5, Y: tt.tipY}
			f := NewFeatures(h)

			got := f.FingerRatio(0, 0.01)
			if math.IsInf(got, 0) || math.IsNaN(got) {
				t.Fatalf("FingerRatio() = %v, want finite", got)
			}
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("FingerRatio() = %v, want %v", got, tt.want)
			}
			if bit := f.FingerState(0.5, 0.01).Has(IndexFinger); bit != tt.wantBit {
				t.Errorf("index bit = %v, want %v", bit, tt.wantBit)
			}
		})
	}
}

func TestFeatures_SignedDist(t *testing.T) {
	h := &detector.HandLandmarks{}
	h.Points[0] = detector.Point3D{X: 0, Y: 0.5}
	h.Points[1] = detector.Point3D{X: 0.3, Y: 0.9}
	f := NewFeatures(h)

	if got := f.SignedDist(0, 1); math.Abs(got-0.5) > epsilon {
		t.Errorf("SignedDist(0,1) = %v, want 0.5", got)
	}
	if got := f.SignedDist(1, 0); math.Abs(got+0.5) > epsilon {
		t.Errorf("SignedDist(1,0) = %v, want -0.5", got)
	}
	if got := f.Dist(1, 0); math.Abs(got-0.5) > epsilon {
		t.Errorf("Dist(1,0) = %v, want 0.5", got)
	}
}

func TestFeatures_DepthGap(t *testing.T) {
	h := &detector.HandLandmarks{}
	h.Points[detector.IndexTip].Z = -0.02
	h.Points[detector.MiddleTip].Z = 0.07
	f := NewFeatures(h)

	if got := f.DepthGap(detector.IndexTip, detector.MiddleTip); math.Abs(got-0.09) > epsilon {
		t.Errorf("DepthGap() = %v, want 0.09", got)
	}
	if got := f.DepthGap(detector.MiddleTip, detector.IndexTip); math.Abs(got-0.09) > epsilon {
		t.Errorf("DepthGap() reversed = %v, want 0.09", got)
	}
}

func TestFeatures_AbsentHand(t *testing.T) {
	f := NewFeatures(nil)
	if f.Present() {
		t.Error("Present() = true for nil hand")
	}
	if s := f.FingerState(0.5, 0.01); s != 0 {
		t.Errorf("FingerState() = %s, want 0000", s)
	}
	if d := f.Dist(detector.IndexTip, detector.ThumbTip); d != 0 {
		t.Errorf("Dist() = %v, want 0", d)
	}
}

func TestFeatures_FixturePoses(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name string
		hand detector.HandLandmarks
		want FingerState
	}{
		{"fist", detector.FistLandmarks(detector.Right), 0},
		{"open palm", detector.OpenPalmLandmarks(detector.Right), AllFingers},
		{"index", detector.IndexLandmarks(detector.Right), IndexFinger},
		{"middle", detector.MiddleLandmarks(detector.Left), MiddleFinger},
		{"v", detector.VGestureLandmarks(detector.Right), IndexFinger | MiddleFinger},
		{"pinch", detector.PinchLandmarks(detector.Right), MiddleFinger | RingFinger | PinkyFinger},
		{"pinky", detector.PoseLandmarks(detector.Right, false, false, false, true), PinkyFinger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFeatures(&tt.hand).FingerState(p.ExtendedRatio, p.RatioEpsilon)
			if got != tt.want {
				t.Errorf("FingerState() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFingerState_Gesture(t *testing.T) {
	tests := []struct {
		mask FingerState
		want Kind
	}{
		{0b0000, Fist},
		{0b0001, Pinky},
		{0b0010, Ring},
		{0b0100, Mid},
		{0b0111, Last3},
		{0b1000, Index},
		{0b1100, First2},
		{0b1111, Last4},
		{0b0011, Other},
		{0b1010, Other},
	}

	for _, tt := range tests {
		g := tt.mask.Gesture()
		if g.Kind != tt.want {
			t.Errorf("%s.Gesture() = %v, want %v", tt.mask, g.Kind, tt.want)
		}
		if g.Fingers != tt.mask {
			t.Errorf("%s.Gesture().Fingers = %s", tt.mask, g.Fingers)
		}
	}

	if FingerState(0b0011).Gesture() == FingerState(0b0101).Gesture() {
		t.Error("distinct unnamed masks must not compare equal")
	}
	if Of(Mid) != MiddleFinger.Gesture() {
		t.Error("Of(Mid) must equal the MID finger mask gesture")
	}
}
