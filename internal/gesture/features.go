package gesture

import (
	"math"

	"github.com/ayusman/handmouse/internal/detector"
)

// fingerChains lists, per finger in mask order, the landmarks whose
// geometry decides openness: fingertip, base knuckle, wrist.
var fingerChains = [4][3]int{
	{detector.IndexTip, detector.IndexMCP, detector.Wrist},
	{detector.MiddleTip, detector.MiddleMCP, detector.Wrist},
	{detector.RingTip, detector.RingMCP, detector.Wrist},
	{detector.PinkyTip, detector.PinkyMCP, detector.Wrist},
}

// Features reads per-frame geometry off one hand.
type Features struct {
	hand *detector.HandLandmarks
}

// NewFeatures wraps a hand. A nil hand is absent: every query on it
// returns the zero value.
func NewFeatures(hand *detector.HandLandmarks) Features {
	return Features{hand: hand}
}

// Present reports whether a hand was detected.
func (f Features) Present() bool {
	return f.hand != nil
}

// SignedDist is the planar distance from landmark a to b, negated when b
// lies above a in the image.
func (f Features) SignedDist(a, b int) float64 {
	if f.hand == nil {
		return 0
	}
	p, q := f.hand.Points[a], f.hand.Points[b]
	return math.Hypot(p.X-q.X, p.Y-q.Y) * sign(q.Y-p.Y)
}

// Dist is the unsigned planar distance between landmarks a and b.
func (f Features) Dist(a, b int) float64 {
	if f.hand == nil {
		return 0
	}
	p, q := f.hand.Points[a], f.hand.Points[b]
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DepthGap is the unsigned z difference between landmarks a and b.
func (f Features) DepthGap(a, b int) float64 {
	if f.hand == nil {
		return 0
	}
	return math.Abs(f.hand.Points[a].Z - f.hand.Points[b].Z)
}

// FingerRatio is the rounded ratio of the tip-to-knuckle signed distance to
// the knuckle-to-wrist signed distance for finger i (0 = index). A zero
// denominator is replaced by epsilon.
func (f Features) FingerRatio(i int, epsilon float64) float64 {
	chain := fingerChains[i]
	num := f.SignedDist(chain[0], chain[1])
	den := f.SignedDist(chain[1], chain[2])
	if den == 0 {
		den = epsilon
	}
	return round1(num / den)
}

// FingerState packs the openness of the four fingers. A finger is extended
// when its ratio is strictly greater than extendedRatio.
func (f Features) FingerState(extendedRatio, epsilon float64) FingerState {
	var s FingerState
	if f.hand == nil {
		return s
	}
	for i := range fingerChains {
		s <<= 1
		if f.FingerRatio(i, epsilon) > extendedRatio {
			s |= 1
		}
	}
	return s
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// round1 rounds to one decimal place, ties to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
