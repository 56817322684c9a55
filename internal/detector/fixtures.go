package detector

// Synthetic hand poses for tests. All poses share one upright right-hand
// skeleton: wrist at the bottom, finger base knuckles in a row above it,
// extended fingertips above the knuckles and curled fingertips folded back
// below them.

var fingerColumns = [4]struct {
	mcp, pip, dip, tip int
	x                  float64
}{
	{IndexMCP, IndexPIP, IndexDIP, IndexTip, 0.56},
	{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, 0.51},
	{RingMCP, RingPIP, RingDIP, RingTip, 0.46},
	{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.41},
}

// PoseLandmarks builds a hand with the given fingers extended (index,
// middle, ring, pinky order). The thumb rests to the side.
func PoseLandmarks(handedness string, index, middle, ring, pinky bool) HandLandmarks {
	h := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	h.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
	h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.71}
	h.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.66}
	h.Points[ThumbTip] = Point3D{X: 0.65, Y: 0.62}

	extended := [4]bool{index, middle, ring, pinky}
	for i, f := range fingerColumns {
		h.Points[f.mcp] = Point3D{X: f.x, Y: 0.65}
		if extended[i] {
			h.Points[f.pip] = Point3D{X: f.x, Y: 0.55}
			h.Points[f.dip] = Point3D{X: f.x, Y: 0.47}
			h.Points[f.tip] = Point3D{X: f.x, Y: 0.40}
		} else {
			h.Points[f.pip] = Point3D{X: f.x, Y: 0.60, Z: -0.03}
			h.Points[f.dip] = Point3D{X: f.x - 0.01, Y: 0.64, Z: -0.04}
			h.Points[f.tip] = Point3D{X: f.x - 0.01, Y: 0.68, Z: -0.03}
		}
	}

	return h
}

// FistLandmarks returns a closed fist.
func FistLandmarks(handedness string) HandLandmarks {
	return PoseLandmarks(handedness, false, false, false, false)
}

// OpenPalmLandmarks returns a hand with all four fingers extended.
func OpenPalmLandmarks(handedness string) HandLandmarks {
	return PoseLandmarks(handedness, true, true, true, true)
}

// VGestureLandmarks returns index and middle fingers extended and spread.
func VGestureLandmarks(handedness string) HandLandmarks {
	h := PoseLandmarks(handedness, true, true, false, false)
	h.Points[IndexDIP].X = 0.60
	h.Points[IndexTip].X = 0.62
	h.Points[MiddleDIP].X = 0.47
	h.Points[MiddleTip].X = 0.45
	return h
}

// TwoFingerClosedLandmarks returns index and middle fingers extended and
// held together at the same depth.
func TwoFingerClosedLandmarks(handedness string) HandLandmarks {
	return PoseLandmarks(handedness, true, true, false, false)
}

// TwoFingerDepthLandmarks returns index and middle fingers extended and
// together, but with the index tip pushed toward the camera.
func TwoFingerDepthLandmarks(handedness string) HandLandmarks {
	h := PoseLandmarks(handedness, true, true, false, false)
	h.Points[IndexTip].Z = -0.15
	return h
}

// IndexLandmarks returns only the index finger extended.
func IndexLandmarks(handedness string) HandLandmarks {
	return PoseLandmarks(handedness, true, false, false, false)
}

// MiddleLandmarks returns only the middle finger extended.
func MiddleLandmarks(handedness string) HandLandmarks {
	return PoseLandmarks(handedness, false, true, false, false)
}

// PinchLandmarks returns the index fingertip touching the thumb tip with the
// remaining three fingers extended.
func PinchLandmarks(handedness string) HandLandmarks {
	h := PoseLandmarks(handedness, false, true, true, true)
	tip := h.Points[IndexTip]
	h.Points[ThumbIP] = Point3D{X: tip.X + 0.04, Y: tip.Y + 0.01}
	h.Points[ThumbTip] = Point3D{X: tip.X + 0.01, Y: tip.Y - 0.01}
	return h
}
