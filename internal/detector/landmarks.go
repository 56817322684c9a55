// Package detector provides the hand landmark model and the landmark
// providers that produce it from camera frames.
package detector

import "image"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the landmark model.
const (
	Left  = "Left"
	Right = "Right"
)

// Point3D is one landmark in normalized image coordinates: x and y in [0,1]
// from the top-left corner, z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pixel scales the point's x/y onto a w*h pixel grid, truncating like an
// integer cast.
func (p Point3D) Pixel(w, h int) image.Point {
	return image.Point{X: int(p.X * float64(w)), Y: int(p.Y * float64(h))}
}

// HandLandmarks is one detected hand in one frame.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// IsRight reports whether the model labelled this hand as the right hand.
// Any other label counts as left.
func (h *HandLandmarks) IsRight() bool {
	return h.Handedness == Right
}

// Translate returns a copy of the hand with every point shifted by (dx, dy).
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
