package control

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/gesture"
)

// Axis is the direction a pinch is locked to.
type Axis int

const (
	// NoAxis means the pinch has not moved past the threshold yet.
	NoAxis Axis = iota
	Horizontal
	Vertical
)

func (a Axis) String() string {
	switch a {
	case NoAxis:
		return "none"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// MarshalText renders the axis name for JSON.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// PinchParams configure pinch tracking.
type PinchParams struct {
	// Threshold is both the minimum displacement that selects an axis and
	// the largest change still counted as holding steady.
	Threshold float64
	// StableFrames is how many steady frames commit the pending magnitude.
	StableFrames int
	// Scale converts normalized displacement into magnitude units.
	Scale float64
}

// DefaultPinchParams returns the stock pinch parameters.
func DefaultPinchParams() PinchParams {
	return PinchParams{
		Threshold:    0.3,
		StableFrames: 5,
		Scale:        10,
	}
}

// Commit is a pinch magnitude that held steady long enough to act on.
type Commit struct {
	Axis      Axis
	Magnitude float64
}

// AxisActions are the handlers a commit is routed to.
type AxisActions struct {
	Horizontal func(magnitude float64)
	Vertical   func(magnitude float64)
}

// Apply calls the handler for the commit's axis. Nil handlers are skipped.
func (c Commit) Apply(a AxisActions) {
	switch c.Axis {
	case Horizontal:
		if a.Horizontal != nil {
			a.Horizontal(c.Magnitude)
		}
	case Vertical:
		if a.Vertical != nil {
			a.Vertical(c.Magnitude)
		}
	}
}

// PinchSession tracks one pinch from onset until the gesture ends. The
// anchor is the index fingertip at onset.
type PinchSession struct {
	ID      uuid.UUID
	Role    gesture.Role
	AnchorX float64
	AnchorY float64

	params    PinchParams
	axis      Axis
	committed float64
	pending   float64
	stable    int
}

// StartPinch opens a session anchored at the given index fingertip.
func StartPinch(role gesture.Role, tip detector.Point3D, p PinchParams) *PinchSession {
	return &PinchSession{
		ID:      uuid.New(),
		Role:    role,
		AnchorX: tip.X,
		AnchorY: tip.Y,
		params:  p,
	}
}

// Distances returns the scaled displacement of tip from the anchor, each
// rounded to one decimal. Upward motion is positive y.
func (s *PinchSession) Distances(tip detector.Point3D) (x, y float64) {
	x = round1((tip.X - s.AnchorX) * s.params.Scale)
	y = round1((s.AnchorY - tip.Y) * s.params.Scale)
	return x, y
}

// Update feeds one frame's index fingertip. It returns a commit, and true,
// on the frame the active axis magnitude completes its steady run.
func (s *PinchSession) Update(tip detector.Point3D) (Commit, bool) {
	x, y := s.Distances(tip)

	var dist float64
	switch {
	case math.Abs(y) > math.Abs(x) && math.Abs(y) > s.params.Threshold:
		s.axis = Vertical
		dist = y
	case math.Abs(x) > s.params.Threshold:
		s.axis = Horizontal
		dist = x
	default:
		return Commit{}, false
	}

	if math.Abs(s.pending-dist) < s.params.Threshold {
		s.stable++
	} else {
		s.pending = dist
		s.stable = 0
	}

	if s.stable < s.params.StableFrames {
		return Commit{}, false
	}

	s.stable = 0
	s.committed = s.pending
	return Commit{Axis: s.axis, Magnitude: s.committed}, true
}

// Axis returns the axis selected by the most recent moving frame.
func (s *PinchSession) Axis() Axis {
	return s.axis
}

// PinchState is a point-in-time view of a session.
type PinchState struct {
	ID        string       `json:"id"`
	Role      gesture.Role `json:"role"`
	Axis      Axis         `json:"axis"`
	Committed float64      `json:"committed"`
	Pending   float64      `json:"pending"`
	Stable    int          `json:"stable_frames"`
}

// State returns a snapshot of the session.
func (s *PinchSession) State() PinchState {
	return PinchState{
		ID:        s.ID.String(),
		Role:      s.Role,
		Axis:      s.axis,
		Committed: s.committed,
		Pending:   s.pending,
		Stable:    s.stable,
	}
}

// round1 rounds to one decimal place, ties to even.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
