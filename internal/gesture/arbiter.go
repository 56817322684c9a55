package gesture

import (
	"fmt"

	"github.com/ayusman/handmouse/internal/detector"
)

// Role is the part a detected hand plays this frame.
type Role int

const (
	// Major is the dominant hand.
	Major Role = iota
	// Minor is the non-dominant hand.
	Minor
)

func (r Role) String() string {
	switch r {
	case Major:
		return "major"
	case Minor:
		return "minor"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// MarshalText renders the role name for JSON.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Selection is the arbiter's decision for one frame.
type Selection struct {
	// Gesture and Role identify what drives the dispatcher this frame.
	Gesture Gesture
	Role    Role
	// Hand is the landmarks of the selected role, nil if absent.
	Hand *detector.HandLandmarks
	// Hands is how many hands the provider reported.
	Hands int
}

// Arbiter assigns detected hands to major/minor roles and picks which
// role's gesture is dispatched.
type Arbiter struct {
	dominant string
	major    *Tracker
	minor    *Tracker
}

// NewArbiter creates an arbiter with a fixed dominant physical hand
// ("Left" or "Right").
func NewArbiter(dominant string, p Params) *Arbiter {
	return &Arbiter{
		dominant: dominant,
		major:    NewTracker(Major, p),
		minor:    NewTracker(Minor, p),
	}
}

// SetDominant switches which physical hand is major. Gesture state stays
// with the role, not the physical hand.
func (a *Arbiter) SetDominant(hand string) {
	a.dominant = hand
}

// Dominant returns the configured dominant hand label.
func (a *Arbiter) Dominant() string {
	return a.dominant
}

// Assign maps up to two detected hands onto roles by handedness. A role
// with no matching hand is nil. When both hands carry the same label the
// later one wins.
func (a *Arbiter) Assign(hands []detector.HandLandmarks) (major, minor *detector.HandLandmarks) {
	var left, right *detector.HandLandmarks
	for i := 0; i < len(hands) && i < 2; i++ {
		if hands[i].IsRight() {
			right = &hands[i]
		} else {
			left = &hands[i]
		}
	}

	if a.dominant == detector.Left {
		return left, right
	}
	return right, left
}

// Select runs one frame. The minor hand is evaluated first; a minor pinch
// takes the frame and the major hand is not evaluated at all. Otherwise
// the major hand's stable gesture is selected.
func (a *Arbiter) Select(hands []detector.HandLandmarks) Selection {
	majorHand, minorHand := a.Assign(hands)

	if g := a.minor.Update(minorHand); g.Is(PinchMinor) {
		return Selection{Gesture: g, Role: Minor, Hand: minorHand, Hands: len(hands)}
	}

	g := a.major.Update(majorHand)
	return Selection{Gesture: g, Role: Major, Hand: majorHand, Hands: len(hands)}
}

// Tracker returns the gesture state for a role.
func (a *Arbiter) Tracker(r Role) *Tracker {
	if r == Minor {
		return a.minor
	}
	return a.major
}
