package dispatch

import (
	"time"

	"github.com/ayusman/handmouse/internal/control"
	"github.com/ayusman/handmouse/internal/gesture"
)

// Event types.
const (
	EventGesture     = "gesture"
	EventPinchCommit = "pinch_commit"
)

// Event reports a dispatched gesture change or a pinch commit.
type Event struct {
	Type      string          `json:"type"`
	Time      time.Time       `json:"time"`
	Gesture   gesture.Gesture `json:"gesture"`
	Role      gesture.Role    `json:"role"`
	Axis      control.Axis    `json:"axis,omitempty"`
	Magnitude float64         `json:"magnitude,omitempty"`
	Session   string          `json:"session,omitempty"`
}
