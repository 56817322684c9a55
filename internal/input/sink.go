// Package input defines the OS input sink the dispatcher drives, with a
// robotgo implementation for real use and a recording one for tests.
package input

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnsupported is returned by a sink that cannot perform an operation on
// this platform.
var ErrUnsupported = errors.New("input operation not supported")

// Button is a mouse button name.
type Button string

// Mouse buttons.
const (
	LeftButton  Button = "left"
	RightButton Button = "right"
)

// ScrollAxis is the wheel a scroll applies to.
type ScrollAxis int

const (
	ScrollVertical ScrollAxis = iota
	ScrollHorizontal
)

func (a ScrollAxis) String() string {
	switch a {
	case ScrollVertical:
		return "vertical"
	case ScrollHorizontal:
		return "horizontal"
	}
	return fmt.Sprintf("ScrollAxis(%d)", int(a))
}

// Key is a key name understood by the sink.
type Key string

// Media keys.
const (
	VolumeUp   Key = "audio_vol_up"
	VolumeDown Key = "audio_vol_down"
)

// Sink performs OS input side effects. Scroll deltas are wheel units where
// 120 is one notch; positive vertical scrolls up.
type Sink interface {
	MoveCursor(x, y int) error
	MouseDown(b Button) error
	MouseUp(b Button) error
	Click(b Button) error
	DoubleClick() error
	Scroll(delta int, axis ScrollAxis) error
	KeyTap(k Key) error
	SetBrightness(percent int) error
	CursorPosition() image.Point
	ScreenSize() image.Point
}

// BrightnessSetter sets the display brightness as a percentage.
type BrightnessSetter interface {
	SetBrightness(percent int) error
}
