package input

import (
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/logging"
)

// WheelUnit is the scroll delta of one wheel notch.
const WheelUnit = 120

// RobotSink injects input through robotgo. Brightness has no robotgo
// equivalent and is delegated.
type RobotSink struct {
	brightness BrightnessSetter
	log        logrus.FieldLogger
}

// NewRobotSink creates a sink. brightness may be nil, in which case
// SetBrightness returns ErrUnsupported.
func NewRobotSink(brightness BrightnessSetter, log logrus.FieldLogger) *RobotSink {
	return &RobotSink{
		brightness: brightness,
		log:        logging.OrDiscard(log),
	}
}

func (s *RobotSink) MoveCursor(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (s *RobotSink) MouseDown(b Button) error {
	return robotgo.Toggle(string(b))
}

func (s *RobotSink) MouseUp(b Button) error {
	return robotgo.Toggle(string(b), "up")
}

func (s *RobotSink) Click(b Button) error {
	robotgo.Click(string(b))
	return nil
}

func (s *RobotSink) DoubleClick() error {
	robotgo.Click(string(LeftButton), true)
	return nil
}

// Scroll converts wheel units to notches. A delta smaller than one notch
// still scrolls one.
func (s *RobotSink) Scroll(delta int, axis ScrollAxis) error {
	n := Notches(delta)
	if n == 0 {
		return nil
	}
	if axis == ScrollHorizontal {
		robotgo.Scroll(n, 0)
	} else {
		robotgo.Scroll(0, n)
	}
	s.log.WithFields(logrus.Fields{"axis": axis, "notches": n}).Trace("scroll")
	return nil
}

func (s *RobotSink) KeyTap(k Key) error {
	return robotgo.KeyTap(string(k))
}

func (s *RobotSink) SetBrightness(percent int) error {
	if s.brightness == nil {
		return ErrUnsupported
	}
	return s.brightness.SetBrightness(percent)
}

func (s *RobotSink) CursorPosition() image.Point {
	x, y := robotgo.GetMousePos()
	return image.Pt(x, y)
}

func (s *RobotSink) ScreenSize() image.Point {
	w, h := robotgo.GetScreenSize()
	return image.Pt(w, h)
}

// Notches converts a wheel delta to whole notches, rounding toward zero but
// never dropping a non-zero delta.
func Notches(delta int) int {
	n := delta / WheelUnit
	switch {
	case n != 0:
		return n
	case delta > 0:
		return 1
	case delta < 0:
		return -1
	}
	return 0
}
