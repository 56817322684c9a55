// Package dispatch maps the arbiter's per-frame gesture to input sink
// calls. It owns the button, click-arming, cursor damping and pinch state
// that persists between frames.
package dispatch

import (
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/control"
	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/gesture"
	"github.com/ayusman/handmouse/internal/input"
	"github.com/ayusman/handmouse/internal/logging"
)

// CursorLandmark is the hand landmark that positions the cursor.
const CursorLandmark = detector.MiddleMCP

// Params configure the dispatcher's continuous actions.
type Params struct {
	Damping control.DampParams
	Pinch   control.PinchParams
	// BrightnessBase and BrightnessGain map a committed magnitude m to
	// base + gain*m percent.
	BrightnessBase float64
	BrightnessGain float64
	// ScrollUnit is the wheel delta emitted per pinch scroll commit.
	ScrollUnit int
}

// DefaultParams returns the stock dispatcher parameters.
func DefaultParams() Params {
	return Params{
		Damping:        control.DefaultDampParams(),
		Pinch:          control.DefaultPinchParams(),
		BrightnessBase: 50,
		BrightnessGain: 20,
		ScrollUnit:     input.WheelUnit,
	}
}

// State is a snapshot of the dispatcher flags.
type State struct {
	VActive          bool                `json:"v_active"`
	DragActive       bool                `json:"drag_active"`
	PinchMajorActive bool                `json:"pinch_major_active"`
	PinchMinorActive bool                `json:"pinch_minor_active"`
	Gesture          gesture.Gesture     `json:"gesture"`
	Role             gesture.Role        `json:"role"`
	Pinch            *control.PinchState `json:"pinch,omitempty"`
}

// Dispatcher is the action state machine. It is not safe for concurrent
// use; the frame loop owns it.
type Dispatcher struct {
	sink   input.Sink
	params Params
	log    logrus.FieldLogger
	damper *control.Damper

	vActive    bool
	dragActive bool
	pinchMajor bool
	pinchMinor bool
	pinch      *control.PinchSession

	last     gesture.Gesture
	lastRole gesture.Role
	onEvent  func(Event)
	now      func() time.Time
}

// New creates a dispatcher driving sink.
func New(sink input.Sink, params Params, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		sink:   sink,
		params: params,
		log:    logging.OrDiscard(log),
		damper: control.NewDamper(params.Damping),
		last:   gesture.Of(gesture.Palm),
		now:    time.Now,
	}
}

// OnEvent registers a listener for gesture changes and pinch commits. It is
// called synchronously from Dispatch.
func (d *Dispatcher) OnEvent(fn func(Event)) {
	d.onEvent = fn
}

// SetParams replaces the action parameters. An active pinch session keeps
// the parameters it started with.
func (d *Dispatcher) SetParams(p Params) {
	if p.Damping != d.params.Damping {
		d.damper = control.NewDamper(p.Damping)
	}
	d.params = p
}

// Dispatch applies one frame's selection.
func (d *Dispatcher) Dispatch(sel gesture.Selection) {
	g := sel.Gesture

	if g.Kind != d.last.Kind || sel.Role != d.lastRole {
		d.log.WithFields(logrus.Fields{
			"gesture": g,
			"role":    sel.Role,
			"hands":   sel.Hands,
		}).Debug("gesture changed")
		d.emit(Event{Type: EventGesture, Gesture: g, Role: sel.Role})
	}
	d.last, d.lastRole = g, sel.Role

	var target image.Point
	if g.Is(gesture.Palm) || sel.Hand == nil {
		d.damper.Reset()
	} else {
		target = d.cursorTarget(sel.Hand)
	}

	if d.dragActive && !g.Is(gesture.Fist) {
		d.dragActive = false
		d.check("mouse_up", d.sink.MouseUp(input.LeftButton))
	}
	if d.pinchMajor && !g.Is(gesture.PinchMajor) {
		d.endPinch(gesture.Major)
	}
	if d.pinchMinor && !g.Is(gesture.PinchMinor) {
		d.endPinch(gesture.Minor)
	}

	switch g.Kind {
	case gesture.VGest:
		d.vActive = true
		d.move(target)

	case gesture.Fist:
		if !d.dragActive {
			d.dragActive = true
			d.check("mouse_down", d.sink.MouseDown(input.LeftButton))
		}
		d.move(target)

	case gesture.Mid:
		if d.vActive {
			d.check("click", d.sink.Click(input.LeftButton))
			d.vActive = false
		}

	case gesture.Index:
		if d.vActive {
			d.check("right_click", d.sink.Click(input.RightButton))
			d.vActive = false
		}

	case gesture.TwoFingerClosed:
		if d.vActive {
			d.check("double_click", d.sink.DoubleClick())
			d.vActive = false
		}

	case gesture.PinchMinor:
		d.trackPinch(gesture.Minor, sel.Hand, control.AxisActions{
			Horizontal: d.scrollHorizontal,
			Vertical:   d.scrollVertical,
		})

	case gesture.PinchMajor:
		d.trackPinch(gesture.Major, sel.Hand, control.AxisActions{
			Horizontal: d.setBrightness,
			Vertical:   d.changeVolume,
		})
	}
}

// Release lets go of a held button and clears all gesture state. It is
// called when the loop stops or is paused.
func (d *Dispatcher) Release() {
	if d.dragActive {
		d.dragActive = false
		d.check("mouse_up", d.sink.MouseUp(input.LeftButton))
	}
	d.vActive = false
	d.pinchMajor = false
	d.pinchMinor = false
	d.pinch = nil
	d.damper.Reset()
	d.last = gesture.Of(gesture.Palm)
	d.lastRole = gesture.Major
}

// State returns a snapshot of the dispatcher flags.
func (d *Dispatcher) State() State {
	s := State{
		VActive:          d.vActive,
		DragActive:       d.dragActive,
		PinchMajorActive: d.pinchMajor,
		PinchMinorActive: d.pinchMinor,
		Gesture:          d.last,
		Role:             d.lastRole,
	}
	if d.pinch != nil {
		ps := d.pinch.State()
		s.Pinch = &ps
	}
	return s
}

func (d *Dispatcher) cursorTarget(hand *detector.HandLandmarks) image.Point {
	screen := d.sink.ScreenSize()
	raw := hand.Points[CursorLandmark].Pixel(screen.X, screen.Y)
	return d.damper.Target(raw, d.sink.CursorPosition())
}

func (d *Dispatcher) move(p image.Point) {
	d.check("move", d.sink.MoveCursor(p.X, p.Y))
}

func (d *Dispatcher) trackPinch(role gesture.Role, hand *detector.HandLandmarks, actions control.AxisActions) {
	if hand == nil {
		return
	}
	tip := hand.Points[detector.IndexTip]

	active := &d.pinchMajor
	if role == gesture.Minor {
		active = &d.pinchMinor
	}

	if !*active {
		*active = true
		d.pinch = control.StartPinch(role, tip, d.params.Pinch)
		d.log.WithFields(logrus.Fields{
			"session": d.pinch.ID,
			"role":    role,
		}).Debug("pinch started")
		return
	}

	commit, ok := d.pinch.Update(tip)
	if !ok {
		return
	}
	d.log.WithFields(logrus.Fields{
		"session":   d.pinch.ID,
		"role":      role,
		"axis":      commit.Axis,
		"magnitude": commit.Magnitude,
	}).Debug("pinch committed")
	d.emit(Event{
		Type:      EventPinchCommit,
		Gesture:   d.last,
		Role:      role,
		Axis:      commit.Axis,
		Magnitude: commit.Magnitude,
		Session:   d.pinch.ID.String(),
	})
	commit.Apply(actions)
}

func (d *Dispatcher) endPinch(role gesture.Role) {
	if role == gesture.Minor {
		d.pinchMinor = false
	} else {
		d.pinchMajor = false
	}
	if d.pinch != nil && d.pinch.Role == role {
		d.log.WithField("session", d.pinch.ID).Debug("pinch ended")
		d.pinch = nil
	}
}

func (d *Dispatcher) setBrightness(m float64) {
	percent := BrightnessPercent(m, d.params.BrightnessBase, d.params.BrightnessGain)
	d.check("set_brightness", d.sink.SetBrightness(percent))
}

func (d *Dispatcher) changeVolume(m float64) {
	switch {
	case m > 0:
		d.check("volume_up", d.sink.KeyTap(input.VolumeUp))
	case m < 0:
		d.check("volume_down", d.sink.KeyTap(input.VolumeDown))
	}
}

func (d *Dispatcher) scrollVertical(m float64) {
	delta := -d.params.ScrollUnit
	if m > 0 {
		delta = d.params.ScrollUnit
	}
	d.check("scroll", d.sink.Scroll(delta, input.ScrollVertical))
}

func (d *Dispatcher) scrollHorizontal(m float64) {
	delta := d.params.ScrollUnit
	if m > 0 {
		delta = -d.params.ScrollUnit
	}
	d.check("scroll", d.sink.Scroll(delta, input.ScrollHorizontal))
}

// check logs a failed side effect. Sink failures never stop dispatch.
func (d *Dispatcher) check(op string, err error) {
	if err != nil {
		d.log.WithError(err).WithField("op", op).Error("input failed")
	}
}

func (d *Dispatcher) emit(e Event) {
	if d.onEvent == nil {
		return
	}
	e.Time = d.now()
	d.onEvent(e)
}

// BrightnessPercent maps a committed pinch magnitude to a brightness
// percentage, truncated and clamped to [0, 100].
func BrightnessPercent(m, base, gain float64) int {
	p := int(base + gain*m)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
