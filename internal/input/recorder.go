package input

import (
	"image"
	"sync"
)

// Op names a sink operation in a recorded call.
type Op string

// Recorded operations.
const (
	OpMove          Op = "move"
	OpMouseDown     Op = "mouse_down"
	OpMouseUp       Op = "mouse_up"
	OpClick         Op = "click"
	OpDoubleClick   Op = "double_click"
	OpScroll        Op = "scroll"
	OpKeyTap        Op = "key_tap"
	OpSetBrightness Op = "set_brightness"
)

// Call is one recorded sink call. Only the fields relevant to Op are set.
type Call struct {
	Op     Op
	X, Y   int
	Button Button
	Axis   ScrollAxis
	Key    Key
	Value  int
}

// Recorder is a Sink that records calls instead of performing them. Moves
// update the reported cursor position. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	cursor image.Point
	screen image.Point
	fail   map[Op]error
}

// NewRecorder creates a recorder reporting the given screen size with the
// cursor at its center.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{
		cursor: image.Pt(w/2, h/2),
		screen: image.Pt(w, h),
		fail:   make(map[Op]error),
	}
}

// FailOn makes every later call to op record and then return err. A nil
// err clears the failure.
func (r *Recorder) FailOn(op Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, op)
		return
	}
	r.fail[op] = err
}

// SetCursor moves the reported cursor without recording a call.
func (r *Recorder) SetCursor(p image.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = p
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset drops the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if c.Op == OpMove {
		r.cursor = image.Pt(c.X, c.Y)
	}
	return r.fail[c.Op]
}

func (r *Recorder) MoveCursor(x, y int) error {
	return r.record(Call{Op: OpMove, X: x, Y: y})
}

func (r *Recorder) MouseDown(b Button) error {
	return r.record(Call{Op: OpMouseDown, Button: b})
}

func (r *Recorder) MouseUp(b Button) error {
	return r.record(Call{Op: OpMouseUp, Button: b})
}

func (r *Recorder) Click(b Button) error {
	return r.record(Call{Op: OpClick, Button: b})
}

func (r *Recorder) DoubleClick() error {
	return r.record(Call{Op: OpDoubleClick, Button: LeftButton})
}

func (r *Recorder) Scroll(delta int, axis ScrollAxis) error {
	return r.record(Call{Op: OpScroll, Axis: axis, Value: delta})
}

func (r *Recorder) KeyTap(k Key) error {
	return r.record(Call{Op: OpKeyTap, Key: k})
}

func (r *Recorder) SetBrightness(percent int) error {
	return r.record(Call{Op: OpSetBrightness, Value: percent})
}

func (r *Recorder) CursorPosition() image.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

func (r *Recorder) ScreenSize() image.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}
