package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera plays back frames for tests. With no frames it produces blank
// 640x480 images. Read failures can be injected.
type MockCamera struct {
	mu       sync.Mutex
	frames   []*gocv.Mat
	index    int
	loop     bool
	running  bool
	fps      int
	failures int
	reads    int
}

// NewMockCamera creates a mock that plays frames once, or forever if loop
// is set. A nil frames slice loops blank frames.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop || len(frames) == 0,
		fps:    DefaultFPS,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	if c.failures != 0 {
		if c.failures > 0 {
			c.failures--
		}
		return nil, ErrReadFailed
	}

	if len(c.frames) == 0 {
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
		return &m, nil
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrReadFailed
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

// FailReads makes the next n reads fail. A negative n fails every read.
func (c *MockCamera) FailReads(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = n
}

// Reads returns how many reads were attempted while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
