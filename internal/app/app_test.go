package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handmouse/internal/capture"
	"github.com/ayusman/handmouse/internal/config"
	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/dispatch"
	"github.com/ayusman/handmouse/internal/gesture"
	"github.com/ayusman/handmouse/internal/input"
)

type harness struct {
	app *App
	rec *input.Recorder
	cam *capture.MockCamera
	det *detector.MockDetector
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	h := &harness{
		rec: input.NewRecorder(1000, 1000),
		cam: capture.NewMockCamera(nil, true),
		det: detector.NewMockDetector(),
	}
	h.app = New(cfg, h.cam, h.det, h.rec, nil)
	h.app.retryDelay = 0
	return h
}

func (h *harness) frames(n int, hands ...detector.HandLandmarks) {
	for i := 0; i < n; i++ {
		h.app.ProcessHands(hands)
	}
}

var (
	rightFist  = detector.FistLandmarks(detector.Right)
	leftFist   = detector.FistLandmarks(detector.Left)
	leftPinch  = detector.PinchLandmarks(detector.Left)
	grab       = input.Call{Op: input.OpMouseDown, Button: input.LeftButton}
	letGo      = input.Call{Op: input.OpMouseUp, Button: input.LeftButton}
	stayCenter = input.Call{Op: input.OpMove, X: 500, Y: 500}
)

func TestApp_ProcessHands_FistDrags(t *testing.T) {
	h := newHarness(t, nil)

	h.frames(5, rightFist)
	assert.Empty(t, h.rec.Calls(), "fist is not stable before the sixth frame")

	h.frames(1, rightFist)
	if diff := cmp.Diff([]input.Call{grab, stayCenter}, h.rec.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	st := h.app.Status()
	assert.Equal(t, uint64(6), st.Frames)
	assert.Equal(t, 1, st.Hands)
	assert.True(t, st.Major.Is(gesture.Fist))
	assert.True(t, st.Dispatch.DragActive)
}

func TestApp_MinorPinchPreemptsMajor(t *testing.T) {
	h := newHarness(t, nil)

	h.frames(6, rightFist, leftPinch)
	assert.Empty(t, h.rec.Calls())
	st := h.app.Status().Dispatch
	assert.True(t, st.PinchMinorActive)
	assert.False(t, st.DragActive)
	require.NotNil(t, st.Pinch)
	assert.Equal(t, gesture.Minor, st.Pinch.Role)

	// the minor hand leaves and the major fist takes over at once
	h.frames(1, rightFist)
	if diff := cmp.Diff([]input.Call{grab, stayCenter}, h.rec.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	st = h.app.Status().Dispatch
	assert.False(t, st.PinchMinorActive)
	assert.Nil(t, st.Pinch)
}

func TestApp_NoHandsReleasesDrag(t *testing.T) {
	h := newHarness(t, nil)

	h.frames(6, rightFist)
	h.frames(1)

	if diff := cmp.Diff([]input.Call{grab, stayCenter, letGo}, h.rec.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_SetEnabled(t *testing.T) {
	h := newHarness(t, nil)

	h.frames(6, rightFist)
	h.rec.Reset()

	h.app.SetEnabled(false)
	assert.False(t, h.app.IsEnabled())
	assert.False(t, h.app.Status().Enabled)

	h.frames(3, rightFist)
	if diff := cmp.Diff([]input.Call{letGo}, h.rec.Calls()); diff != "" {
		t.Errorf("pausing should only release the button (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(9), h.app.Status().Frames, "frames are still counted while paused")

	h.rec.Reset()
	h.app.SetEnabled(true)
	h.frames(5, rightFist)
	assert.Empty(t, h.rec.Calls(), "resuming starts from a fresh debounce")
	h.frames(1, rightFist)
	assert.Equal(t, 1, h.rec.Count(input.OpMouseDown))
}

func TestApp_SetEnabled_SameStateIsNoop(t *testing.T) {
	h := newHarness(t, nil)

	h.frames(6, rightFist)
	h.app.SetEnabled(true)
	h.frames(1, rightFist)

	assert.Equal(t, 0, h.rec.Count(input.OpMouseUp))
}

func TestApp_SetDominantHand(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.app.SetDominantHand("left"))
	assert.Equal(t, "Left", h.app.Config().DominantHand)
	assert.Equal(t, "Left", h.app.Status().DominantHand)

	h.frames(6, leftFist)
	assert.Equal(t, 1, h.rec.Count(input.OpMouseDown))
	assert.True(t, h.app.Status().Major.Is(gesture.Fist))
}

func TestApp_Apply(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{name: "stable frames", key: config.KeyStableFrames, value: "2"},
		{name: "pinch scale", key: config.KeyPinchScale, value: "20"},
		{name: "bad hand", key: config.KeyDominantHand, value: "both", wantErr: true},
		{name: "unknown key", key: "cursor.speed", value: "3", wantErr: true},
		{name: "non-numeric", key: config.KeyPinchThreshold, value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			before := h.app.Config()

			err := h.app.Apply(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, config.ErrInvalid)
				assert.Equal(t, before, h.app.Config())
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, before, h.app.Config())
		})
	}
}

func TestApp_Apply_StableFramesReachesLoop(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.app.Apply(config.KeyStableFrames, "2"))

	h.frames(2, rightFist)
	assert.Empty(t, h.rec.Calls())
	h.frames(1, rightFist)
	assert.Equal(t, 1, h.rec.Count(input.OpMouseDown))
}

func TestApp_Events(t *testing.T) {
	h := newHarness(t, nil)

	var got []dispatch.Event
	h.app.OnEvent(func(e dispatch.Event) { got = append(got, e) })

	h.frames(6, rightFist)
	h.frames(1)

	require.Len(t, got, 2)
	assert.Equal(t, dispatch.EventGesture, got[0].Type)
	assert.True(t, got[0].Gesture.Is(gesture.Fist))
	assert.True(t, got[1].Gesture.Is(gesture.Palm))
}

func TestApp_Run_CameraLost(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.MaxReadFailures = 3 })
	h.cam.FailReads(-1)

	err := h.app.Run(context.Background())

	assert.ErrorIs(t, err, ErrCameraLost)
	assert.ErrorIs(t, err, capture.ErrReadFailed)
	assert.Equal(t, 3, h.cam.Reads())
	assert.False(t, h.cam.IsOpen())
	assert.True(t, h.det.Closed())
	assert.False(t, h.app.Status().Running)
}

func TestApp_Run_ReadFailuresRecover(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.MaxReadFailures = 3 })
	h.cam.FailReads(2)
	h.det.SetHands([]detector.HandLandmarks{rightFist})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.app.OnEvent(func(dispatch.Event) { cancel() })

	require.NoError(t, h.app.Run(ctx))
	assert.Equal(t, 1, h.rec.Count(input.OpMouseDown))
}

func TestApp_Run_StopReleasesOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.det.SetHands([]detector.HandLandmarks{rightFist})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.app.OnEvent(func(e dispatch.Event) {
		if e.Gesture.Is(gesture.Fist) {
			cancel()
		}
	})

	require.NoError(t, h.app.Run(ctx))
	require.False(t, errors.Is(ctx.Err(), context.DeadlineExceeded), "loop never saw a stable fist")

	assert.Equal(t, 1, h.rec.Count(input.OpMouseDown))
	assert.Equal(t, 1, h.rec.Count(input.OpMouseUp))
	assert.False(t, h.app.Status().Dispatch.DragActive)
	assert.False(t, h.cam.IsOpen())
	assert.True(t, h.det.Closed())
}

func TestApp_DetectErrorSkipsFrame(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.cam.Open())
	h.det.SetError(errors.New("model crashed"))

	require.NoError(t, h.app.step(context.Background()))
	assert.Equal(t, uint64(0), h.app.Status().Frames)
	assert.Equal(t, 1, h.det.Calls())
}

func TestApp_MotionGateSkipsIdleFrames(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.MotionGate.Enabled = true
		c.MotionGate.HoldFrames = 0
	})
	require.NoError(t, h.cam.Open())
	t.Cleanup(h.app.gate.Close)

	for i := 0; i < 3; i++ {
		require.NoError(t, h.app.step(context.Background()))
	}

	assert.Equal(t, 1, h.det.Calls(), "only the first frame of a still scene is analyzed")
	assert.Equal(t, uint64(3), h.app.Status().Frames)
}

func TestApp_MotionGateKeepsTrackingHands(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.MotionGate.Enabled = true
		c.MotionGate.HoldFrames = 0
	})
	require.NoError(t, h.cam.Open())
	t.Cleanup(h.app.gate.Close)
	h.det.SetHands([]detector.HandLandmarks{rightFist})

	for i := 0; i < 3; i++ {
		require.NoError(t, h.app.step(context.Background()))
	}

	assert.Equal(t, 3, h.det.Calls())
}

func TestParamsFromConfig(t *testing.T) {
	cfg := config.Default()

	if diff := cmp.Diff(gesture.DefaultParams(), GestureParams(cfg)); diff != "" {
		t.Errorf("gesture params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(dispatch.DefaultParams(), DispatchParams(cfg)); diff != "" {
		t.Errorf("dispatch params mismatch (-want +got):\n%s", diff)
	}
}
