// Package app runs the handmouse frame loop: capture, landmark detection,
// gesture arbitration and dispatch to the input sink.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/capture"
	"github.com/ayusman/handmouse/internal/config"
	"github.com/ayusman/handmouse/internal/control"
	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/dispatch"
	"github.com/ayusman/handmouse/internal/gesture"
	"github.com/ayusman/handmouse/internal/input"
	"github.com/ayusman/handmouse/internal/logging"
)

// ErrCameraLost is returned by Run when frame reads keep failing.
var ErrCameraLost = errors.New("camera lost")

// DefaultRetryDelay is the pause after a failed frame read.
const DefaultRetryDelay = 10 * time.Millisecond

// Status is a snapshot of the running loop.
type Status struct {
	RunID        string          `json:"run_id"`
	Running      bool            `json:"running"`
	Enabled      bool            `json:"enabled"`
	DominantHand string          `json:"dominant_hand"`
	Frames       uint64          `json:"frames"`
	Hands        int             `json:"hands"`
	Major        gesture.Gesture `json:"major"`
	Minor        gesture.Gesture `json:"minor"`
	Dispatch     dispatch.State  `json:"dispatch"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// App owns the frame loop. Gesture and dispatch state is only touched from
// the goroutine running Run (or calling ProcessHands); other goroutines
// talk to it through SetEnabled, Apply and Status.
type App struct {
	camera     capture.Camera
	detector   detector.Detector
	log        logrus.FieldLogger
	arbiter    *gesture.Arbiter
	dispatcher *dispatch.Dispatcher
	gate       *capture.MotionGate
	gparams    gesture.Params
	runID      uuid.UUID

	maxFailures int
	retryDelay  time.Duration
	failures    int
	lastHands   int

	mu        sync.Mutex
	cfg       config.Config
	enabled   bool
	pending   []func()
	status    Status
	listeners []func(dispatch.Event)
}

// New wires an app from a validated configuration.
func New(cfg config.Config, cam capture.Camera, det detector.Detector, sink input.Sink, log logrus.FieldLogger) *App {
	log = logging.OrDiscard(log)
	runID := uuid.New()

	a := &App{
		camera:      cam,
		detector:    det,
		log:         log.WithField("run", runID.String()),
		gparams:     GestureParams(cfg),
		runID:       runID,
		maxFailures: cfg.MaxReadFailures,
		retryDelay:  DefaultRetryDelay,
		cfg:         cfg,
		enabled:     true,
	}
	a.arbiter = gesture.NewArbiter(cfg.DominantHand, a.gparams)
	a.dispatcher = dispatch.New(sink, DispatchParams(cfg), a.log)
	a.dispatcher.OnEvent(a.emit)

	if cfg.MotionGate.Enabled {
		a.gate = capture.NewMotionGate(cfg.MotionGate.Threshold, cfg.MotionGate.HoldFrames)
	}

	a.status = Status{
		RunID:        runID.String(),
		Enabled:      true,
		DominantHand: cfg.DominantHand,
		Major:        gesture.Of(gesture.Palm),
		Minor:        gesture.Of(gesture.Palm),
		Dispatch:     a.dispatcher.State(),
	}
	return a
}

// GestureParams extracts the classifier thresholds from cfg.
func GestureParams(cfg config.Config) gesture.Params {
	g := cfg.Gesture
	return gesture.Params{
		ExtendedRatio: g.ExtendedRatio,
		RatioEpsilon:  g.RatioEpsilon,
		PinchDistance: g.PinchDistance,
		VSpreadRatio:  g.VSpreadRatio,
		ClosedDepth:   g.ClosedDepth,
		StableFrames:  g.StableFrames,
	}
}

// DispatchParams extracts the dispatcher parameters from cfg.
func DispatchParams(cfg config.Config) dispatch.Params {
	return dispatch.Params{
		Damping: control.DampParams{
			DeadZone:  cfg.Damping.DeadZone,
			FastZone:  cfg.Damping.FastZone,
			Gain:      cfg.Damping.Gain,
			FastRatio: cfg.Damping.FastRatio,
		},
		Pinch: control.PinchParams{
			Threshold:    cfg.Pinch.Threshold,
			StableFrames: cfg.Pinch.StableFrames,
			Scale:        cfg.Pinch.Scale,
		},
		BrightnessBase: cfg.Actions.BrightnessBase,
		BrightnessGain: cfg.Actions.BrightnessGain,
		ScrollUnit:     cfg.Actions.ScrollUnit,
	}
}

// RunID identifies this process run in logs and status.
func (a *App) RunID() uuid.UUID {
	return a.runID
}

// OnEvent registers a listener for dispatched gesture changes and pinch
// commits. Listeners run on the loop goroutine and must not block.
func (a *App) OnEvent(fn func(dispatch.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) emit(e dispatch.Event) {
	a.mu.Lock()
	listeners := a.listeners
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
}

// SetEnabled pauses or resumes dispatch. Pausing releases a held button on
// the next frame; resuming starts from fresh gesture state.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled == enabled {
		return
	}
	a.enabled = enabled
	a.status.Enabled = enabled
	a.pending = append(a.pending, func() {
		if enabled {
			a.arbiter = gesture.NewArbiter(a.arbiter.Dominant(), a.gparams)
		} else {
			a.dispatcher.Release()
		}
		a.log.WithField("enabled", enabled).Info("dispatch toggled")
	})
}

// IsEnabled reports whether frames are dispatched.
func (a *App) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Apply validates and applies a single setting (see config.Apply). The
// change reaches the loop before the next frame.
func (a *App) Apply(key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.cfg
	if err := next.Apply(key, value); err != nil {
		return err
	}
	a.cfg = next
	a.status.DominantHand = next.DominantHand
	a.pending = append(a.pending, func() { a.reconfigure(next) })
	return nil
}

// SetDominantHand switches the major hand between frames.
func (a *App) SetDominantHand(hand string) error {
	return a.Apply(config.KeyDominantHand, hand)
}

// Config returns the configuration currently in effect.
func (a *App) Config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Status returns the latest snapshot.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *App) reconfigure(cfg config.Config) {
	if p := GestureParams(cfg); p != a.gparams {
		a.gparams = p
		a.arbiter = gesture.NewArbiter(cfg.DominantHand, p)
	} else {
		a.arbiter.SetDominant(cfg.DominantHand)
	}
	a.dispatcher.SetParams(DispatchParams(cfg))
	a.log.WithField("dominant", cfg.DominantHand).Debug("settings applied")
}

// applyPending runs changes queued by other goroutines.
func (a *App) applyPending() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// ProcessHands runs one frame's worth of detected hands through the
// arbiter and dispatcher.
func (a *App) ProcessHands(hands []detector.HandLandmarks) {
	a.applyPending()
	a.lastHands = len(hands)

	enabled := a.IsEnabled()
	if enabled {
		a.dispatcher.Dispatch(a.arbiter.Select(hands))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Frames++
	a.status.Hands = len(hands)
	a.status.Major = a.arbiter.Tracker(gesture.Major).Stable()
	a.status.Minor = a.arbiter.Tracker(gesture.Minor).Stable()
	a.status.Dispatch = a.dispatcher.State()
	a.status.UpdatedAt = time.Now()
}
