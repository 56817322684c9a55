package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/handmouse/internal/detector"
)

// Run opens the camera and processes frames until ctx is cancelled or the
// camera is lost. On return any held button is released and the camera and
// detector are closed. A cancelled context is a clean stop and returns nil.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.shutdown()

	a.setRunning(true)
	a.log.WithField("fps", a.camera.FPS()).Info("frame loop started")

	for {
		select {
		case <-ctx.Done():
			a.log.Info("frame loop stopped")
			return nil
		default:
		}

		if err := a.step(ctx); err != nil {
			a.log.WithError(err).Error("frame loop aborted")
			return err
		}
	}
}

// step reads, detects and processes one frame.
func (a *App) step(ctx context.Context) error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.failures++
		a.log.WithError(err).WithField("failures", a.failures).Warn("frame read failed")
		if a.failures >= a.maxFailures {
			return fmt.Errorf("%w: %d consecutive read failures: %w", ErrCameraLost, a.failures, err)
		}
		a.wait(ctx, a.retryDelay)
		return nil
	}
	a.failures = 0
	defer frame.Close()

	hands, err := a.detect(frame)
	if err != nil {
		a.log.WithError(err).Warn("hand detection failed")
		return nil
	}

	a.ProcessHands(hands)
	return nil
}

// detect runs the landmark provider, skipping still frames while no hand
// is in view when the motion gate is enabled.
func (a *App) detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	if a.gate != nil {
		open := a.gate.Open(frame)
		if !open && a.lastHands == 0 {
			return nil, nil
		}
	}
	return a.detector.Detect(frame)
}

func (a *App) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (a *App) shutdown() {
	a.applyPending()
	a.dispatcher.Release()
	a.setRunning(false)

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("close camera")
	}
	if a.gate != nil {
		a.gate.Close()
	}
	if err := a.detector.Close(); err != nil {
		a.log.WithError(err).Warn("close detector")
	}

	a.mu.Lock()
	a.status.Dispatch = a.dispatcher.State()
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{
		"frames": a.Status().Frames,
	}).Info("frame loop shut down")
}

func (a *App) setRunning(running bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Running = running
}
