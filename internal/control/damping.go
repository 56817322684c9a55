// Package control implements the continuous control paths: damped cursor
// motion and pinch axis-locked magnitude tracking.
package control

import (
	"image"
	"math"
)

// DampParams shape the cursor damping curve. Zones are squared pixel
// distances.
type DampParams struct {
	DeadZone  float64
	FastZone  float64
	Gain      float64
	FastRatio float64
}

// DefaultDampParams returns the stock damping curve.
func DefaultDampParams() DampParams {
	return DampParams{
		DeadZone:  25,
		FastZone:  900,
		Gain:      0.07,
		FastRatio: 2.1,
	}
}

// DampRatio maps a squared hand displacement to the cursor gain. Jitter
// inside the dead zone is dropped, medium moves scale with their length and
// fast moves get a fixed multiplier.
func DampRatio(d2 float64, p DampParams) float64 {
	switch {
	case d2 <= p.DeadZone:
		return 0
	case d2 <= p.FastZone:
		return p.Gain * math.Sqrt(d2)
	}
	return p.FastRatio
}

// Damper turns the absolute hand position into relative, damped cursor
// motion. The zero value is not usable; use NewDamper.
type Damper struct {
	params  DampParams
	prev    image.Point
	hasPrev bool
}

// NewDamper creates a damper with no previous position.
func NewDamper(p DampParams) *Damper {
	return &Damper{params: p}
}

// Target returns the new cursor position for a hand at raw screen pixels
// given the current cursor position. The first call after a reset moves
// nothing.
func (d *Damper) Target(raw, cursor image.Point) image.Point {
	if !d.hasPrev {
		d.prev = raw
		d.hasPrev = true
	}
	delta := raw.Sub(d.prev)
	d.prev = raw

	d2 := float64(delta.X*delta.X + delta.Y*delta.Y)
	ratio := DampRatio(d2, d.params)

	return image.Pt(
		cursor.X+int(float64(delta.X)*ratio),
		cursor.Y+int(float64(delta.Y)*ratio),
	)
}

// Reset forgets the previous hand position.
func (d *Damper) Reset() {
	d.prev = image.Point{}
	d.hasPrev = false
}

// Tracking reports whether a previous hand position is held.
func (d *Damper) Tracking() bool {
	return d.hasPrev
}
