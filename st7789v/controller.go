// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789v

import (
	"image"
	"time"

	"github.com/displayworks/panels/mipidcs"
)

// controller is the command channel the sequence functions below drive.
// errorHandler implements it for hardware, tests record through it.
type controller interface {
	command(c mipidcs.Command, params ...byte)
	reset()
	settle(d time.Duration)
}

// Panel settling times. The controller misbehaves when commands follow
// power state changes too quickly; the datasheet mandates these waits
// and they block on purpose.
const (
	resetSettle     = 50 * time.Millisecond
	sleepOutSettle  = 120 * time.Millisecond
	displayOnSettle = 200 * time.Millisecond
)

// initDisplay pulses the hardware reset and replays the variant's init
// script, leaving the panel out of sleep with the display on.
func initDisplay(ctrl controller, opts *Opts) {
	ctrl.reset()
	ctrl.settle(resetSettle)

	for _, s := range opts.InitScript {
		ctrl.command(s.Cmd, s.Params...)
		if s.Settle > 0 {
			ctrl.settle(s.Settle)
		}
	}
}

// Rotation is the panel mounting rotation, clockwise.
type Rotation int

// The four rotations the controller can scan out. Anything else has no
// MADCTL encoding.
const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// addressWindow is a fully resolved memory access configuration: the
// MADCTL byte together with the inclusive GRAM window holding the
// visible area under it.
type addressWindow struct {
	madctl         byte
	x0, y0, x1, y1 int
}

// resolveOrientation computes the access configuration for rotation r.
// xres and yres are the effective resolution for r, already swapped for
// the landscape rotations. Unsupported rotations are rejected here,
// before anything reaches the panel.
func resolveOrientation(r Rotation, xres, yres int, opts *Opts) (addressWindow, error) {
	var w addressWindow
	switch r {
	case Rotation0:
	case Rotation90:
		w.madctl = madctlMV | madctlMY
	case Rotation180:
		w.madctl = madctlMX | madctlMY
	case Rotation270:
		w.madctl = madctlMV | madctlMX
	default:
		return w, ErrInvalidRotation
	}
	if opts.BGR {
		w.madctl |= madctlBGR
	}
	off := opts.offset(r)
	w.x0 = off.X
	w.y0 = off.Y
	w.x1 = off.X + xres - 1
	w.y1 = off.Y + yres - 1
	return w, nil
}

// applyOrientation programs a resolved access configuration.
func applyOrientation(ctrl controller, w addressWindow) {
	ctrl.command(mipidcs.MemoryAccessControl, w.madctl)
	setAddressWindow(ctrl, w.x0, w.y0, w.x1, w.y1)
}

// setAddressWindow points the GRAM window at an inclusive pixel
// rectangle. Coordinates are 16 bit, big endian on the wire.
func setAddressWindow(ctrl controller, x0, y0, x1, y1 int) {
	ctrl.command(mipidcs.ColumnAddressSet, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1))
	ctrl.command(mipidcs.RowAddressSet, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
}

// programGamma masks every curve to its documented bit widths and
// programs them in set order, positive curve first.
func programGamma(ctrl controller, curves CurveSet) {
	for i, c := range curves {
		m := c.mask()
		ctrl.command(pvgamctrl+mipidcs.Command(i), m[:]...)
	}
}

// blankDisplay switches the display drivers off or back on. GRAM and
// the rest of the controller state stay as they are.
func blankDisplay(ctrl controller, blank bool) {
	if blank {
		ctrl.command(mipidcs.DisplayOff)
	} else {
		ctrl.command(mipidcs.DisplayOn)
	}
}

// invertDisplay enables or disables color inversion.
func invertDisplay(ctrl controller, inverted bool) {
	if inverted {
		ctrl.command(mipidcs.InvertOn)
	} else {
		ctrl.command(mipidcs.InvertOff)
	}
}

// offset returns the GRAM coordinates of the visible area's top left
// corner for rotation r. r must be one of the four cardinal rotations.
func (o *Opts) offset(r Rotation) image.Point {
	return o.Offsets[int(r)/90]
}
