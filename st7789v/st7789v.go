// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789v

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/displayworks/panels/mipidcs"
	"github.com/displayworks/panels/st7789v/image16bit"
)

// ErrInvalidRotation is returned when a rotation has no MADCTL encoding.
// Only the four cardinal rotations exist on this controller.
var ErrInvalidRotation = errors.New("st7789v: unsupported rotation")

// wrap adds the package prefix to errors handed to callers.
func wrap(err error) error {
	return fmt.Errorf("st7789v: %w", err)
}

// InitStep is one entry of a panel init script: a command write plus an
// optional settling wait after it.
type InitStep struct {
	Cmd    mipidcs.Command
	Params []byte
	Settle time.Duration
}

// Opts holds the configuration of one panel variant.
type Opts struct {
	// W and H are the visible resolution at Rotation0, in pixels.
	W int
	H int
	// BGR is set for glass wired with the blue and red subpixels
	// swapped.
	BGR bool
	// Offsets locates the visible area's top left corner inside the
	// controller's 240x320 GRAM, indexed by rotation in 90 degree
	// steps. Panels smaller than the GRAM sit against a different edge
	// depending on scan direction.
	Offsets [4]image.Point
	// InitScript is replayed by Init after the hardware reset.
	InitScript []InitStep
}

// ST7789V240x280 configures the 1.69" 240x280 IPS modules. Their
// visible rows float in the middle of the GRAM's 320.
var ST7789V240x280 = Opts{
	W:          240,
	H:          280,
	Offsets:    [4]image.Point{{0, 20}, {20, 0}, {0, 0}, {0, 20}},
	InitScript: defaultInitScript,
}

// ST7789V240x320 configures full size 240x320 panels, visible area and
// GRAM congruent.
var ST7789V240x320 = Opts{
	W:          240,
	H:          320,
	InitScript: defaultInitScript,
}

// defaultInitScript is the power-up sequence shipped by the panel
// vendors: porch, gate and power rails, gamma tables tuned for IPS
// glass, then inversion, sleep out and display on. IPS glass wants
// inversion enabled; use Invert(false) after Init for TN panels.
var defaultInitScript = []InitStep{
	{Cmd: mipidcs.MemoryAccessControl, Params: []byte{0x00}},
	{Cmd: mipidcs.PixelFormat, Params: []byte{colmod16bpp}},
	{Cmd: porctrl, Params: []byte{0x0B, 0x0B, 0x00, 0x33, 0x35}},
	{Cmd: gctrl, Params: []byte{0x11}},
	{Cmd: vcoms, Params: []byte{0x35}},
	{Cmd: lcmctrl, Params: []byte{0x2C}},
	{Cmd: vdvvrhen, Params: []byte{0x01}},
	{Cmd: vrhs, Params: []byte{0x0D}},
	{Cmd: vdvs, Params: []byte{0x20}},
	{Cmd: frctrl2, Params: []byte{0x13}},
	{Cmd: pwctrl1, Params: []byte{0xA4, 0xA1}},
	{Cmd: pvgamctrl, Params: []byte{0xF0, 0x06, 0x0B, 0x0A, 0x09, 0x26, 0x29, 0x33, 0x41, 0x18, 0x16, 0x15, 0x29, 0x2D}},
	{Cmd: nvgamctrl, Params: []byte{0xF0, 0x04, 0x08, 0x08, 0x07, 0x03, 0x28, 0x32, 0x40, 0x3B, 0x19, 0x18, 0x2A, 0x2E}},
	{Cmd: gatectrl, Params: []byte{0x25, 0x00, 0x00}},
	{Cmd: mipidcs.InvertOn},
	{Cmd: mipidcs.SleepOut, Settle: sleepOutSettle},
	{Cmd: mipidcs.DisplayOn, Settle: displayOnSettle},
}

// spiSpeed is the bus clock. The controller accepts writes up to 62.5ns
// per bit; panels on short leads run fine at this rate.
const spiSpeed = 16 * physic.MegaHertz

// Dev is an open handle to an ST7789V panel.
type Dev struct {
	c         conn.Conn
	dc        gpio.PinOut
	rst       gpio.PinOut
	backlight gpio.PinOut
	maxTxSize int
	opts      Opts

	// Geometry of the applied rotation.
	rotation Rotation
	rect     image.Rectangle
	offset   image.Point
}

// New opens an ST7789V over a 4-wire serial port.
//
// dc is the data/command line and is required. rst is the hardware
// reset line; pass nil when it is tied high, Init then falls back to a
// software reset. backlight drives the LED rail and may be nil.
func New(p spi.Port, dc, rst, backlight gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("st7789v: data/command pin is required")
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, wrap(err)
	}
	c, err := p.Connect(spiSpeed, spi.Mode0, 8)
	if err != nil {
		return nil, wrap(err)
	}
	// Get the maxTxSize from the conn if it implements the conn.Limits
	// interface, otherwise use a conservative default.
	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize == 0 {
		maxTxSize = 4096
	}
	d := &Dev{
		c:         c,
		dc:        dc,
		rst:       rst,
		backlight: backlight,
		maxTxSize: maxTxSize,
		opts:      *opts,
	}
	d.setGeometry(Rotation0)
	return d, nil
}

// Init resets the panel and replays the variant's init script, leaving
// the display on, out of sleep and scanning at Rotation0. It blocks for
// a bit over a third of a second, nearly all of it mandated settling
// waits.
func (d *Dev) Init() error {
	eh := errorHandler{d: d}
	initDisplay(&eh, &d.opts)
	if eh.err != nil {
		return wrap(eh.err)
	}
	d.setGeometry(Rotation0)
	return nil
}

// SetOrientation reprograms the memory access order and GRAM window for
// mounting rotation r. Bounds swap between portrait and landscape.
// Rotations other than the four cardinal ones return ErrInvalidRotation
// without touching the panel.
func (d *Dev) SetOrientation(r Rotation) error {
	xres, yres := d.opts.W, d.opts.H
	if r == Rotation90 || r == Rotation270 {
		xres, yres = yres, xres
	}
	w, err := resolveOrientation(r, xres, yres, &d.opts)
	if err != nil {
		return err
	}
	eh := errorHandler{d: d}
	applyOrientation(&eh, w)
	if eh.err != nil {
		return wrap(eh.err)
	}
	d.setGeometry(r)
	return nil
}

// SetGamma reprograms the voltage gamma correction tables. The set
// holds the positive curve followed by the negative one. Out of range
// values are masked down to each position's documented width, never
// rejected.
func (d *Dev) SetGamma(curves CurveSet) error {
	if len(curves) != 2 {
		return fmt.Errorf("st7789v: gamma set holds %d curves, want 2", len(curves))
	}
	eh := errorHandler{d: d}
	programGamma(&eh, curves)
	if eh.err != nil {
		return wrap(eh.err)
	}
	return nil
}

// Blank turns the display drivers off or back on. GRAM, the backlight
// and the rest of the controller state stay untouched, so unblanking
// brings the previous frame straight back.
func (d *Dev) Blank(blank bool) error {
	eh := errorHandler{d: d}
	blankDisplay(&eh, blank)
	if eh.err != nil {
		return wrap(eh.err)
	}
	return nil
}

// Invert enables or disables color inversion. The IPS glass these
// controllers usually drive needs inversion on, the init scripts enable
// it.
func (d *Dev) Invert(inverted bool) error {
	eh := errorHandler{d: d}
	invertDisplay(&eh, inverted)
	if eh.err != nil {
		return wrap(eh.err)
	}
	return nil
}

// SetBacklight switches the backlight rail. It reports
// display.ErrNotImplemented when no backlight pin was wired in New.
func (d *Dev) SetBacklight(on bool) error {
	if d.backlight == nil {
		return wrap(display.ErrNotImplemented)
	}
	l := gpio.Low
	if on {
		l = gpio.High
	}
	if err := d.backlight.Out(l); err != nil {
		return wrap(err)
	}
	return nil
}

// ColorModel implements display.Drawer. Pixels are RGB565.
func (d *Dev) ColorModel() color.Model {
	return image16bit.RGB565Model
}

// Bounds implements display.Drawer. Bounds follow the applied rotation.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer. The source region is converted to
// RGB565 and streamed into the GRAM window matching dstRect.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	dstRect = dstRect.Intersect(d.rect)
	if dstRect.Empty() {
		return nil
	}
	next := image16bit.New(dstRect)
	draw.Src.Draw(next, dstRect, src, srcPts)

	eh := errorHandler{d: d}
	setAddressWindow(&eh,
		d.offset.X+dstRect.Min.X, d.offset.Y+dstRect.Min.Y,
		d.offset.X+dstRect.Max.X-1, d.offset.Y+dstRect.Max.Y-1)
	eh.command(mipidcs.MemoryWrite, next.Pix...)
	if eh.err != nil {
		return wrap(eh.err)
	}
	return nil
}

// Halt implements conn.Resource. It blanks the display and cuts the
// backlight, GRAM stays intact.
func (d *Dev) Halt() error {
	eh := errorHandler{d: d}
	blankDisplay(&eh, true)
	if eh.err != nil {
		return wrap(eh.err)
	}
	if d.backlight == nil {
		return nil
	}
	if err := d.backlight.Out(gpio.Low); err != nil {
		return wrap(err)
	}
	return nil
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("st7789v.Dev{%s, %s, Width: %d, Height: %d}", d.c, d.dc, d.rect.Dx(), d.rect.Dy())
}

func (d *Dev) setGeometry(r Rotation) {
	w, h := d.opts.W, d.opts.H
	if r == Rotation90 || r == Rotation270 {
		w, h = h, w
	}
	d.rotation = r
	d.rect = image.Rect(0, 0, w, h)
	d.offset = d.opts.offset(r)
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
