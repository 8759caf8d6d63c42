// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panelsim emulates the chip side of an ST7789V panel module.
//
// The simulator exposes the same electrical surface a real module has,
// an spi.Port plus data/command, reset and backlight gpio pins, and
// interprets the byte stream the way the controller does: a byte
// arriving with the data/command line low starts a command, bytes
// arriving with it high are parameters or pixel data. Memory writes
// land in a 240x320 GRAM through the address mapping selected by
// MADCTL, so a driver can be verified pixel by pixel without glass on
// the bench.
//
// Snapshot renders what the module would show. Handler serves that
// view over HTTP with a websocket live feed, TermView paints it into
// an ANSI terminal.
package panelsim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/displayworks/panels/mipidcs"
)

// GRAM dimensions of the controller. Panels smaller than this show a
// window of it.
const (
	ramW = 240
	ramH = 320
)

// MADCTL bits, chip numbering.
const (
	madMY  = 1 << 7 // row order bottom up
	madMX  = 1 << 6 // column order right to left
	madMV  = 1 << 5 // row and column counters exchanged
	madBGR = 1 << 3 // subpixel order
)

// Opts describes the module wired around the simulated controller.
type Opts struct {
	// W and H are the visible glass dimensions at the native scan
	// direction, in pixels. Zero means the full GRAM is visible.
	W, H int
	// Origin is the GRAM coordinate behind the glass's top left
	// corner.
	Origin image.Point
	// MaxTxSize caps a single SPI transfer like a kernel spidev
	// buffer does. Zero means unlimited.
	MaxTxSize int
}

// Module240x280 mimics the 1.69" modules whose glass covers the middle
// 280 GRAM rows.
var Module240x280 = Opts{W: 240, H: 280, Origin: image.Point{Y: 20}}

// Module240x320 mimics full size modules, glass and GRAM congruent.
var Module240x320 = Opts{W: 240, H: 320}

// Panel is a simulated ST7789V module. Its pins and port are safe for
// concurrent use with the view side, the command stream itself must
// come from one writer like on real hardware.
type Panel struct {
	opts Opts

	dc  *Pin
	rst *Pin
	bl  *Pin

	mu   sync.Mutex
	gram []uint32 // 18 bit cells, r6g6b6

	madctl  byte
	colmod  byte
	sleep   bool
	on      bool
	invert  bool
	xs, xe  int
	ys, ye  int
	ca, pa  int
	cur     mipidcs.Command
	haveCur bool
	writing bool
	pix     []byte
	regs    map[mipidcs.Command][]byte
	gen     uint64
}

// New builds a powered up module. The controller wakes like silicon
// does, asleep with the display off, and wants a reset and init
// sequence before it shows anything.
func New(opts *Opts) *Panel {
	o := *opts
	if o.W <= 0 || o.W > ramW {
		o.W = ramW
	}
	if o.H <= 0 || o.H > ramH {
		o.H = ramH
	}
	if o.Origin.X < 0 || o.Origin.X > ramW-o.W {
		o.Origin.X = 0
	}
	if o.Origin.Y < 0 || o.Origin.Y > ramH-o.H {
		o.Origin.Y = 0
	}
	p := &Panel{
		opts: o,
		gram: make([]uint32, ramW*ramH),
	}
	p.dc = &Pin{panel: p, name: "DC"}
	p.rst = &Pin{panel: p, name: "RST", reset: true, level: gpio.High}
	p.bl = &Pin{panel: p, name: "BL"}
	p.mu.Lock()
	p.resetLocked()
	p.mu.Unlock()
	return p
}

// Port returns the SPI side of the module. Connect accepts any speed,
// 8 bit words only.
func (p *Panel) Port() spi.Port {
	return &simPort{panel: p}
}

// DC returns the data/command pin.
func (p *Panel) DC() *Pin { return p.dc }

// RST returns the reset pin. Driving it low and high again resets the
// controller registers, GRAM contents survive.
func (p *Panel) RST() *Pin { return p.rst }

// Backlight returns the backlight rail.
func (p *Panel) Backlight() *Pin { return p.bl }

// String implements conn.Resource.
func (p *Panel) String() string {
	return fmt.Sprintf("panelsim.Panel{%dx%d}", p.opts.W, p.opts.H)
}

// Halt implements conn.Resource. The module keeps its state, there is
// nothing to shut down.
func (p *Panel) Halt() error { return nil }

// Bounds returns the visible glass rectangle.
func (p *Panel) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.opts.W, p.opts.H)
}

// Sleeping reports whether the controller is in sleep mode.
func (p *Panel) Sleeping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sleep
}

// DisplayOn reports whether the display drivers are scanning.
func (p *Panel) DisplayOn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Inverted reports whether display inversion is enabled. IPS modules
// run with it enabled, that is their normal polarity.
func (p *Panel) Inverted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invert
}

// MADCTL returns the current memory access control byte.
func (p *Panel) MADCTL() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.madctl
}

// PixelFormat returns the current COLMOD byte.
func (p *Panel) PixelFormat() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.colmod
}

// Window returns the address window in counter coordinates, exclusive
// on the far edge.
func (p *Panel) Window() image.Rectangle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return image.Rect(p.xs, p.ys, p.xe+1, p.ye+1)
}

// Reg returns the parameter bytes last received for a command and
// whether the command arrived at all since the last reset. Zero
// parameter commands report with an empty slice. Pixel data is not
// recorded.
func (p *Panel) Reg(c mipidcs.Command) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q, ok := p.regs[c]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(q))
	copy(out, q)
	return out, true
}

// Generation counts observable state changes. Pollers compare it to
// skip rendering unchanged frames.
func (p *Panel) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// PixelAt reads a GRAM cell in physical coordinates, origin at the
// controller's column 0, row 0 rather than the glass corner. The
// value is the stored pixel expanded to 8 bit, display state does not
// affect it.
func (p *Panel) PixelAt(x, y int) color.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	if x < 0 || x >= ramW || y < 0 || y >= ramH {
		return color.NRGBA{}
	}
	r6, g6, b6 := splitCell(p.gram[y*ramW+x])
	return color.NRGBA{R: expand6(r6), G: expand6(g6), B: expand6(b6), A: 0xFF}
}

// Snapshot renders the glass as a camera would see it: black while
// asleep or blanked, otherwise the visible GRAM window decoded through
// the inversion and subpixel order in effect. The glass is modeled as
// IPS, inversion on shows pixels as written and inversion off shows
// their complement.
func (p *Panel) Snapshot() *image.NRGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image.NewNRGBA(image.Rect(0, 0, p.opts.W, p.opts.H))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	if p.sleep || !p.on {
		return img
	}
	bgr := p.madctl&madBGR != 0
	for y := 0; y < p.opts.H; y++ {
		gy := y + p.opts.Origin.Y
		for x := 0; x < p.opts.W; x++ {
			r6, g6, b6 := splitCell(p.gram[gy*ramW+x+p.opts.Origin.X])
			if !p.invert {
				r6, g6, b6 = ^r6&0x3F, ^g6&0x3F, ^b6&0x3F
			}
			if bgr {
				r6, b6 = b6, r6
			}
			o := img.PixOffset(x, y)
			img.Pix[o] = expand6(r6)
			img.Pix[o+1] = expand6(g6)
			img.Pix[o+2] = expand6(b6)
		}
	}
	return img
}

func splitCell(c uint32) (r6, g6, b6 byte) {
	return byte(c>>12) & 0x3F, byte(c>>6) & 0x3F, byte(c) & 0x3F
}

func expand6(v byte) byte {
	return v<<2 | v>>4
}

// resetLocked applies a hardware or software reset: registers back to
// power on defaults, GRAM untouched.
func (p *Panel) resetLocked() {
	p.madctl = 0
	p.colmod = 0x66
	p.sleep = true
	p.on = false
	p.invert = false
	p.xs, p.xe = 0, ramW-1
	p.ys, p.ye = 0, ramH-1
	p.ca, p.pa = 0, 0
	p.haveCur = false
	p.writing = false
	p.pix = nil
	p.regs = map[mipidcs.Command][]byte{}
	p.gen++
}

// tx feeds one SPI transfer into the command interpreter. The
// data/command level is sampled once, a real driver cannot move the
// pin in the middle of a transfer either.
func (p *Panel) tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("panelsim: the module is write only, nothing drives SDA back")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opts.MaxTxSize > 0 && len(w) > p.opts.MaxTxSize {
		return fmt.Errorf("panelsim: transfer of %d bytes exceeds the %d byte limit", len(w), p.opts.MaxTxSize)
	}
	if p.dc.level == gpio.Low {
		for _, b := range w {
			p.startCommand(mipidcs.Command(b))
		}
		return nil
	}
	for _, b := range w {
		p.dataByte(b)
	}
	return nil
}

func (p *Panel) startCommand(c mipidcs.Command) {
	p.cur, p.haveCur = c, true
	p.writing = false
	p.pix = p.pix[:0]
	p.regs[c] = nil
	switch c {
	case mipidcs.SoftReset:
		// The wipe takes the arrival record with it, put it back so
		// the reset itself stays observable.
		p.resetLocked()
		p.regs[c] = nil
	case mipidcs.SleepIn:
		p.sleep = true
		p.gen++
	case mipidcs.SleepOut:
		p.sleep = false
		p.gen++
	case mipidcs.InvertOff:
		p.invert = false
		p.gen++
	case mipidcs.InvertOn:
		p.invert = true
		p.gen++
	case mipidcs.DisplayOff:
		p.on = false
		p.gen++
	case mipidcs.DisplayOn:
		p.on = true
		p.gen++
	case mipidcs.MemoryWrite:
		p.ca, p.pa = p.xs, p.ys
		p.writing = true
	case mipidcs.MemoryWriteContinue:
		p.writing = true
	}
}

func (p *Panel) dataByte(b byte) {
	if !p.haveCur {
		// Data with no command in flight, the chip discards it.
		return
	}
	if p.writing {
		n := p.pixelSize()
		if n == 0 {
			return
		}
		p.pix = append(p.pix, b)
		if len(p.pix) == n {
			p.plot(p.pix)
			p.pix = p.pix[:0]
		}
		return
	}
	p.regs[p.cur] = append(p.regs[p.cur], b)
	p.applyParams()
}

// pixelSize returns the bytes per pixel for the COLMOD in effect, 0
// for depths the simulator does not decode.
func (p *Panel) pixelSize() int {
	switch p.colmod & 0x07 {
	case 0x05:
		return 2
	case 0x06:
		return 3
	}
	return 0
}

// applyParams acts on commands whose parameter list just completed.
// Vendor commands have no behavior here, their bytes stay available
// through Reg.
func (p *Panel) applyParams() {
	q := p.regs[p.cur]
	switch p.cur {
	case mipidcs.MemoryAccessControl:
		if len(q) == 1 {
			p.madctl = q[0]
			p.gen++
		}
	case mipidcs.PixelFormat:
		if len(q) == 1 {
			p.colmod = q[0]
		}
	case mipidcs.ColumnAddressSet:
		if len(q) == 4 {
			p.xs = int(q[0])<<8 | int(q[1])
			p.xe = int(q[2])<<8 | int(q[3])
		}
	case mipidcs.RowAddressSet:
		if len(q) == 4 {
			p.ys = int(q[0])<<8 | int(q[1])
			p.ye = int(q[2])<<8 | int(q[3])
		}
	}
}

// plot decodes one pixel, stores it at the spot the counters and
// MADCTL select, and advances the counters within the window.
func (p *Panel) plot(raw []byte) {
	var r6, g6, b6 byte
	if len(raw) == 2 {
		v := uint16(raw[0])<<8 | uint16(raw[1])
		r5 := byte(v >> 11)
		b5 := byte(v & 0x1F)
		r6 = r5<<1 | r5>>4
		g6 = byte(v>>5) & 0x3F
		b6 = b5<<1 | b5>>4
	} else {
		r6 = raw[0] >> 2
		g6 = raw[1] >> 2
		b6 = raw[2] >> 2
	}

	x, y := p.ca, p.pa
	if p.madctl&madMV != 0 {
		x, y = y, x
	}
	if p.madctl&madMX != 0 {
		x = ramW - 1 - x
	}
	if p.madctl&madMY != 0 {
		y = ramH - 1 - y
	}
	if x >= 0 && x < ramW && y >= 0 && y < ramH {
		p.gram[y*ramW+x] = uint32(r6)<<12 | uint32(g6)<<6 | uint32(b6)
		p.gen++
	}

	p.ca++
	if p.ca > p.xe {
		p.ca = p.xs
		p.pa++
		if p.pa > p.ye {
			p.pa = p.ys
		}
	}
}

// Pin is one control line of the module. It implements gpio.PinOut.
type Pin struct {
	panel *Panel
	name  string
	reset bool
	level gpio.Level
}

// String implements conn.Resource.
func (s *Pin) String() string { return s.name + "(panelsim)" }

// Halt implements conn.Resource.
func (s *Pin) Halt() error { return nil }

// Name implements pin.Pin.
func (s *Pin) Name() string { return s.name }

// Number implements pin.Pin. The lines are not host GPIOs, so there is
// no number to report.
func (s *Pin) Number() int { return -1 }

// Function implements pin.Pin.
func (s *Pin) Function() string { return "Out" }

// Out implements gpio.PinOut. A low to high edge on the reset line
// resets the controller.
func (s *Pin) Out(l gpio.Level) error {
	s.panel.mu.Lock()
	defer s.panel.mu.Unlock()
	old := s.level
	s.level = l
	if s.reset && old == gpio.Low && l == gpio.High {
		s.panel.resetLocked()
	}
	return nil
}

// PWM implements gpio.PinOut.
func (s *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("panelsim: pwm is not supported")
}

// Level returns the line's current level.
func (s *Pin) Level() gpio.Level {
	s.panel.mu.Lock()
	defer s.panel.mu.Unlock()
	return s.level
}

type simPort struct {
	panel *Panel
}

func (s *simPort) String() string { return s.panel.String() }

// Connect implements spi.Port.
func (s *simPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("panelsim: %d bit words are not supported", bits)
	}
	return &simConn{panel: s.panel}, nil
}

type simConn struct {
	panel *Panel
}

func (s *simConn) String() string { return s.panel.String() }

// Tx implements conn.Conn.
func (s *simConn) Tx(w, r []byte) error {
	return s.panel.tx(w, r)
}

// TxPackets implements spi.Conn.
func (s *simConn) TxPackets(pkts []spi.Packet) error {
	for i := range pkts {
		if err := s.panel.tx(pkts[i].W, pkts[i].R); err != nil {
			return err
		}
	}
	return nil
}

// Duplex implements conn.Conn. The module never drives data back.
func (s *simConn) Duplex() conn.Duplex {
	return conn.Half
}

// MaxTxSize implements conn.Limits.
func (s *simConn) MaxTxSize() int {
	return s.panel.opts.MaxTxSize
}

var _ spi.Port = &simPort{}
var _ spi.Conn = &simConn{}
var _ conn.Limits = &simConn{}
var _ gpio.PinOut = &Pin{}
var _ conn.Resource = &Panel{}
