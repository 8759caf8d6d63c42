// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"image"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	xdraw "golang.org/x/image/draw"
)

// TermView paints a panel's output into an ANSI terminal, one colored
// block per cell, downsampled to the requested width. Handy over ssh
// where a browser is not.
type TermView struct {
	panel   *Panel
	w       io.Writer
	palette ansi256.Palette
	cols    int

	small *image.NRGBA
	buf   bytes.Buffer
}

// NewTermView returns a view on p that is cols terminal columns wide.
// The row count follows the panel's aspect ratio, halved because
// terminal cells are about twice as tall as they are wide.
func NewTermView(p *Panel, cols int) *TermView {
	if cols <= 0 {
		cols = 60
	}
	b := p.Bounds()
	rows := cols * b.Dy() / b.Dx() / 2
	if rows < 1 {
		rows = 1
	}
	return &TermView{
		panel:   p,
		w:       colorable.NewColorableStdout(),
		palette: *ansi256.Default,
		cols:    cols,
		small:   image.NewNRGBA(image.Rect(0, 0, cols, rows)),
	}
}

// Render paints the current output. It homes the cursor first so
// successive calls redraw in place; clear the terminal once before the
// first call.
func (v *TermView) Render() error {
	src := v.panel.Snapshot()
	xdraw.ApproxBiLinear.Scale(v.small, v.small.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	v.buf.Reset()
	_, _ = v.buf.WriteString("\033[H")
	b := v.small.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _ = io.WriteString(&v.buf, v.palette.Block(v.small.NRGBAAt(x, y)))
		}
		_, _ = v.buf.WriteString("\033[0m\n")
	}
	_, err := v.buf.WriteTo(v.w)
	return err
}

// Halt resets the terminal colors so the shell prompt comes back
// clean.
func (v *TermView) Halt() error {
	_, err := v.w.Write([]byte("\n\033[0m"))
	return err
}
