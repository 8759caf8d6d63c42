// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image16bit implements 16 bits per pixel RGB565 images, the
// native framebuffer format of TFT panel controllers.
package image16bit

import (
	"image"
	"image/color"
	"image/draw"
)

// RGB565 is an opaque color in the 5-6-5 bit layout panel controllers
// consume, red in the top bits.
type RGB565 uint16

// Basic colors.
const (
	Black RGB565 = 0x0000
	White RGB565 = 0xFFFF
)

// RGBA implements color.Color.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r = uint32(c>>11) & 0x1F
	r = r<<11 | r<<6 | r<<1 | r>>4
	g = uint32(c>>5) & 0x3F
	g = g<<10 | g<<4 | g>>2
	b = uint32(c) & 0x1F
	b = b<<11 | b<<6 | b<<1 | b>>4
	return r, g, b, 0xFFFF
}

// RGB565Model converts any color.Color to RGB565 by truncating each
// channel to its 5 or 6 bit width.
var RGB565Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if c, ok := c.(RGB565); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB565((r & 0xF800) | ((g & 0xFC00) >> 5) | ((b & 0xF800) >> 11))
}

// Image is an in-memory RGB565 image.
//
// Pix is laid out the way the controllers expect it over the wire, so a
// full-frame write is a single copy of Pix.
type Image struct {
	// Pix holds the image's pixels. Every pair of bytes is one pixel,
	// big endian.
	Pix []byte
	// Stride is the Pix stride between vertically adjacent pixels, in
	// bytes.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// New returns an initialized Image with all pixels black.
func New(r image.Rectangle) *Image {
	return &Image{Pix: make([]byte, 2*r.Dx()*r.Dy()), Stride: 2 * r.Dx(), Rect: r}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return RGB565Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGB565At(x, y)
}

// RGB565At is the specialized version of At().
func (i *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{x, y}.In(i.Rect)) {
		return Black
	}
	o := i.PixOffset(x, y)
	return RGB565(uint16(i.Pix[o])<<8 | uint16(i.Pix[o+1]))
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB565(x, y, RGB565Model.Convert(c).(RGB565))
}

// SetRGB565 is the specialized version of Set().
func (i *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	o := i.PixOffset(x, y)
	i.Pix[o] = byte(c >> 8)
	i.Pix[o+1] = byte(c)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*2
}

var _ draw.Image = &Image{}
