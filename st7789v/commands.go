// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789v

import "github.com/displayworks/panels/mipidcs"

// Vendor commands, named after the ST7789V datasheet. The standard
// command set comes from mipidcs.
const (
	porctrl   mipidcs.Command = 0xB2 // porch setting
	gctrl     mipidcs.Command = 0xB7 // gate voltage control
	vcoms     mipidcs.Command = 0xBB // VCOM setting
	lcmctrl   mipidcs.Command = 0xC0 // LCM control
	vdvvrhen  mipidcs.Command = 0xC2 // VDV and VRH command enable
	vrhs      mipidcs.Command = 0xC3 // VRH set
	vdvs      mipidcs.Command = 0xC4 // VDV set
	vcmofset  mipidcs.Command = 0xC5 // VCOM offset set
	frctrl2   mipidcs.Command = 0xC6 // frame rate control in normal mode
	pwctrl1   mipidcs.Command = 0xD0 // power control 1
	pvgamctrl mipidcs.Command = 0xE0 // positive voltage gamma control
	nvgamctrl mipidcs.Command = 0xE1 // negative voltage gamma control
	gatectrl  mipidcs.Command = 0xE4 // gate line setting
)

var vendorParamCounts = map[mipidcs.Command]int{
	porctrl:   5,
	gctrl:     1,
	vcoms:     1,
	lcmctrl:   1,
	vdvvrhen:  1,
	vrhs:      1,
	vdvs:      1,
	vcmofset:  1,
	frctrl2:   1,
	pwctrl1:   2,
	pvgamctrl: 14,
	nvgamctrl: 14,
	gatectrl:  3,
}

// paramCount returns the parameter count for c, vendor opcodes included,
// or mipidcs.VariableParams for data streams and opcodes this driver
// knows nothing about.
func paramCount(c mipidcs.Command) int {
	if n, ok := vendorParamCounts[c]; ok {
		return n
	}
	if n, ok := c.ParamCount(); ok {
		return n
	}
	return mipidcs.VariableParams
}

// Memory data access control bits (MADCTL parameter).
const (
	madctlMY  byte = 1 << 7 // page address order, bottom to top
	madctlMX  byte = 1 << 6 // column address order, right to left
	madctlMV  byte = 1 << 5 // page and column order exchanged
	madctlML  byte = 1 << 4 // line refresh order, bottom to top
	madctlBGR byte = 1 << 3 // subpixel order is blue, green, red
)

// Interface pixel formats (COLMOD parameter). The controller powers up
// in 18 bit mode; the init scripts switch to 16 bit.
const (
	colmod16bpp byte = 0x05 // 65K colors, RGB565
	colmod18bpp byte = 0x06 // 262K colors, RGB666
)
