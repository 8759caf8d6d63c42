// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789v

import (
	"fmt"
	"strconv"
	"strings"
)

// gammaLen is the number of tuning values in one gamma correction curve.
const gammaLen = 14

// Curve holds the 14 tuning values of one gamma correction curve, in
// register order.
type Curve [gammaLen]byte

// CurveSet is an ordered list of gamma correction curves. The controller
// takes two, the positive voltage curve followed by the negative one.
type CurveSet []Curve

// gammaMasks holds the documented bit width of every curve position.
// Values outside a position's width are masked down rather than
// rejected, the same way the controller ignores undefined bits.
var gammaMasks = Curve{
	0xFF, 0x3F, 0x3F, 0x1F, 0x1F, 0x3F, 0x7F, 0x77,
	0x7F, 0x3F, 0x1F, 0x1F, 0x3F, 0x3F,
}

// mask returns c with every position reduced to its documented width.
func (c Curve) mask() Curve {
	for j := range c {
		c[j] &= gammaMasks[j]
	}
	return c
}

// DefaultGamma is the manufacturer default correction, a neutral curve
// for most glass.
var DefaultGamma = CurveSet{
	{0x70, 0x2C, 0x2E, 0x15, 0x10, 0x09, 0x48, 0x33, 0x53, 0x0B, 0x19, 0x18, 0x20, 0x25},
	{0x70, 0x2C, 0x2E, 0x15, 0x10, 0x09, 0x48, 0x33, 0x53, 0x0B, 0x19, 0x18, 0x20, 0x25},
}

// HSD20IPSGamma matches the HSD20 IPS glass common on 240x280 modules.
var HSD20IPSGamma = CurveSet{
	{0xD0, 0x05, 0x0A, 0x09, 0x08, 0x05, 0x2E, 0x44, 0x45, 0x0F, 0x17, 0x16, 0x2B, 0x33},
	{0xD0, 0x05, 0x0A, 0x09, 0x08, 0x05, 0x2E, 0x43, 0x45, 0x0F, 0x16, 0x16, 0x2B, 0x33},
}

// ParseCurve parses one curve from 14 space separated hexadecimal
// values, the format panel vendors ship tuning tables in. Values wider
// than a byte are truncated; transmission masks them further.
func ParseCurve(s string) (Curve, error) {
	var c Curve
	fields := strings.Fields(s)
	if len(fields) != gammaLen {
		return c, fmt.Errorf("st7789v: gamma curve has %d values, want %d", len(fields), gammaLen)
	}
	for j, f := range fields {
		v, err := strconv.ParseUint(f, 16, 32)
		if err != nil {
			return c, fmt.Errorf("st7789v: gamma value %q: %v", f, err)
		}
		c[j] = byte(v)
	}
	return c, nil
}

// ParseCurveSet parses one curve per non-empty line.
func ParseCurveSet(s string) (CurveSet, error) {
	var cs CurveSet
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := ParseCurve(line)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}
