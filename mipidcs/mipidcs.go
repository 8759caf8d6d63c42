// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mipidcs defines the MIPI Display Command Set opcodes shared by
// the Sitronix and Ilitek families of TFT panel controllers.
//
// Controllers extend this set with vendor opcodes (power, porch and gamma
// registers); those live in the per-controller packages. Read-side
// opcodes are omitted on purpose, the drivers in this module talk to
// write-only panel links and never read controller state back.
package mipidcs

import "fmt"

// Command is a single-byte Display Command Set opcode.
type Command byte

const (
	Nop                 Command = 0x00
	SoftReset           Command = 0x01
	SleepIn             Command = 0x10
	SleepOut            Command = 0x11
	PartialModeOn       Command = 0x12
	NormalModeOn        Command = 0x13
	InvertOff           Command = 0x20
	InvertOn            Command = 0x21
	GammaSet            Command = 0x26
	DisplayOff          Command = 0x28
	DisplayOn           Command = 0x29
	ColumnAddressSet    Command = 0x2A
	RowAddressSet       Command = 0x2B
	MemoryWrite         Command = 0x2C
	PartialArea         Command = 0x30
	VerticalScrollArea  Command = 0x33
	TearingEffectOff    Command = 0x34
	TearingEffectOn     Command = 0x35
	MemoryAccessControl Command = 0x36
	VerticalScrollStart Command = 0x37
	IdleModeOff         Command = 0x38
	IdleModeOn          Command = 0x39
	PixelFormat         Command = 0x3A
	MemoryWriteContinue Command = 0x3C
)

// VariableParams is returned by ParamCount for opcodes that take a data
// stream instead of a fixed parameter list.
const VariableParams = -1

var paramCounts = map[Command]int{
	Nop:                 0,
	SoftReset:           0,
	SleepIn:             0,
	SleepOut:            0,
	PartialModeOn:       0,
	NormalModeOn:        0,
	InvertOff:           0,
	InvertOn:            0,
	GammaSet:            1,
	DisplayOff:          0,
	DisplayOn:           0,
	ColumnAddressSet:    4,
	RowAddressSet:       4,
	MemoryWrite:         VariableParams,
	PartialArea:         4,
	VerticalScrollArea:  6,
	TearingEffectOff:    0,
	TearingEffectOn:     1,
	MemoryAccessControl: 1,
	VerticalScrollStart: 2,
	IdleModeOff:         0,
	IdleModeOn:          0,
	PixelFormat:         1,
	MemoryWriteContinue: VariableParams,
}

// ParamCount returns the number of parameter bytes c expects, or
// VariableParams for data-stream opcodes. The second return value is
// false for opcodes outside the standard set, such as vendor extensions;
// their parameter shape is defined by the controller, not by this
// package.
func (c Command) ParamCount() (int, bool) {
	n, ok := paramCounts[c]
	return n, ok
}

var commandNames = map[Command]string{
	Nop:                 "NOP",
	SoftReset:           "SWRESET",
	SleepIn:             "SLPIN",
	SleepOut:            "SLPOUT",
	PartialModeOn:       "PTLON",
	NormalModeOn:        "NORON",
	InvertOff:           "INVOFF",
	InvertOn:            "INVON",
	GammaSet:            "GAMSET",
	DisplayOff:          "DISPOFF",
	DisplayOn:           "DISPON",
	ColumnAddressSet:    "CASET",
	RowAddressSet:       "RASET",
	MemoryWrite:         "RAMWR",
	PartialArea:         "PTLAR",
	VerticalScrollArea:  "VSCRDEF",
	TearingEffectOff:    "TEOFF",
	TearingEffectOn:     "TEON",
	MemoryAccessControl: "MADCTL",
	VerticalScrollStart: "VSCSAD",
	IdleModeOff:         "IDMOFF",
	IdleModeOn:          "IDMON",
	PixelFormat:         "COLMOD",
	MemoryWriteContinue: "WRMEMC",
}

// String returns the datasheet mnemonic for c, or the opcode in hex when
// c is not a standard command.
func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return fmt.Sprintf("0x%02X", byte(c))
}
