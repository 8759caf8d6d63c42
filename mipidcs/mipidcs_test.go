// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mipidcs

import "testing"

func TestParamCount(t *testing.T) {
	for _, tc := range []struct {
		cmd  Command
		want int
	}{
		{Nop, 0},
		{SleepOut, 0},
		{InvertOn, 0},
		{DisplayOff, 0},
		{DisplayOn, 0},
		{GammaSet, 1},
		{MemoryAccessControl, 1},
		{PixelFormat, 1},
		{ColumnAddressSet, 4},
		{RowAddressSet, 4},
		{VerticalScrollArea, 6},
		{MemoryWrite, VariableParams},
		{MemoryWriteContinue, VariableParams},
	} {
		got, ok := tc.cmd.ParamCount()
		if !ok {
			t.Errorf("%s: ParamCount() not defined", tc.cmd)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: ParamCount() = %d, want %d", tc.cmd, got, tc.want)
		}
	}
}

func TestParamCountVendor(t *testing.T) {
	// 0xB2 is a Sitronix porch control register, not part of the DCS.
	if n, ok := Command(0xB2).ParamCount(); ok {
		t.Errorf("ParamCount() = %d for vendor opcode, want not defined", n)
	}
}

func TestString(t *testing.T) {
	for _, tc := range []struct {
		cmd  Command
		want string
	}{
		{SoftReset, "SWRESET"},
		{MemoryAccessControl, "MADCTL"},
		{ColumnAddressSet, "CASET"},
		{RowAddressSet, "RASET"},
		{MemoryWrite, "RAMWR"},
		{Command(0xB2), "0xB2"},
	} {
		if got := tc.cmd.String(); got != tc.want {
			t.Errorf("String(0x%02X) = %q, want %q", byte(tc.cmd), got, tc.want)
		}
	}
}

func TestTablesAligned(t *testing.T) {
	// Every opcode with a parameter count has a mnemonic and vice versa.
	for c := range paramCounts {
		if _, ok := commandNames[c]; !ok {
			t.Errorf("0x%02X: parameter count but no mnemonic", byte(c))
		}
	}
	for c := range commandNames {
		if _, ok := paramCounts[c]; !ok {
			t.Errorf("%s: mnemonic but no parameter count", c)
		}
	}
}
