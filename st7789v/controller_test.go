// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789v

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/displayworks/panels/mipidcs"
)

type record struct {
	cmd    mipidcs.Command
	data   []byte
	reset  bool
	settle time.Duration
}

type fakeController []record

func (r *fakeController) command(cmd mipidcs.Command, params ...byte) {
	rec := record{cmd: cmd}
	rec.data = append(rec.data, params...)
	*r = append(*r, rec)
}

func (r *fakeController) reset() {
	*r = append(*r, record{reset: true})
}

func (r *fakeController) settle(d time.Duration) {
	*r = append(*r, record{settle: d})
}

func TestInitDisplay(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts Opts
		want []record
	}{
		{
			name: "240x280",
			opts: ST7789V240x280,
			want: []record{
				{reset: true},
				{settle: 50 * time.Millisecond},
				{cmd: mipidcs.MemoryAccessControl, data: []byte{0x00}},
				{cmd: mipidcs.PixelFormat, data: []byte{0x05}},
				{cmd: porctrl, data: []byte{0x0B, 0x0B, 0x00, 0x33, 0x35}},
				{cmd: gctrl, data: []byte{0x11}},
				{cmd: vcoms, data: []byte{0x35}},
				{cmd: lcmctrl, data: []byte{0x2C}},
				{cmd: vdvvrhen, data: []byte{0x01}},
				{cmd: vrhs, data: []byte{0x0D}},
				{cmd: vdvs, data: []byte{0x20}},
				{cmd: frctrl2, data: []byte{0x13}},
				{cmd: pwctrl1, data: []byte{0xA4, 0xA1}},
				{cmd: pvgamctrl, data: []byte{
					0xF0, 0x06, 0x0B, 0x0A, 0x09, 0x26, 0x29, 0x33,
					0x41, 0x18, 0x16, 0x15, 0x29, 0x2D,
				}},
				{cmd: nvgamctrl, data: []byte{
					0xF0, 0x04, 0x08, 0x08, 0x07, 0x03, 0x28, 0x32,
					0x40, 0x3B, 0x19, 0x18, 0x2A, 0x2E,
				}},
				{cmd: gatectrl, data: []byte{0x25, 0x00, 0x00}},
				{cmd: mipidcs.InvertOn},
				{cmd: mipidcs.SleepOut},
				{settle: 120 * time.Millisecond},
				{cmd: mipidcs.DisplayOn},
				{settle: 200 * time.Millisecond},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got fakeController

			initDisplay(&got, &tc.opts)

			if diff := cmp.Diff([]record(got), tc.want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
				t.Errorf("initDisplay() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestResolveOrientation(t *testing.T) {
	for _, tc := range []struct {
		name       string
		rot        Rotation
		xres, yres int
		opts       Opts
		want       addressWindow
		wantErr    error
	}{
		{
			name: "240x280 rotation 0",
			rot:  Rotation0,
			xres: 240, yres: 280,
			opts: ST7789V240x280,
			want: addressWindow{madctl: 0x00, x0: 0, y0: 20, x1: 239, y1: 299},
		},
		{
			name: "240x280 rotation 90",
			rot:  Rotation90,
			xres: 280, yres: 240,
			opts: ST7789V240x280,
			want: addressWindow{madctl: madctlMV | madctlMY, x0: 20, y0: 0, x1: 299, y1: 239},
		},
		{
			name: "240x280 rotation 180",
			rot:  Rotation180,
			xres: 240, yres: 280,
			opts: ST7789V240x280,
			want: addressWindow{madctl: madctlMX | madctlMY, x0: 0, y0: 0, x1: 239, y1: 279},
		},
		{
			name: "240x280 rotation 270",
			rot:  Rotation270,
			xres: 280, yres: 240,
			opts: ST7789V240x280,
			want: addressWindow{madctl: madctlMV | madctlMX, x0: 0, y0: 20, x1: 279, y1: 259},
		},
		{
			name: "240x320 rotation 0",
			rot:  Rotation0,
			xres: 240, yres: 320,
			opts: ST7789V240x320,
			want: addressWindow{madctl: 0x00, x0: 0, y0: 0, x1: 239, y1: 319},
		},
		{
			name: "bgr panel",
			rot:  Rotation180,
			xres: 240, yres: 320,
			opts: Opts{W: 240, H: 320, BGR: true},
			want: addressWindow{madctl: madctlMX | madctlMY | madctlBGR, x0: 0, y0: 0, x1: 239, y1: 319},
		},
		{
			name:    "rejected rotation",
			rot:     Rotation(45),
			xres:    240,
			yres:    280,
			opts:    ST7789V240x280,
			wantErr: ErrInvalidRotation,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveOrientation(tc.rot, tc.xres, tc.yres, &tc.opts)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("resolveOrientation() error = %v, want %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(got, tc.want, cmp.AllowUnexported(addressWindow{})); diff != "" {
				t.Errorf("resolveOrientation() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestApplyOrientation(t *testing.T) {
	var got fakeController

	// A 240 wide, 240 high area 20 rows into the GRAM exercises both
	// the high byte split and the inclusive end coordinates.
	applyOrientation(&got, addressWindow{madctl: 0x00, x0: 0, y0: 20, x1: 239, y1: 259})

	want := []record{
		{cmd: mipidcs.MemoryAccessControl, data: []byte{0x00}},
		{cmd: mipidcs.ColumnAddressSet, data: []byte{0x00, 0x00, 0x00, 0xEF}},
		{cmd: mipidcs.RowAddressSet, data: []byte{0x00, 0x14, 0x01, 0x03}},
	}

	if diff := cmp.Diff([]record(got), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("applyOrientation() difference (-got +want):\n%s", diff)
	}
}

func TestSetAddressWindow(t *testing.T) {
	var got fakeController

	setAddressWindow(&got, 1, 2, 301, 302)

	want := []record{
		{cmd: mipidcs.ColumnAddressSet, data: []byte{0x00, 0x01, 0x01, 0x2D}},
		{cmd: mipidcs.RowAddressSet, data: []byte{0x00, 0x02, 0x01, 0x2E}},
	}

	if diff := cmp.Diff([]record(got), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("setAddressWindow() difference (-got +want):\n%s", diff)
	}
}

func TestProgramGamma(t *testing.T) {
	var got fakeController

	// A curve of all ones must come out as the mask table itself, a
	// curve already within the masks must pass through untouched.
	allOn := Curve{}
	for j := range allOn {
		allOn[j] = 0xFF
	}
	programGamma(&got, CurveSet{allOn, HSD20IPSGamma[1]})

	want := []record{
		{cmd: pvgamctrl, data: append([]byte{}, gammaMasks[:]...)},
		{cmd: nvgamctrl, data: append([]byte{}, HSD20IPSGamma[1][:]...)},
	}

	if diff := cmp.Diff([]record(got), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("programGamma() difference (-got +want):\n%s", diff)
	}
}

func TestBlankDisplay(t *testing.T) {
	var got fakeController

	blankDisplay(&got, true)
	blankDisplay(&got, false)

	want := []record{
		{cmd: mipidcs.DisplayOff},
		{cmd: mipidcs.DisplayOn},
	}

	if diff := cmp.Diff([]record(got), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("blankDisplay() difference (-got +want):\n%s", diff)
	}
}

func TestInvertDisplay(t *testing.T) {
	var got fakeController

	invertDisplay(&got, true)
	invertDisplay(&got, false)

	want := []record{
		{cmd: mipidcs.InvertOn},
		{cmd: mipidcs.InvertOff},
	}

	if diff := cmp.Diff([]record(got), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("invertDisplay() difference (-got +want):\n%s", diff)
	}
}
