// Copyright 2024 The Panels Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789v

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/displayworks/panels/mipidcs"
)

// errorHandler is a wrapper for error management. The first failure
// sticks and turns every later call into a no-op.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.dc.Out(l)
}

func (eh *errorHandler) cTx(w []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, nil)
}

// command writes one opcode and its parameter bytes, the data/command
// line framing them apart. Parameter streams longer than the transport
// allows go out in pieces.
func (eh *errorHandler) command(c mipidcs.Command, params ...byte) {
	if eh.err != nil {
		return
	}
	if n := paramCount(c); n != mipidcs.VariableParams && n != len(params) {
		eh.err = fmt.Errorf("%s takes %d parameters, got %d", c, n, len(params))
		return
	}

	eh.dcOut(gpio.Low)
	eh.cTx([]byte{byte(c)})
	if len(params) == 0 {
		return
	}
	eh.dcOut(gpio.High)
	for len(params) > 0 && eh.err == nil {
		n := len(params)
		if n > eh.d.maxTxSize {
			n = eh.d.maxTxSize
		}
		eh.cTx(params[:n])
		params = params[n:]
	}
}

// reset pulses the active low hardware reset line and leaves it
// deasserted. Without a reset line it falls back to a software reset.
// Either way the panel wants a settle(resetSettle) before the next
// command.
func (eh *errorHandler) reset() {
	if eh.d.rst == nil {
		eh.command(mipidcs.SoftReset)
		return
	}
	eh.rstOut(gpio.Low)
	eh.settle(20 * time.Microsecond)
	eh.rstOut(gpio.High)
}

func (eh *errorHandler) settle(d time.Duration) {
	if eh.err != nil {
		return
	}
	time.Sleep(d)
}
