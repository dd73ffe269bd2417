// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"

	"github.com/boljen/go-bitmap"
)

// pin assignments on the engine's raw pin bus, values in the low byte and
// the output select mask in the high byte
const (
	pinTck = 1 << 0 // SWCLK/TCK
	pinTms = 1 << 1 // SWDIO/TMS
	pinTdi = 1 << 2
	pinTdo = 1 << 3

	// SWJ sequences drive swclk/swdio with the write enable held
	swjPinSetup = 0xFF10

	// JTAG sequences drive tck/tms/tdi
	jtagPinSetup = 0xFF00
)

// clockPin performs one full clock on the pin bus: values applied with the
// clock low, then a second handshake with the clock high. The state
// sampled on the high edge is returned.
func (d *DAP) clockPin(ctx context.Context, pins uint16) (EngineResult, error) {
	req := EngineRequest{
		Command: EngineCmdPinsWrite,
		PinsIn:  pins &^ pinTck,
	}

	if _, err := engineRoundTrip(ctx, d.engine, req); err != nil {
		return EngineResult{}, err
	}

	req.PinsIn = pins | pinTck

	return engineRoundTrip(ctx, d.engine, req)
}

// respSwjSequence clocks a raw bit sequence out of the swdio pin, one
// source byte at a time, LSB first. A count of 0 means 256 bits.
// <b:0x12> <b:Count> [n x <b:SeqDat>]
func (d *DAP) respSwjSequence(ctx context.Context) error {
	bits := int(d.rxBlock[1])

	if bits == 0 {
		bits = 256
	}

	var data byte
	bitcount := 0

	for i := 0; i < bits; i++ {
		if bitcount == 0 {
			b, err := d.cmd.recv(ctx)

			if err != nil {
				return err
			}

			data = b.Payload
		}

		pins := uint16(swjPinSetup)

		if data&1 != 0 {
			pins |= pinTms
		}

		res, err := d.clockPin(ctx, pins)

		if err != nil {
			return err
		}

		if res.ProtocolError {
			d.txBlock[1] |= 0x01
		}

		data >>= 1
		bitcount = (bitcount + 1) & 7
	}

	d.txLen = 2
	d.state = stateRespond
	return nil
}

// respJtagSequence runs seqCount JTAG sequences: each starts with an info
// byte (clock cycles 1..64 where 0 means 64, TMS level, TDO capture flag)
// followed by the TDI bytes it consumes. Captured TDO bits are packed
// after the two byte header, rounded up to a whole byte per sequence.
// <b:0x14> <b:SeqCount> n x [<b:SeqInfo> m x <b:TDIDat>]
func (d *DAP) respJtagSequence(ctx context.Context) error {
	seqCount := int(d.rxBlock[1])

	// bit cursor into the response, TDO data goes after packet id and
	// status
	tdoCount := 16
	capture := bitmap.Bitmap(d.txBlock[:])

	memset(d.txBlock[2:], txBlockSize-2, 0)

	for ; seqCount > 0; seqCount-- {
		// round any capture from the previous sequence up to a byte
		tdoCount = (tdoCount + 7) &^ 7

		info, err := d.cmd.recv(ctx)

		if err != nil {
			return err
		}

		tckCycles := int(info.Payload & 0x3f)

		if tckCycles == 0 {
			tckCycles = 64
		}

		tms := info.Payload&(1<<6) != 0
		tdoCapture := info.Payload&(1<<7) != 0

		for tckCycles > 0 {
			b, err := d.cmd.recv(ctx)

			if err != nil {
				return err
			}

			tdiData := b.Payload
			bytebits := tckCycles

			if bytebits > 8 {
				bytebits = 8
			}

			for i := 0; i < bytebits; i++ {
				pins := uint16(jtagPinSetup)

				if tms {
					pins |= pinTms
				}

				if tdiData&1 != 0 {
					pins |= pinTdi
				}

				res, err := d.clockPin(ctx, pins)

				if err != nil {
					return err
				}

				if tdoCapture {
					if tdoCount < txBlockSize*8 {
						capture.Set(tdoCount, res.PinsOut&pinTdo != 0)
						tdoCount++
					} else {
						logger.Error("jtag sequence capture overruns the response frame")
					}
				}

				tdiData >>= 1
			}

			tckCycles -= bytebits
		}
	}

	d.txLen = (tdoCount + 7) >> 3
	d.state = stateRespond
	return nil
}
