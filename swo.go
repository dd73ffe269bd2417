// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
)

// The SWO command family is answered with fixed placeholder data: the
// trace capture front end is not yet wired to real hardware and this
// behavior is kept deliberately.

// <b:0x17> <b:Transport>
func (d *DAP) respSwoTransport() {
	if d.rxBlock[1] > 2 {
		d.txBlock[1] = 0xff
	}

	d.state = stateRespond
}

// <b:0x18> <b:Mode>
func (d *DAP) respSwoMode() {
	if d.rxBlock[1] > 2 {
		d.txBlock[1] = 0xff
	}

	d.state = stateRespond
}

// <b:0x19> <w:Baudrate>
func (d *DAP) respSwoBaudrate() {
	copy(d.txBlock[1:5], d.rxBlock[1:5])
	d.txLen = 5
	d.state = stateRespond
}

// <b:0x1A> <b:Control>
func (d *DAP) respSwoControl() {
	if d.rxBlock[1] > 1 {
		d.txBlock[1] = 0xff
	}

	d.state = stateRespond
}

// <b:0x1B>
func (d *DAP) respSwoStatus() {
	d.txBlock[1] = 0
	uint32ToLittleEndian(d.txBlock[2:6], 0x11223344)
	d.txLen = 6
	d.state = stateRespond
}

// <b:0x1E> <b:Control>
func (d *DAP) respSwoExtendedStatus() {
	if d.rxBlock[1]&0xf8 != 0 {
		d.respondInvalid()
		return
	}

	d.txBlock[1] = 0
	uint32ToLittleEndian(d.txBlock[2:6], 0x11223344)
	uint32ToLittleEndian(d.txBlock[6:10], 0x55667788)
	uint32ToLittleEndian(d.txBlock[10:14], 0x99aabbcc)
	d.txLen = 14
	d.state = stateRespond
}

// respSwoData streams the requested number of trace bytes directly to the
// response stream. Placeholder bytes stand in for trace buffer content
// and the count is capped while the buffer is unwired.
// <b:0x1C> <s:TraceCount>
func (d *DAP) respSwoData(ctx context.Context) error {
	count := le_to_h_u16(d.rxBlock[1:3])

	if count > swoDataStubLimit {
		count = swoDataStubLimit
	}

	header := [4]byte{cmdDapSwoData, 0x00}
	uint16ToLittleEndian(header[2:4], count)

	for i, payload := range header {
		b := StreamByte{
			Payload: payload,
			First:   i == 0,
			Last:    i == 3 && count == 0,
		}

		if err := d.resp.send(ctx, b); err != nil {
			return err
		}
	}

	for i := uint16(0); i < count; i++ {
		b := StreamByte{
			Payload: 42,
			Last:    i+1 == count,
		}

		if err := d.resp.send(ctx, b); err != nil {
			return err
		}
	}

	d.state = stateIdle
	return nil
}
