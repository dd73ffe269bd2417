// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
)

// respSwjPins stages output values and select mask for the SWJ pins,
// lets the engine apply them for the programmed wait time and echoes the
// sampled pin state back. The core never interprets pin meaning.
// <b:0x10> <b:PinOutput> <b:PinSelect> <w:PinWait>
func (d *DAP) respSwjPins(ctx context.Context) error {
	req := EngineRequest{
		Command:   EngineCmdPinsWrite,
		PinsIn:    uint16(d.rxBlock[1]) | uint16(d.rxBlock[2])<<8,
		Countdown: le_to_h_u32(d.rxBlock[3:7]),
	}

	res, err := engineRoundTrip(ctx, d.engine, req)

	if err != nil {
		return err
	}

	d.txBlock[1] = res.PinsOut
	d.txLen = 2
	d.state = stateRespond
	return nil
}
