// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
)

// respHostStatus latches the connect/running indicator flags.
// <b:0x01> <b:type> <b:status>
func (d *DAP) respHostStatus() {
	d.state = stateRespond

	switch d.rxBlock[1] {
	case 0x00:
		d.connected = d.rxBlock[2] == 1

	case 0x01:
		d.running = d.rxBlock[2] == 1

	default:
		d.respondInvalid()
	}
}

// respConnect selects the wire transport and forwards it to the engine.
// <b:0x02> <b:Port>
func (d *DAP) respConnect(ctx context.Context) error {
	port := d.rxBlock[1]

	if d.caps.Get(capabilitySwd) &&
		(port == connectPortSwd || (port == connectPortDefault && dapConnectDefault == connectPortSwd)) {
		logger.Trace("connecting in SWD mode")

		d.txBlock[1] = connectPortSwd
		d.mode = PortModeSwd

		if _, err := engineRoundTrip(ctx, d.engine, EngineRequest{Command: EngineCmdSetSwd}); err != nil {
			return err
		}

		d.state = stateRespond
		return nil
	}

	if d.caps.Get(capabilityJtag) &&
		(port == connectPortJtag || (port == connectPortDefault && dapConnectDefault == connectPortJtag)) {
		logger.Trace("connecting in JTAG mode")

		d.txBlock[1] = connectPortJtag
		d.mode = PortModeJtag

		if _, err := engineRoundTrip(ctx, d.engine, EngineRequest{Command: EngineCmdSetJtag}); err != nil {
			return err
		}

		d.state = stateRespond
		return nil
	}

	d.respondInvalid()
	return nil
}

// respDisconnect clears the session flags. Safe to repeat.
// <b:0x03>
func (d *DAP) respDisconnect() {
	d.connected = false
	d.running = false
	d.state = stateRespond
}

// respWriteAbort posts the abort code to the DP ABORT register. It does
// not interact with any transfer already completed or in flight.
// <b:0x08> <b:DapIndex> <w:AbortCode>
func (d *DAP) respWriteAbort(ctx context.Context) error {
	// TODO: Add ABORT for JTAG
	req := EngineRequest{
		Command: EngineCmdTransact,
		APnDP:   false,
		RnW:     false,
		Addr:    0,
		DWrite:  le_to_h_u32(d.rxBlock[2:6]),
	}

	return d.commandAndStatus(ctx, req)
}

// respDelay waits in the engine for the programmed number of uS.
// <b:0x09> <s:Delay>
func (d *DAP) respDelay(ctx context.Context) error {
	req := EngineRequest{
		Command: EngineCmdWait,
		DWrite:  uint32(d.rxBlock[2]) | uint32(d.rxBlock[1])<<8,
	}

	return d.commandAndStatus(ctx, req)
}

// respResetTarget pulses the reset sequence in the engine.
// <b:0x0A>
func (d *DAP) respResetTarget(ctx context.Context) error {
	d.txBlock[1] = 0
	d.txBlock[2] = 0x80
	d.txLen = 3

	return d.commandAndStatus(ctx, EngineRequest{Command: EngineCmdReset})
}

// respSwjClock forwards the requested wire clock frequency.
// <b:0x11> <w:newclock>
func (d *DAP) respSwjClock(ctx context.Context) error {
	req := EngineRequest{
		Command: EngineCmdSetClock,
		DWrite:  le_to_h_u32(d.rxBlock[1:5]),
	}

	return d.commandAndStatus(ctx, req)
}

// respSwdConfigure forwards the SWD turnaround/data-phase configuration.
// <b:0x13> <b:ConfigByte>
func (d *DAP) respSwdConfigure(ctx context.Context) error {
	req := EngineRequest{
		Command: EngineCmdSetConfig,
		DWrite:  uint32(d.rxBlock[1]),
	}

	return d.commandAndStatus(ctx, req)
}

// respTransferConfigure latches the retry ceilings and passes the idle
// cycle count down to the engine.
// <b:0x04> <b:IdleCycles> <s:WaitRetry> <s:MatchRetry>
func (d *DAP) respTransferConfigure(ctx context.Context) error {
	d.waitRetry = le_to_h_u16(d.rxBlock[2:4])
	d.matchRetry = le_to_h_u16(d.rxBlock[4:6])

	logger.Debugf("transfer configure: idle %d, wait retry %d, match retry %d",
		d.rxBlock[1], d.waitRetry, d.matchRetry)

	req := EngineRequest{
		Command: EngineCmdSetTransferConfig,
		DWrite:  uint32(d.rxBlock[1]),
	}

	return d.commandAndStatus(ctx, req)
}
