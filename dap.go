// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the orbtrace project
// CMSIS-DAP gateware, for detailed information see

// https://github.com/orbcode/orbtrace

package godap

import (
	"context"

	"github.com/boljen/go-bitmap"
)

// PortMode is the transport selected by DAP_Connect.
type PortMode uint8

const (
	PortModeNone PortMode = 0
	PortModeSwd  PortMode = 1
	PortModeJtag PortMode = 2
)

type coreState uint8

const (
	stateIdle coreState = iota
	stateRxParams
	stateRespond
)

type Config struct {
	v2           bool
	capabilities byte
}

// NewConfig describes one debug unit. v2 selects the bulk-endpoint
// transport and with it the 500 byte maximum packet size.
func NewConfig(v2 bool, capabilities byte) *Config {
	config := &Config{
		v2:           v2,
		capabilities: capabilities,
	}

	return config
}

// DAP is the CMSIS-DAP command core: it decodes command frames arriving on
// the host stream, drives the debug interface engine and streams typed
// responses back. One core owns exactly one frame at a time.
type DAP struct {
	config *Config
	engine Engine

	// host facing streams: cmd carries request bytes toward the core,
	// resp carries response bytes back
	cmd  Stream
	resp Stream

	state coreState

	// inbound frame, opcode plus fixed operands
	rxBlock [rxBlockSize]byte
	rxLen   int
	rxedLen int

	// outbound frame with declared length and send cursor
	txBlock [txBlockSize]byte
	txLen   int
	txedLen int

	// session flags, persist across commands
	connected bool
	running   bool
	mode      PortMode

	caps bitmap.Bitmap

	// transfer configuration from DAP_TransferConfigure
	waitRetry  uint16
	matchRetry uint16

	// match mask register for value-match transfers
	matchMask uint32

	// jtag chain bookkeeping from DAP_JTAG_Configure
	deviceCount uint8
	irLength    uint8

	store scratchStore
}

func New(config *Config, engine Engine, cmd Stream, resp Stream) *DAP {
	d := &DAP{
		config: config,
		engine: engine,
		cmd:    cmd,
		resp:   resp,
		caps:   bitmap.Bitmap{config.capabilities},
	}

	return d
}

func (d *DAP) Connected() bool {
	return d.connected
}

func (d *DAP) Running() bool {
	return d.running
}

func (d *DAP) Mode() PortMode {
	return d.mode
}

// Run executes the command loop until the context is cancelled or the
// command stream closes.
func (d *DAP) Run(ctx context.Context) error {
	for {
		if err := d.step(ctx); err != nil {
			return err
		}
	}
}

// step advances the core by one state. Every malformed input ends in a
// response and a return to idle; there is no terminal error state.
func (d *DAP) step(ctx context.Context) error {
	switch d.state {
	case stateIdle:
		return d.stepIdle(ctx)

	case stateRxParams:
		return d.stepRxParams(ctx)

	case stateRespond:
		return d.stepRespond(ctx)
	}

	logger.Errorf("undefined core state %d", d.state)
	d.state = stateIdle
	return nil
}

func (d *DAP) stepIdle(ctx context.Context) error {
	b, err := d.cmd.recv(ctx)

	if err != nil {
		return err
	}

	if !b.First {
		// mid-packet byte with no command in progress, overrun or
		// similar upstream
		logger.Debugf("dropping stray byte 0x%02x outside packet", b.Payload)
		return nil
	}

	d.rxBlock[0] = b.Payload
	d.rxedLen = 1

	// default response is the echoed opcode followed by a good status
	d.txBlock[0] = b.Payload
	d.txBlock[1] = 0
	d.txLen = 2
	d.txedLen = 0

	d.rxLen = frameLength(b.Payload)

	switch {
	case d.rxLen == frameLenUnknown:
		logger.Debugf("unknown command 0x%02x", b.Payload)
		d.respondInvalid()
		return nil

	case d.rxLen == frameLenVariable:
		// recognized but unsupported in this debug unit
		d.respondInvalid()
		return nil

	case d.rxLen == 1:
		return d.dispatch(ctx)

	case b.Last:
		// packet ended before the declared operand bytes
		d.respondInvalid()
		return nil
	}

	d.state = stateRxParams
	return nil
}

func (d *DAP) stepRxParams(ctx context.Context) error {
	b, err := d.cmd.recv(ctx)

	if err != nil {
		return err
	}

	d.rxBlock[d.rxedLen] = b.Payload
	d.rxedLen++

	if d.rxedLen == d.rxLen {
		return d.dispatch(ctx)
	}

	if b.Last {
		logger.Debugf("truncated frame for command 0x%02x: got %d of %d bytes",
			d.rxBlock[0], d.rxedLen, d.rxLen)
		d.respondInvalid()
	}

	return nil
}

func (d *DAP) stepRespond(ctx context.Context) error {
	if d.txedLen < d.txLen {
		b := StreamByte{
			Payload: d.txBlock[d.txedLen],
			First:   d.txedLen == 0,
			Last:    d.txedLen+1 == d.txLen,
		}

		if err := d.resp.send(ctx, b); err != nil {
			return err
		}

		d.txedLen++
		return nil
	}

	d.txedLen = 0
	d.rxedLen = 0
	d.state = stateIdle
	return nil
}

// dispatch runs exactly one handler for the completed frame.
func (d *DAP) dispatch(ctx context.Context) error {
	switch d.rxBlock[0] {

	// General commands
	case cmdDapInfo:
		d.respInfo()
		return nil

	case cmdDapHostStatus:
		d.respHostStatus()
		return nil

	case cmdDapConnect:
		return d.respConnect(ctx)

	case cmdDapDisconnect:
		d.respDisconnect()
		return nil

	case cmdDapWriteAbort:
		return d.respWriteAbort(ctx)

	case cmdDapDelay:
		return d.respDelay(ctx)

	case cmdDapResetTarget:
		return d.respResetTarget(ctx)

	// Common SWD/JTAG commands
	case cmdDapSwjPins:
		return d.respSwjPins(ctx)

	case cmdDapSwjClock:
		return d.respSwjClock(ctx)

	case cmdDapSwjSequence:
		return d.respSwjSequence(ctx)

	// SWD commands
	case cmdDapSwdConfigure:
		return d.respSwdConfigure(ctx)

	// SWO commands
	case cmdDapSwoTransport:
		d.respSwoTransport()
		return nil

	case cmdDapSwoMode:
		d.respSwoMode()
		return nil

	case cmdDapSwoBaudrate:
		d.respSwoBaudrate()
		return nil

	case cmdDapSwoControl:
		d.respSwoControl()
		return nil

	case cmdDapSwoStatus:
		d.respSwoStatus()
		return nil

	case cmdDapSwoExtendedStatus:
		d.respSwoExtendedStatus()
		return nil

	case cmdDapSwoData:
		return d.respSwoData(ctx)

	// JTAG commands
	case cmdDapJtagSequence:
		return d.respJtagSequence(ctx)

	case cmdDapJtagConfigure:
		d.respJtagConfigure()
		return nil

	case cmdDapJtagIdCode:
		d.respJtagIdCode()
		return nil

	// Transfer commands
	case cmdDapTransferConfigure:
		return d.respTransferConfigure(ctx)

	case cmdDapTransfer:
		return d.respTransfer(ctx)

	case cmdDapTransferBlock:
		return d.respTransferBlock(ctx)
	}

	d.respondInvalid()
	return nil
}

// respondInvalid stages the single sentinel byte answered to every
// unrecognized or malformed command. It never touches the engine.
func (d *DAP) respondInvalid() {
	d.txBlock[0] = respDapInvalid
	d.txLen = 1
	d.txedLen = 0
	d.state = stateRespond
}

// commandAndStatus runs one engine round trip and finishes with the
// standard opcode/status response, folding a protocol error into bit 0 of
// the status byte.
func (d *DAP) commandAndStatus(ctx context.Context, req EngineRequest) error {
	res, err := engineRoundTrip(ctx, d.engine, req)

	if err != nil {
		return err
	}

	if res.ProtocolError {
		d.txBlock[1] |= 0x01
	}

	d.state = stateRespond
	return nil
}

// frameLength maps an opcode to the fixed number of frame bytes the
// decoder accumulates before dispatch, including the opcode itself.
func frameLength(opcode byte) int {
	switch opcode {
	case cmdDapDisconnect, cmdDapResetTarget, cmdDapSwoStatus, cmdDapTransferAbort:
		return 1

	case cmdDapInfo, cmdDapConnect, cmdDapSwdConfigure, cmdDapSwoTransport,
		cmdDapSwjSequence, cmdDapSwoMode, cmdDapSwoControl,
		cmdDapSwoExtendedStatus, cmdDapJtagIdCode, cmdDapJtagSequence:
		return 2

	case cmdDapHostStatus, cmdDapSwoData, cmdDapDelay, cmdDapJtagConfigure,
		cmdDapTransfer:
		return 3

	case cmdDapSwoBaudrate, cmdDapSwjClock, cmdDapTransferBlock:
		return 5

	case cmdDapWriteAbort, cmdDapTransferConfigure:
		return 6

	case cmdDapSwjPins:
		return 7

	case cmdDapSwdSequence, cmdDapExecuteCommands, cmdDapQueueCommands:
		return frameLenVariable
	}

	return frameLenUnknown
}
