// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwjPinsEchoesSampledState(t *testing.T) {
	tc := startDefaultCore(t)
	tc.engine.def = EngineResult{Ack: ackOk, PinsOut: 0x93}

	response := tc.roundTrip([]byte{cmdDapSwjPins, 0x93, 0xff, 0x00, 0x01, 0x00, 0x00})
	assert.Equal(t, []byte{cmdDapSwjPins, 0x93}, response)

	require.Len(t, tc.engine.requests, 1)

	req := tc.engine.requests[0]
	assert.Equal(t, EngineCmdPinsWrite, req.Command)
	assert.Equal(t, uint16(0xff93), req.PinsIn)
	assert.Equal(t, uint32(0x100), req.Countdown)
}

func TestSwjSequenceClocksEveryBit(t *testing.T) {
	tc := startDefaultCore(t)

	response := tc.roundTrip([]byte{cmdDapSwjSequence, 8, 0xa5})
	assert.Equal(t, []byte{cmdDapSwjSequence, 0x00}, response)

	// each bit is one full clock, low then high
	require.Len(t, tc.engine.requests, 16)

	// bit 0 of 0xa5 is set, so swdio is high for the first clock
	assert.Equal(t, uint16(swjPinSetup|pinTms), tc.engine.requests[0].PinsIn)
	assert.Equal(t, uint16(swjPinSetup|pinTms|pinTck), tc.engine.requests[1].PinsIn)

	// bit 1 is clear
	assert.Equal(t, uint16(swjPinSetup), tc.engine.requests[2].PinsIn)
	assert.Equal(t, uint16(swjPinSetup|pinTck), tc.engine.requests[3].PinsIn)
}

func TestSwjSequenceZeroCountMeans256(t *testing.T) {
	tc := startDefaultCore(t)

	packet := make([]byte, 2+32)
	packet[0] = cmdDapSwjSequence
	packet[1] = 0

	response := tc.roundTrip(packet)
	assert.Equal(t, []byte{cmdDapSwjSequence, 0x00}, response)
	assert.Len(t, tc.engine.requests, 512)
}

func TestJtagSequenceEmpty(t *testing.T) {
	tc := startDefaultCore(t)

	response := tc.roundTrip([]byte{cmdDapJtagSequence, 0x00})
	assert.Equal(t, []byte{cmdDapJtagSequence, 0x00}, response)
	assert.Empty(t, tc.engine.requests)
}

func TestJtagSequenceDrivesTmsAndTdi(t *testing.T) {
	tc := startDefaultCore(t)

	// one sequence, two cycles, TMS held high, TDI pattern 0b01
	response := tc.roundTrip([]byte{cmdDapJtagSequence, 0x01, 0x40 | 0x02, 0x01})
	assert.Equal(t, []byte{cmdDapJtagSequence, 0x00}, response)

	require.Len(t, tc.engine.requests, 4)

	low := tc.engine.requests[0].PinsIn
	assert.Equal(t, uint16(jtagPinSetup|pinTms|pinTdi), low)
	assert.Equal(t, uint16(jtagPinSetup|pinTms|pinTdi|pinTck), tc.engine.requests[1].PinsIn)

	// second cycle drops TDI
	assert.Equal(t, uint16(jtagPinSetup|pinTms), tc.engine.requests[2].PinsIn)
}

func TestJtagSequenceTdoCapture(t *testing.T) {
	tc := startDefaultCore(t)
	tc.engine.def = EngineResult{Ack: ackOk, PinsOut: pinTdo}

	// one sequence of five cycles with TDO capture enabled
	response := tc.roundTrip([]byte{cmdDapJtagSequence, 0x01, 0x80 | 0x05, 0x00})

	assert.Equal(t, []byte{cmdDapJtagSequence, 0x00, 0x1f}, response)
	assert.Len(t, tc.engine.requests, 10)
}

func TestJtagSequenceCaptureBytePerSequence(t *testing.T) {
	tc := startDefaultCore(t)
	tc.engine.def = EngineResult{Ack: ackOk, PinsOut: pinTdo}

	// two capturing sequences of three and two cycles: each one's TDO
	// bits land in their own response byte
	response := tc.roundTrip([]byte{cmdDapJtagSequence, 0x02,
		0x80 | 0x03, 0x00,
		0x80 | 0x02, 0x00})

	assert.Equal(t, []byte{cmdDapJtagSequence, 0x00, 0x07, 0x03}, response)
	assert.Len(t, tc.engine.requests, 10)
}

func TestJtagSequenceCaptureBitOrder(t *testing.T) {
	tc := startDefaultCore(t)

	// alternate the TDO level per cycle; capture samples the high edge,
	// which is every second engine result
	for i := 0; i < 8; i++ {
		var high EngineResult

		high.Ack = ackOk

		if i%2 == 0 {
			high.PinsOut = pinTdo
		}

		tc.engine.results = append(tc.engine.results, EngineResult{Ack: ackOk}, high)
	}

	response := tc.roundTrip([]byte{cmdDapJtagSequence, 0x01, 0x80 | 0x08, 0x00})

	// LSB first: cycle 0 lands in bit 0
	assert.Equal(t, []byte{cmdDapJtagSequence, 0x00, 0x55}, response)
}

func TestJtagSequenceLongSequenceSpansTdiBytes(t *testing.T) {
	tc := startDefaultCore(t)

	// twelve cycles consume two TDI bytes
	response := tc.roundTrip([]byte{cmdDapJtagSequence, 0x01, 0x0c, 0xff, 0x0f})
	assert.Equal(t, []byte{cmdDapJtagSequence, 0x00}, response)
	assert.Len(t, tc.engine.requests, 24)
}
