// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferBlockZeroCount(t *testing.T) {
	tc := startDefaultCore(t)

	response := tc.roundTrip([]byte{cmdDapTransferBlock, 0x00, 0x00, 0x00, reqReadDp0})
	assert.Equal(t, []byte{cmdDapTransferBlock, 0x00, 0x00, ackOk}, response)
	assert.Empty(t, tc.engine.requests)
}

func TestTransferBlockReads(t *testing.T) {
	tc := startDefaultCore(t)
	tc.configureTransfers(1, 0)

	tc.engine.results = []EngineResult{
		{Ack: ackOk, DRead: 0x11223344},
		{Ack: ackOk, DRead: 0x55667788},
	}

	response := tc.roundTrip([]byte{cmdDapTransferBlock, 0x00, 0x02, 0x00, reqReadDp0})

	expected := []byte{cmdDapTransferBlock, 0x02, 0x00, ackOk,
		0x44, 0x33, 0x22, 0x11,
		0x88, 0x77, 0x66, 0x55}
	assert.Equal(t, expected, response)
	assert.Len(t, tc.engine.transacts(), 2)
}

func TestTransferBlockWrites(t *testing.T) {
	tc := startDefaultCore(t)
	tc.configureTransfers(1, 0)

	response := tc.roundTrip([]byte{cmdDapTransferBlock, 0x00, 0x02, 0x00, reqWriteAp4,
		0x01, 0x02, 0x03, 0x04,
		0x05, 0x06, 0x07, 0x08})

	assert.Equal(t, []byte{cmdDapTransferBlock, 0x02, 0x00, ackOk}, response)

	transacts := tc.engine.transacts()
	require.Len(t, transacts, 2)
	assert.Equal(t, uint32(0x04030201), transacts[0].DWrite)
	assert.Equal(t, uint32(0x08070605), transacts[1].DWrite)
	assert.True(t, transacts[0].APnDP)
	assert.False(t, transacts[0].RnW)
}

func TestTransferBlockWaitAbortPartial(t *testing.T) {
	tc := startDefaultCore(t)
	tc.configureTransfers(2, 0)

	tc.engine.results = []EngineResult{
		{Ack: ackOk, DRead: 0xaabbccdd},
		{Ack: ackWait},
		{Ack: ackWait},
	}

	response := tc.roundTrip([]byte{cmdDapTransferBlock, 0x00, 0x03, 0x00, reqReadDp0})

	// one element completed before the second exhausted its WAIT budget
	expected := []byte{cmdDapTransferBlock, 0x01, 0x00, ackWait,
		0xdd, 0xcc, 0xbb, 0xaa}
	assert.Equal(t, expected, response)
	assert.Len(t, tc.engine.transacts(), 3)
}

func TestTransferBlockWaitBudgetPerElement(t *testing.T) {
	tc := startDefaultCore(t)
	tc.configureTransfers(2, 0)

	tc.engine.results = []EngineResult{
		{Ack: ackWait},
		{Ack: ackOk, DRead: 0x00000001},
		{Ack: ackWait},
		{Ack: ackOk, DRead: 0x00000002},
	}

	response := tc.roundTrip([]byte{cmdDapTransferBlock, 0x00, 0x02, 0x00, reqReadDp0})

	expected := []byte{cmdDapTransferBlock, 0x02, 0x00, ackOk,
		0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00}
	assert.Equal(t, expected, response)
	assert.Len(t, tc.engine.transacts(), 4)
}

func TestTransferBlockFaultAbort(t *testing.T) {
	tc := startDefaultCore(t)
	tc.configureTransfers(1, 0)

	tc.engine.results = []EngineResult{
		{Ack: ackOk, DRead: 0x11111111},
		{Ack: ackFault, DRead: 0x99999999},
	}

	response := tc.roundTrip([]byte{cmdDapTransferBlock, 0x00, 0x03, 0x00, reqReadDp0})

	// the faulted read terminates the block and contributes no word
	expected := []byte{cmdDapTransferBlock, 0x01, 0x00, ackFault,
		0x11, 0x11, 0x11, 0x11}
	assert.Equal(t, expected, response)
	assert.Len(t, tc.engine.transacts(), 2)
}

func TestTransferBlockPostedFlush(t *testing.T) {
	tc := startDefaultCore(t)
	tc.configureTransfers(1, 0)

	tc.engine.results = []EngineResult{
		{Ack: ackOk, PostedMode: true, IgnoreData: true},
		{Ack: ackOk, DRead: 0x87654321},
	}

	response := tc.roundTrip([]byte{cmdDapTransferBlock, 0x00, 0x01, 0x00, reqReadDp0})

	expected := []byte{cmdDapTransferBlock, 0x01, 0x00, ackOk,
		0x21, 0x43, 0x65, 0x87}
	assert.Equal(t, expected, response)

	transacts := tc.engine.transacts()
	require.Len(t, transacts, 2)
	assert.Equal(t, uint8(3), transacts[1].Addr)
	assert.True(t, transacts[1].RnW)
}
