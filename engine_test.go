// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncEngineRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	engine := NewAsyncEngine()

	go func() {
		req := <-engine.Requests()

		res := EngineResult{Ack: ackOk, DRead: req.DWrite + 1}
		engine.Complete(ctx, res)
	}()

	res, err := engineRoundTrip(ctx, engine, EngineRequest{
		Command: EngineCmdTransact,
		DWrite:  41,
	})

	require.NoError(t, err)
	assert.Equal(t, uint8(ackOk), res.Ack)
	assert.Equal(t, uint32(42), res.DRead)
}

func TestAsyncEngineSubmitBlocksUntilAccepted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	engine := NewAsyncEngine()
	submitted := make(chan struct{})

	go func() {
		engine.Submit(ctx, EngineRequest{Command: EngineCmdReset})
		close(submitted)
	}()

	select {
	case <-submitted:
		t.Fatal("submit returned before the request was accepted")
	case <-time.After(50 * time.Millisecond):
	}

	req := <-engine.Requests()
	assert.Equal(t, EngineCmdReset, req.Command)

	select {
	case <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return after acceptance")
	}
}

func TestAsyncEngineCancellation(t *testing.T) {
	engine := NewAsyncEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Submit(ctx, EngineRequest{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = engine.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamPacketFraming(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := NewStream()

	go s.SendPacket(ctx, []byte{1, 2, 3})

	first, err := s.recv(ctx)
	require.NoError(t, err)
	assert.True(t, first.First)
	assert.False(t, first.Last)

	middle, err := s.recv(ctx)
	require.NoError(t, err)
	assert.False(t, middle.First)
	assert.False(t, middle.Last)

	last, err := s.recv(ctx)
	require.NoError(t, err)
	assert.False(t, last.First)
	assert.True(t, last.Last)
}

func TestStreamSingleByteFraming(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := NewStream()

	go s.SendPacket(ctx, []byte{0x07})

	b, err := s.recv(ctx)
	require.NoError(t, err)
	assert.True(t, b.First)
	assert.True(t, b.Last)
}

func TestScratchStoreOrder(t *testing.T) {
	var s scratchStore

	s.store(10)
	s.store(20)
	s.store(30)

	assert.Equal(t, 3, s.stored())
	assert.Equal(t, uint32(10), s.next())
	assert.Equal(t, uint32(20), s.next())
	assert.Equal(t, uint32(30), s.next())

	s.reset()
	assert.Equal(t, 0, s.stored())
}
