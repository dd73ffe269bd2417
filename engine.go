// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
)

// EngineCommand selects the operation performed by the debug interface
// engine below this layer. The numbering is part of the engine contract.
type EngineCommand uint8

const (
	EngineCmdReset EngineCommand = iota
	EngineCmdPinsWrite
	EngineCmdTransact
	EngineCmdSetSwd
	EngineCmdSetJtag
	EngineCmdSetSwj
	EngineCmdSetPowerDown
	EngineCmdSetClock
	EngineCmdSetConfig
	EngineCmdWait
	EngineCmdClearError
	EngineCmdSetResetTimer
	EngineCmdSetTransferConfig
)

// EngineRequest is the operand register set staged before raising go.
type EngineRequest struct {
	Command EngineCommand

	// 32 bit write operand
	DWrite uint32

	// register access selectors for EngineCmdTransact
	APnDP bool
	RnW   bool
	Addr  uint8 // address bits A[3:2]

	// raw pin state and select mask for EngineCmdPinsWrite
	PinsIn uint16

	// countdown for timed pin operations
	Countdown uint32
}

// EngineResult is the ack/status/data triple valid after the done edge.
// It must be consumed exactly once per completed request.
type EngineResult struct {
	Ack           uint8
	ProtocolError bool

	// Again asks for the request to be reissued unchanged without
	// consuming an element of the surrounding transfer.
	Again bool

	// posted access indicators
	PostedMode bool
	IgnoreData bool

	DRead   uint32
	PinsOut uint8
}

// Engine is the two-phase handshake contract with the debug interface.
// The engine may run in a different timing domain, so no result state may
// be inspected before Wait returns: Submit corresponds to the go/accept
// edge, Wait to the done edge.
type Engine interface {
	// Submit blocks until the engine has accepted the request.
	Submit(ctx context.Context, req EngineRequest) error

	// Wait blocks until the previously submitted request has completed
	// and returns its result.
	Wait(ctx context.Context) (EngineResult, error)
}

// engineRoundTrip drives one full accept/complete cycle.
func engineRoundTrip(ctx context.Context, e Engine, req EngineRequest) (EngineResult, error) {
	if err := e.Submit(ctx, req); err != nil {
		return EngineResult{}, err
	}

	return e.Wait(ctx)
}

// AsyncEngine adapts an engine running in its own goroutine to the Engine
// contract. Both channels are unbuffered, so the send in Submit completes
// exactly when the engine goroutine picks the request up, and a result
// can only be observed after the engine published it.
type AsyncEngine struct {
	req  chan EngineRequest
	done chan EngineResult
}

func NewAsyncEngine() *AsyncEngine {
	return &AsyncEngine{
		req:  make(chan EngineRequest),
		done: make(chan EngineResult),
	}
}

func (e *AsyncEngine) Submit(ctx context.Context, req EngineRequest) error {
	select {
	case e.req <- req:
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *AsyncEngine) Wait(ctx context.Context) (EngineResult, error) {
	select {
	case res := <-e.done:
		return res, nil

	case <-ctx.Done():
		return EngineResult{}, ctx.Err()
	}
}

// Requests is the engine side of the handshake: each received request has
// been accepted and must be answered with exactly one Complete call.
func (e *AsyncEngine) Requests() <-chan EngineRequest {
	return e.req
}

func (e *AsyncEngine) Complete(ctx context.Context, res EngineResult) error {
	select {
	case e.done <- res:
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}
