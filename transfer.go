// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
)

// collectWord pulls a little endian 32 bit operand from the command
// stream.
func (d *DAP) collectWord(ctx context.Context) (uint32, error) {
	var word [4]byte

	for i := range word {
		b, err := d.cmd.recv(ctx)

		if err != nil {
			return 0, err
		}

		word[i] = b.Payload
	}

	return le_to_h_u32(word[:]), nil
}

// transferStatus folds one completed engine result into the response
// status byte layout: ack in bits 0..2, protocol error in bit 3.
func transferStatus(res EngineResult) byte {
	status := res.Ack & transferRespAckMask

	if res.ProtocolError {
		status |= transferRespProtocolError
	}

	return status
}

// transferOutcome is the per-element verdict of the interpretation rules.
type transferOutcome uint8

const (
	outcomeDone transferOutcome = iota
	outcomeRetry
	outcomeAbort
)

// respTransfer executes count individually described register transfers.
// Each element carries its own request byte and, for writes, match value
// writes and mask writes, a 32 bit operand. The operation aborts early on
// an irrecoverable element and reports how many elements completed.
// <b:0x05> <b:DapIndex> <b:TfrCount> n x [<b:TfrReq> <w:TfrData>]
func (d *DAP) respTransfer(ctx context.Context) error {
	count := int(d.rxBlock[2])

	d.store.reset()

	// a request for no transfers gets a good ack straight back
	if count == 0 {
		d.txBlock[1] = 0
		d.txBlock[2] = ackOk
		d.txLen = 3
		d.state = stateRespond
		return nil
	}

	completed := 0
	status := byte(0)
	flushPosted := false

elements:
	for remaining := count; remaining > 0; remaining-- {
		b, err := d.cmd.recv(ctx)

		if err != nil {
			return err
		}

		tfrReq := b.Payload
		isRead := tfrReq&transferReqRnW != 0

		var data uint32

		// writes, value matches and mask writes all carry an operand
		if !isRead || tfrReq&(transferReqValueMatch|transferReqMatchMask) != 0 {
			if data, err = d.collectWord(ctx); err != nil {
				return err
			}
		}

		if tfrReq&transferReqMatchMask != 0 {
			// mask write is consumed locally, no engine traffic
			d.matchMask = data
			completed++
			continue
		}

		req := EngineRequest{
			Command: EngineCmdTransact,
			APnDP:   tfrReq&transferReqApNdp != 0,
			RnW:     isRead,
			Addr:    (tfrReq >> transferReqAddrShift) & transferReqAddrMask,
			DWrite:  data,
		}

		// retry counters restart on every element
		waitAttempts := 0
		matchRetries := 0

		for {
			res, err := engineRoundTrip(ctx, d.engine, req)

			if err != nil {
				return err
			}

			status = transferStatus(res)

			outcome := d.interpretTransfer(tfrReq, data, res, &status, &waitAttempts, &matchRetries)

			if outcome == outcomeRetry {
				continue
			}

			if outcome == outcomeAbort {
				flushPosted = false
				break elements
			}

			if res.Again {
				// engine wants the identical element again,
				// nothing consumed yet
				continue
			}

			flushPosted = res.PostedMode

			if res.Ack != ackOk || res.ProtocolError {
				break elements
			}

			// only completed read elements contribute result words
			if isRead && tfrReq&transferReqValueMatch == 0 && !res.IgnoreData {
				d.store.store(res.DRead)
			}

			completed++
			break
		}
	}

	if flushPosted {
		if err := d.flushPostedRead(ctx, &status); err != nil {
			return err
		}
	}

	return d.streamTransferResult(ctx, byte(completed), status)
}

// interpretTransfer applies the completion rules of one transfer attempt
// in priority order: WAIT retry budget first, then value matching.
func (d *DAP) interpretTransfer(tfrReq byte, data uint32, res EngineResult,
	status *byte, waitAttempts, matchRetries *int) transferOutcome {

	if res.Ack == ackWait {
		*waitAttempts++

		if *waitAttempts < int(d.waitRetry) {
			return outcomeRetry
		}

		logger.Debugf("transfer gave up after %d WAIT responses", *waitAttempts)
		return outcomeAbort
	}

	if tfrReq&transferReqValueMatch != 0 && tfrReq&transferReqRnW != 0 {
		if (res.DRead & d.matchMask) != data {
			if *matchRetries < int(d.matchRetry) {
				*matchRetries++
				return outcomeRetry
			}

			*status |= transferRespValueMismatch
			return outcomeAbort
		}
	}

	return outcomeDone
}

// flushPostedRead issues the final RDBUFF read that collects the last
// result when the engine is operating in posted mode.
func (d *DAP) flushPostedRead(ctx context.Context, status *byte) error {
	req := EngineRequest{
		Command: EngineCmdTransact,
		APnDP:   transferReqReadRdBuff&transferReqApNdp != 0,
		RnW:     true,
		Addr:    (transferReqReadRdBuff >> transferReqAddrShift) & transferReqAddrMask,
	}

	waitAttempts := 0

	for {
		res, err := engineRoundTrip(ctx, d.engine, req)

		if err != nil {
			return err
		}

		*status = transferStatus(res)

		if res.Ack == ackWait {
			waitAttempts++

			if waitAttempts < int(d.waitRetry) {
				continue
			}

			return nil
		}

		if res.Ack == ackOk && !res.ProtocolError && !res.IgnoreData {
			d.store.store(res.DRead)
		}

		return nil
	}
}

// streamTransferResult drains the status header and the stored result
// words to the response stream.
func (d *DAP) streamTransferResult(ctx context.Context, completed byte, status byte) error {
	words := d.store.stored()

	header := [3]byte{cmdDapTransfer, completed, status}

	for i, payload := range header {
		b := StreamByte{
			Payload: payload,
			First:   i == 0,
			Last:    i == 2 && words == 0,
		}

		if err := d.resp.send(ctx, b); err != nil {
			return err
		}
	}

	for w := 0; w < words; w++ {
		var wordBytes [4]byte

		uint32ToLittleEndian(wordBytes[:], d.store.next())

		for i, payload := range wordBytes {
			b := StreamByte{
				Payload: payload,
				Last:    w+1 == words && i == 3,
			}

			if err := d.resp.send(ctx, b); err != nil {
				return err
			}
		}
	}

	d.state = stateIdle
	return nil
}
