// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
)

// respTransferBlock applies a single request descriptor across a 16 bit
// element count. Write data is collected four bytes at a time against
// stream readiness; read results are staged in the scratch store and
// streamed back after the header. Retry handling matches DAP_Transfer,
// without per-element match semantics.
// <b:0x06> <b:DapIndex> <s:TransferCount> <b:TransferReq> n x [<w:TransferData>]
func (d *DAP) respTransferBlock(ctx context.Context) error {
	count := int(le_to_h_u16(d.rxBlock[2:4]))
	tfrReq := d.rxBlock[4]
	isRead := tfrReq&transferReqRnW != 0

	d.store.reset()

	if count == 0 {
		d.txBlock[1] = 0
		d.txBlock[2] = 0
		d.txBlock[3] = ackOk
		d.txLen = 4
		d.state = stateRespond
		return nil
	}

	req := EngineRequest{
		Command: EngineCmdTransact,
		APnDP:   tfrReq&transferReqApNdp != 0,
		RnW:     isRead,
		Addr:    (tfrReq >> transferReqAddrShift) & transferReqAddrMask,
	}

	completed := 0
	status := byte(0)
	flushPosted := false

elements:
	for remaining := count; remaining > 0; remaining-- {
		if !isRead {
			data, err := d.collectWord(ctx)

			if err != nil {
				return err
			}

			req.DWrite = data
		}

		waitAttempts := 0

		for {
			res, err := engineRoundTrip(ctx, d.engine, req)

			if err != nil {
				return err
			}

			status = transferStatus(res)

			if res.Ack == ackWait {
				waitAttempts++

				if waitAttempts < int(d.waitRetry) {
					continue
				}

				logger.Debugf("block transfer gave up after %d WAIT responses", waitAttempts)
				flushPosted = false
				break elements
			}

			if res.Again {
				continue
			}

			flushPosted = res.PostedMode

			if res.Ack != ackOk || res.ProtocolError {
				break elements
			}

			// only completed reads contribute result words
			if isRead && !res.IgnoreData {
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

	return d.streamBlockResult(ctx, uint16(completed), status)
}

// streamBlockResult sends the 4 byte block header followed by any staged
// result words.
func (d *DAP) streamBlockResult(ctx context.Context, completed uint16, status byte) error {
	words := d.store.stored()

	var header [4]byte

	header[0] = cmdDapTransferBlock
	uint16ToLittleEndian(header[1:3], completed)
	header[3] = status

	for i, payload := range header {
		b := StreamByte{
			Payload: payload,
			First:   i == 0,
			Last:    i == 3 && words == 0,
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
