// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"context"
)

// StreamByte is one transfer on a byte-synchronous stream. First marks the
// opening byte of a packet, Last its final byte.
type StreamByte struct {
	Payload byte
	First   bool
	Last    bool
}

// Stream carries StreamBytes between the packet transport and the command
// core. Channel send/receive is the valid/ready pair: a side that is not
// ready simply does not touch the channel, which stalls the producer.
type Stream chan StreamByte

func NewStream() Stream {
	return make(Stream)
}

func (s Stream) recv(ctx context.Context) (StreamByte, error) {
	select {
	case b, ok := <-s:
		if !ok {
			return StreamByte{}, NewDapError("stream closed", ErrorClosed)
		}
		return b, nil

	case <-ctx.Done():
		return StreamByte{}, ctx.Err()
	}
}

func (s Stream) send(ctx context.Context, b StreamByte) error {
	select {
	case s <- b:
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendPacket pushes data onto the stream with First/Last framing, the way
// the USB layer hands over one bulk transfer.
func (s Stream) SendPacket(ctx context.Context, data []byte) error {
	for i, payload := range data {
		b := StreamByte{
			Payload: payload,
			First:   i == 0,
			Last:    i == len(data)-1,
		}

		if err := s.send(ctx, b); err != nil {
			return err
		}
	}

	return nil
}

// ReadPacket drains the stream up to and including a byte marked Last and
// returns the accumulated packet.
func (s Stream) ReadPacket(ctx context.Context) ([]byte, error) {
	packet := NewBuffer(txBlockSize)

	for {
		b, err := s.recv(ctx)

		if err != nil {
			return nil, err
		}

		packet.WriteByte(b.Payload)

		if b.Last {
			return packet.Bytes(), nil
		}
	}
}
