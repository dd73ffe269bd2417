// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"fmt"
)

type DapErrorCode int

const (
	ErrorOK       DapErrorCode = 0
	ErrorWait                  = -1
	ErrorFail                  = -2
	ErrorProtocol              = -3
	ErrorClosed                = -4
)

type DapError struct {
	errorString  string
	DapErrorCode DapErrorCode
}

func (e *DapError) Error() string {
	return e.errorString
}

func NewDapError(msg string, code DapErrorCode) error {
	return &DapError{msg, code}
}

/**
  AckToError converts the ack/perr pair of a completed engine transaction
  to a godap library error, for consumers that prefer errors over raw
  status bytes.
*/
func AckToError(ack uint8, protocolError bool) error {
	if protocolError {
		return NewDapError("protocol error on the wire", ErrorProtocol)
	}

	switch ack {
	case ackOk:
		return nil

	case ackWait:
		return NewDapError(fmt.Sprintf("target busy, ack WAIT (0x%x)", ack), ErrorWait)

	case ackFault:
		return NewDapError(fmt.Sprintf("target fault response (0x%x)", ack), ErrorFail)

	default:
		return NewDapError(fmt.Sprintf("unknown/unexpected ack code 0x%x", ack), ErrorFail)
	}
}
