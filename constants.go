// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// this code is mainly inspired and based on the orbtrace project
// CMSIS-DAP gateware, for detailed information see

// https://github.com/orbcode/orbtrace

package godap

// CMSIS-DAP command bytes as they arrive in the first byte of each
// request packet.
const (
	cmdDapInfo              = 0x00
	cmdDapHostStatus        = 0x01
	cmdDapConnect           = 0x02
	cmdDapDisconnect        = 0x03
	cmdDapTransferConfigure = 0x04
	cmdDapTransfer          = 0x05
	cmdDapTransferBlock     = 0x06
	cmdDapTransferAbort     = 0x07
	cmdDapWriteAbort        = 0x08
	cmdDapDelay             = 0x09
	cmdDapResetTarget       = 0x0a
	cmdDapSwjPins           = 0x10
	cmdDapSwjClock          = 0x11
	cmdDapSwjSequence       = 0x12
	cmdDapSwdConfigure      = 0x13
	cmdDapJtagSequence      = 0x14
	cmdDapJtagConfigure     = 0x15
	cmdDapJtagIdCode        = 0x16
	cmdDapSwoTransport      = 0x17
	cmdDapSwoMode           = 0x18
	cmdDapSwoBaudrate       = 0x19
	cmdDapSwoControl        = 0x1a
	cmdDapSwoStatus         = 0x1b
	cmdDapSwoData           = 0x1c
	cmdDapSwdSequence       = 0x1d
	cmdDapSwoExtendedStatus = 0x1e
	cmdDapQueueCommands     = 0x7e
	cmdDapExecuteCommands   = 0x7f

	respDapInvalid = 0xff
)

// DAP_Info sub identifiers
const (
	infoVendorId         = 0x01
	infoProductId        = 0x02
	infoSerialNumber     = 0x03
	infoFirmwareVersion  = 0x04
	infoTargetVendor     = 0x05
	infoTargetName       = 0x06
	infoCapabilities     = 0xF0
	infoTimerFrequency   = 0xF1
	infoSwoBufferSize    = 0xFD
	infoMaxPacketCount   = 0xFE
	infoMaxPacketSize    = 0xFF
)

// port selection values for DAP_Connect
const (
	connectPortDefault = 0
	connectPortSwd     = 1
	connectPortJtag    = 2
)

// capability bits reported via DAP_Info 0xF0
const (
	capabilitySwd  = 0
	capabilityJtag = 1
)

// protocol defaults, mirrored from the reference debug unit
const (
	dapConnectDefault   = connectPortSwd
	dapCapabilities     = 0x01 // SWD debug only
	dapVersionString    = "1.00"
	dapTimerFrequency   = 0x3B9ACA00 // 1uS resolution timer
	dapSwoBufferSize    = 500
	dapMaxPacketCount   = 1
	dapV1MaxPacketSize  = 64
	dapV2MaxPacketSize  = 500
)

// DAP_Transfer request byte layout
const (
	transferReqApNdp      = 1 << 0
	transferReqRnW        = 1 << 1
	transferReqAddrShift  = 2
	transferReqAddrMask   = 0x03
	transferReqValueMatch = 1 << 4
	transferReqMatchMask  = 1 << 5
)

// DAP_Transfer response status byte layout
const (
	transferRespAckMask       = 0x07
	transferRespProtocolError = 1 << 3
	transferRespValueMismatch = 1 << 4
)

// request byte for the trailing RDBUFF flush read when the debug
// interface is in posted mode: DP read, address 0x0C
const transferReqReadRdBuff = 0x0E

// engine ack codes as delivered on the 3 bit ack bus
const (
	ackOk    = 0x01
	ackWait  = 0x02
	ackFault = 0x04
)

// frame lengths by opcode, a length of 0 flags commands whose payload is
// consumed by the handler's own sub state machine
const (
	frameLenUnknown  = -1
	frameLenVariable = 0
)

// maximum bytes held by the inbound/outbound frame buffers
const (
	rxBlockSize = 7
	txBlockSize = 14
)

// SWO_Data responses are capped well below the trace buffer size while
// the trace front end remains unwired
const swoDataStubLimit = 100
