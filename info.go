// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

// respInfo answers the DAP_Info sub identifier table.
// <b:0x00> <b:requestId>
func (d *DAP) respInfo() {
	d.state = stateRespond

	switch d.rxBlock[1] {
	case infoVendorId, infoProductId, infoSerialNumber, infoTargetVendor, infoTargetName:
		// identification strings are not provisioned in this firmware
		d.txBlock[1] = 0
		d.txLen = 2

	case infoFirmwareVersion:
		d.txBlock[1] = byte(len(dapVersionString) + 1)
		copy(d.txBlock[2:], dapVersionString)
		d.txBlock[2+len(dapVersionString)] = 0
		d.txLen = 7

	case infoCapabilities:
		d.txBlock[1] = 1
		d.txBlock[2] = d.config.capabilities
		d.txLen = 3

	case infoTimerFrequency:
		d.txBlock[1] = 8
		uint32ToLittleEndian(d.txBlock[2:6], dapTimerFrequency)
		d.txLen = 6

	case infoSwoBufferSize:
		d.txBlock[1] = 4
		uint32ToLittleEndian(d.txBlock[2:6], dapSwoBufferSize)
		d.txLen = 6

	case infoMaxPacketCount:
		// the reference debug unit pads this frame to 6 bytes
		d.txBlock[1] = 1
		d.txBlock[2] = dapMaxPacketCount
		memset(d.txBlock[3:6], 3, 0)
		d.txLen = 6

	case infoMaxPacketSize:
		d.txBlock[1] = 2

		if d.config.v2 {
			uint16ToLittleEndian(d.txBlock[2:4], dapV2MaxPacketSize)
		} else {
			uint16ToLittleEndian(d.txBlock[2:4], dapV1MaxPacketSize)
		}

		memset(d.txBlock[4:6], 2, 0)
		d.txLen = 6

	default:
		d.respondInvalid()
	}
}
