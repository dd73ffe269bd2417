// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

// respJtagConfigure records the scan chain layout. Bookkeeping only, the
// chain description is not yet acted upon.
// <b:0x15> <b:Count> n x [<b:IRLength>]
func (d *DAP) respJtagConfigure() {
	d.deviceCount = d.rxBlock[1]
	d.irLength = d.rxBlock[2]

	logger.Debugf("jtag configure: %d devices, ir length %d", d.deviceCount, d.irLength)

	d.state = stateRespond
}

// respJtagIdCode answers a fixed placeholder id until the JTAG read path
// is wired to real hardware.
// <b:0x16> <b:JTAGIndex>
func (d *DAP) respJtagIdCode() {
	d.txBlock[1] = 0
	uint32ToLittleEndian(d.txBlock[2:6], 0x44332211)
	d.txLen = 6
	d.state = stateRespond
}
