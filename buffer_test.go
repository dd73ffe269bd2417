// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferLittleEndianAccess(t *testing.T) {
	b := NewBuffer(8)

	b.WriteUint32LE(0x11223344)
	b.WriteUint16LE(0xaabb)

	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11, 0xbb, 0xaa}, b.Bytes())

	// readers peek at the head of the buffer
	assert.Equal(t, uint32(0x11223344), b.ReadUint32LE())
	assert.Equal(t, uint16(0x3344), b.ReadUint16LE())
	assert.Equal(t, uint32(0x44332211), b.ReadUint32BE())
	assert.Equal(t, uint16(0x4433), b.ReadUint16BE())
}

func TestByteOrderHelpers(t *testing.T) {
	assert.Equal(t, uint16(0x3412), le_to_h_u16([]byte{0x12, 0x34}))
	assert.Equal(t, uint32(0x78563412), le_to_h_u32([]byte{0x12, 0x34, 0x56, 0x78}))

	var out [4]byte
	uint32ToLittleEndian(out[:], 0xdeadbeef)
	assert.Equal(t, [4]byte{0xef, 0xbe, 0xad, 0xde}, out)
}
