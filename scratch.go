// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

package godap

// scratchStore stages the 32 bit results of completed read transfers until
// the response streamer drains them. One write cursor, one read cursor,
// reset at the start of every Transfer/TransferBlock command.
type scratchStore struct {
	words [dapV2MaxPacketSize]uint32
	wr    int
	rd    int
}

func (s *scratchStore) reset() {
	s.wr = 0
	s.rd = 0
}

// store appends one result word. Words beyond the store capacity are
// dropped; a host respecting the advertised packet size never gets there.
func (s *scratchStore) store(value uint32) {
	if s.wr < len(s.words) {
		s.words[s.wr] = value
		s.wr++
	} else {
		logger.Errorf("result store overflow, dropping word 0x%08x", value)
	}
}

// next returns stored words in arrival order.
func (s *scratchStore) next() uint32 {
	value := s.words[s.rd]
	s.rd++
	return value
}

func (s *scratchStore) stored() int {
	return s.wr
}
