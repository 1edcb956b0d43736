// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package stepvm

import (
	"bytes"

	"github.com/Fantom-foundation/Floria/go/floria"
)

// maxMemoryExpansionSize is the largest memory size for which expansion
// costs do not overflow. Larger requests run out of gas.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

// memory is the byte-addressable scratch memory of a call frame. It only
// grows in steps of 32 bytes.
type memory struct {
	store []byte
	cost  floria.Gas // costs charged for the current size
}

func sizeInWords(size uint64) uint64 {
	return (size + 31) / 32
}

// memoryCost computes the total costs of a memory of the given size.
func memoryCost(size uint64) floria.Gas {
	words := sizeInWords(size)
	return floria.Gas(words*memoryGas + words*words/quadCoeffDiv)
}

func (m *memory) length() uint64 {
	return uint64(len(m.store))
}

// expand grows the memory to cover the given region and charges the
// required gas from the frame.
func (m *memory) expand(offset, size uint64, f *frame) error {
	if size == 0 {
		return nil
	}
	end := offset + size
	if end < offset || end > maxMemoryExpansionSize {
		return floria.ErrOutOfGas
	}
	if end <= m.length() {
		return nil
	}
	newSize := sizeInWords(end) * 32
	newCost := memoryCost(newSize)
	if err := f.useGas(newCost - m.cost); err != nil {
		return err
	}
	m.cost = newCost
	m.store = append(m.store, make([]byte, newSize-m.length())...)
	return nil
}

// get returns a copy of the given region. The region must be covered.
func (m *memory) get(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return bytes.Clone(m.store[offset : offset+size])
}

// set writes the value into the given region, which must be covered.
func (m *memory) set(offset uint64, value []byte) {
	copy(m.store[offset:], value)
}

// setPadded writes data[dataOffset:dataOffset+size] to the memory, padding
// missing data with zeros.
func (m *memory) setPadded(offset uint64, data []byte, dataOffset, size uint64) {
	trg := m.store[offset : offset+size]
	var n int
	if dataOffset < uint64(len(data)) {
		n = copy(trg, data[dataOffset:])
	}
	clear(trg[n:])
}
