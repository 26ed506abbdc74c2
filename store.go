// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package modbus

import (
	"encoding/binary"
	"sync"
)

// RegisterStore is the shared, bounded, type-partitioned register memory
// described in spec §3/§4.2: four fixed-size banks (coils, discrete
// inputs, holding registers, input registers), serialized behind a
// single mutex so every read or write observes a total order consistent
// with some serial interleaving.
//
// Bank sizes are fixed at construction (spec §3 invariant 1) and never
// change afterward. Bit banks are bit-packed little-endian within each
// byte: bit a%8 of byte a/8 holds address a.
type RegisterStore struct {
	mu sync.Mutex

	coils          []byte // bit-packed, len = ceil(coilSize/8)
	discreteInputs []byte // bit-packed, len = ceil(discreteSize/8)
	holdingRegs    []uint16
	inputRegs      []uint16

	coilSize     uint32
	discreteSize uint32
}

// NewRegisterStore constructs a store with the given fixed bank sizes.
// Every word starts at 0 and every bit starts clear (spec §3 invariant 4).
func NewRegisterStore(coilSize, discreteSize, holdingSize, inputSize uint16) *RegisterStore {
	return &RegisterStore{
		coils:          make([]byte, bitBytes(coilSize)),
		discreteInputs: make([]byte, bitBytes(discreteSize)),
		holdingRegs:    make([]uint16, holdingSize),
		inputRegs:      make([]uint16, inputSize),
		coilSize:       uint32(coilSize),
		discreteSize:   uint32(discreteSize),
	}
}

func bitBytes(n uint16) int {
	return (int(n) + 7) / 8
}

// CoilSize returns the fixed number of coils.
func (s *RegisterStore) CoilSize() uint16 { return uint16(s.coilSize) }

// DiscreteSize returns the fixed number of discrete inputs.
func (s *RegisterStore) DiscreteSize() uint16 { return uint16(s.discreteSize) }

// HoldingSize returns the fixed number of holding registers.
func (s *RegisterStore) HoldingSize() uint16 { return uint16(len(s.holdingRegs)) }

// InputSize returns the fixed number of input registers.
func (s *RegisterStore) InputSize() uint16 { return uint16(len(s.inputRegs)) }

func inRange(start, count uint16, size uint32) bool {
	return uint32(start)+uint32(count) <= size
}

// ReadCoils returns ceil(count/8) bit-packed bytes for addresses
// [start, start+count). Bit i of the request occupies bit i%8 of byte
// i/8 of the result; the last byte is zero-padded in its high bits.
func (s *RegisterStore) ReadCoils(start, count uint16) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(start, count, s.coilSize) {
		return nil, ErrOutOfRange
	}
	return readBits(s.coils, start, count), nil
}

// ReadDiscrete returns bit-packed bytes for discrete inputs [start, start+count).
func (s *RegisterStore) ReadDiscrete(start, count uint16) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(start, count, s.discreteSize) {
		return nil, ErrOutOfRange
	}
	return readBits(s.discreteInputs, start, count), nil
}

// ReadHolding returns count*2 big-endian bytes for holding registers
// [start, start+count).
func (s *RegisterStore) ReadHolding(start, count uint16) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(start, count, uint32(len(s.holdingRegs))) {
		return nil, ErrOutOfRange
	}
	return wordsToBytes(s.holdingRegs[start : start+count]), nil
}

// ReadInput returns count*2 big-endian bytes for input registers [start, start+count).
func (s *RegisterStore) ReadInput(start, count uint16) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(start, count, uint32(len(s.inputRegs))) {
		return nil, ErrOutOfRange
	}
	return wordsToBytes(s.inputRegs[start : start+count]), nil
}

// WriteCoil sets a single coil.
func (s *RegisterStore) WriteCoil(addr uint16, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(addr, 1, s.coilSize) {
		return ErrOutOfRange
	}
	setBit(s.coils, addr, value)
	return nil
}

// WriteRegister sets a single holding register.
func (s *RegisterStore) WriteRegister(addr, value uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(addr, 1, uint32(len(s.holdingRegs))) {
		return ErrOutOfRange
	}
	s.holdingRegs[addr] = value
	return nil
}

// WriteCoils sets count coils starting at start from bit-packed bytes.
// The whole range is validated before any bit is mutated, so a failed
// write leaves the bank untouched.
func (s *RegisterStore) WriteCoils(start, count uint16, packed []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(start, count, s.coilSize) {
		return ErrOutOfRange
	}
	for i := uint16(0); i < count; i++ {
		bit := (packed[i/8] & (1 << (i % 8))) != 0
		setBit(s.coils, start+i, bit)
	}
	return nil
}

// WriteRegisters sets count holding registers starting at start from
// big-endian raw bytes.
func (s *RegisterStore) WriteRegisters(start, count uint16, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !inRange(start, count, uint32(len(s.holdingRegs))) {
		return ErrOutOfRange
	}
	for i := uint16(0); i < count; i++ {
		s.holdingRegs[start+i] = binary.BigEndian.Uint16(raw[i*2:])
	}
	return nil
}

// Increment advances each address in addresses within bank by inc,
// wrapping to 0 when current >= max-inc (spec §4.2, testable property 4).
// Addresses outside the bank's bounds are skipped rather than erroring:
// the address list is internally generated configuration, not a
// client-supplied range, so per spec §4.2 it is never rejected wholesale.
// The whole tick is one critical section, so a reader never observes a
// half-updated tick (spec §5).
func (s *RegisterStore) Increment(bank Bank, addresses []uint16, inc, max uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var regs []uint16
	switch bank {
	case BankHolding:
		regs = s.holdingRegs
	case BankInput:
		regs = s.inputRegs
	default:
		return
	}

	for _, a := range addresses {
		if int(a) >= len(regs) {
			continue
		}
		cur := regs[a]
		if cur >= max-inc {
			regs[a] = 0
		} else {
			regs[a] = cur + inc
		}
	}
}

func readBits(bank []byte, start, count uint16) []byte {
	out := make([]byte, bitBytes(count))
	for i := uint16(0); i < count; i++ {
		if (bank[(start+i)/8] & (1 << ((start + i) % 8))) != 0 {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

func setBit(bank []byte, addr uint16, value bool) {
	if value {
		bank[addr/8] |= 1 << (addr % 8)
	} else {
		bank[addr/8] &^= 1 << (addr % 8)
	}
}

func wordsToBytes(words []uint16) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		binary.BigEndian.PutUint16(out[i*2:], w)
	}
	return out
}
