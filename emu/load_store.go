package emu

import (
	"github.com/sarchlab/rv32sim/bus"
	"github.com/sarchlab/rv32sim/word"
)

// LoadStoreUnit implements RV32I's load/store family by routing every
// access through the system bus, which enforces alignment and range
// and dispatches to whichever memory region or peripheral owns the
// address.
type LoadStoreUnit struct {
	bus *bus.Bus
}

// NewLoadStoreUnit creates a LoadStoreUnit that issues accesses on bus.
func NewLoadStoreUnit(b *bus.Bus) *LoadStoreUnit {
	return &LoadStoreUnit{bus: b}
}

// LB loads a byte at addr, sign-extended to 32 bits.
func (lsu *LoadStoreUnit) LB(addr uint32) (uint32, error) {
	v, err := lsu.bus.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return word.SignExtend(v, 8), nil
}

// LBU loads a byte at addr, zero-extended to 32 bits.
func (lsu *LoadStoreUnit) LBU(addr uint32) (uint32, error) {
	return lsu.bus.Read(addr, 1)
}

// LH loads a halfword at addr, sign-extended to 32 bits.
func (lsu *LoadStoreUnit) LH(addr uint32) (uint32, error) {
	v, err := lsu.bus.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return word.SignExtend(v, 16), nil
}

// LHU loads a halfword at addr, zero-extended to 32 bits.
func (lsu *LoadStoreUnit) LHU(addr uint32) (uint32, error) {
	return lsu.bus.Read(addr, 2)
}

// LW loads a full word at addr.
func (lsu *LoadStoreUnit) LW(addr uint32) (uint32, error) {
	return lsu.bus.Read(addr, 4)
}

// SB stores the low byte of value at addr.
func (lsu *LoadStoreUnit) SB(addr, value uint32) error {
	return lsu.bus.Write(addr, 1, value)
}

// SH stores the low halfword of value at addr.
func (lsu *LoadStoreUnit) SH(addr, value uint32) error {
	return lsu.bus.Write(addr, 2, value)
}

// SW stores value at addr.
func (lsu *LoadStoreUnit) SW(addr, value uint32) error {
	return lsu.bus.Write(addr, 4, value)
}
