// Package emu provides functional RV32I emulation: the hart's register
// file, ALU, branch/jump unit, load/store unit, and the instruction
// fetch-decode-execute loop that ties them together.
package emu

// RegFile holds the 32 general-purpose integer registers x0-x31. x0 is
// hardwired to zero: writes to it are discarded and reads always
// return 0, so it is never stored explicitly.
type RegFile struct {
	x [32]uint32
}

// Read returns the value of register reg. Reading x0 always yields 0.
func (r *RegFile) Read(reg uint8) uint32 {
	if reg == 0 {
		return 0
	}
	return r.x[reg]
}

// Write stores value into register reg. Writing x0 is a no-op.
func (r *RegFile) Write(reg uint8, value uint32) {
	if reg == 0 {
		return
	}
	r.x[reg] = value
}
