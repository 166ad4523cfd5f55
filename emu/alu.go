package emu

import "github.com/sarchlab/rv32sim/word"

// ALU implements the RV32I arithmetic, logic, compare, and shift
// operations shared by the R-type and I-type-arithmetic/shift
// instruction families. It operates purely on values — Rd/Rs1/Rs2
// register routing and immediate assembly happen in the caller (the
// hart's execute step), so every method here takes operand values, not
// register numbers.
type ALU struct{}

// NewALU creates an ALU. It holds no state: RV32I's integer ops need
// none beyond their operands.
func NewALU() *ALU { return &ALU{} }

// Add computes a + b with silent 32-bit wraparound (ADD, ADDI).
func (*ALU) Add(a, b uint32) uint32 { return a + b }

// Sub computes a - b with silent 32-bit wraparound (SUB).
func (*ALU) Sub(a, b uint32) uint32 { return a - b }

// And computes a & b (AND, ANDI).
func (*ALU) And(a, b uint32) uint32 { return a & b }

// Or computes a | b (OR, ORI).
func (*ALU) Or(a, b uint32) uint32 { return a | b }

// Xor computes a ^ b (XOR, XORI).
func (*ALU) Xor(a, b uint32) uint32 { return a ^ b }

// Sll computes a << (b & 0x1f) (SLL, SLLI).
func (*ALU) Sll(a, b uint32) uint32 { return word.ShiftLeft(a, uint(b)) }

// Srl computes a >> (b & 0x1f), logical (SRL, SRLI).
func (*ALU) Srl(a, b uint32) uint32 { return word.LogicShiftRight(a, uint(b)) }

// Sra computes a >> (b & 0x1f), arithmetic (SRA, SRAI).
func (*ALU) Sra(a, b uint32) uint32 { return word.ArithShiftRight(a, uint(b)) }

// Slt reports a < b as a signed comparison, returning 1 or 0 (SLT,
// SLTI).
func (*ALU) Slt(a, b uint32) uint32 {
	if int32(a) < int32(b) {
		return 1
	}
	return 0
}

// Sltu reports a < b as an unsigned comparison, returning 1 or 0
// (SLTU, SLTIU).
func (*ALU) Sltu(a, b uint32) uint32 {
	if a < b {
		return 1
	}
	return 0
}
