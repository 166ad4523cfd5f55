// Package insts provides RV32I instruction definitions and decoding.
//
// It maps a raw 32-bit instruction word to a typed Instruction carrying
// the opcode, the relevant funct3/funct7 bits already classified into
// an Op, register indices, and an immediate that has already been
// sign-extended to 32 bits (decoding never leaves that work for the
// executor).
package insts

import "fmt"

// Op identifies one RV32I mnemonic.
type Op uint8

// RV32I opcodes, grouped by the instruction format that encodes them.
const (
	OpUnknown Op = iota

	// U-type
	OpLUI
	OpAUIPC

	// J-type
	OpJAL

	// I-type (jump)
	OpJALR

	// B-type
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// I-type (load)
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// S-type
	OpSB
	OpSH
	OpSW

	// I-type (arithmetic)
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI

	// I-type (shift)
	OpSLLI
	OpSRLI
	OpSRAI

	// R-type
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
)

var opNames = map[Op]string{
	OpLUI: "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge", OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori", OpORI: "ori", OpANDI: "andi",
	OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt", OpSLTU: "sltu",
	OpXOR: "xor", OpSRL: "srl", OpSRA: "sra", OpOR: "or", OpAND: "and",
}

// String renders the instruction's mnemonic, or "unknown" for OpUnknown.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Format identifies the encoding shape an Op was decoded from.
type Format uint8

// RV32I instruction formats.
const (
	FormatUnknown Format = iota
	FormatU
	FormatJ
	FormatIJump
	FormatB
	FormatILoad
	FormatS
	FormatIArith
	FormatIShift
	FormatR
)

// Instruction is the decoder's output: one RV32I instruction with its
// operand fields already extracted and its immediate already
// sign-extended to 32 bits.
type Instruction struct {
	Op     Op
	Format Format

	Rd, Rs1, Rs2 uint8

	// Imm holds the instruction's immediate, already sign-extended
	// (U-type immediates already have their low 12 bits zero; B/J
	// immediates already have their low bit zero).
	Imm uint32

	// Shamt holds the 5-bit shift amount for SLLI/SRLI/SRAI. Unused
	// for every other Op.
	Shamt uint8

	// Raw is the original 32-bit word this instruction was decoded
	// from, kept for fault reporting and disassembly.
	Raw uint32
}

// String renders a short disassembly-like form, useful in traces and
// test failure messages.
func (i *Instruction) String() string {
	switch i.Format {
	case FormatU:
		return fmt.Sprintf("%s x%d, 0x%x", i.Op, i.Rd, i.Imm>>12)
	case FormatJ:
		return fmt.Sprintf("%s x%d, %d", i.Op, i.Rd, int32(i.Imm))
	case FormatIJump, FormatILoad, FormatIArith:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Op, i.Rd, i.Rs1, int32(i.Imm))
	case FormatIShift:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Op, i.Rd, i.Rs1, i.Shamt)
	case FormatB:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Op, i.Rs1, i.Rs2, int32(i.Imm))
	case FormatS:
		return fmt.Sprintf("%s x%d, %d(x%d)", i.Op, i.Rs2, int32(i.Imm), i.Rs1)
	case FormatR:
		return fmt.Sprintf("%s x%d, x%d, x%d", i.Op, i.Rd, i.Rs1, i.Rs2)
	default:
		return fmt.Sprintf("<illegal 0x%08x>", i.Raw)
	}
}
