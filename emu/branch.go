package emu

// BranchCond identifies a B-type comparison.
type BranchCond uint8

// B-type comparisons.
const (
	CondEQ BranchCond = iota
	CondNE
	CondLT
	CondGE
	CondLTU
	CondGEU
)

// Taken reports whether the comparison a<cond>b holds, using a signed
// view for LT/GE and unsigned for LTU/GEU, per RV32I's B-type
// semantics.
func (c BranchCond) Taken(a, b uint32) bool {
	switch c {
	case CondEQ:
		return a == b
	case CondNE:
		return a != b
	case CondLT:
		return int32(a) < int32(b)
	case CondGE:
		return int32(a) >= int32(b)
	case CondLTU:
		return a < b
	case CondGEU:
		return a >= b
	default:
		return false
	}
}

// BranchUnit computes next-PC values for the branch and jump families.
// It holds no state of its own; the hart owns PC and the register file
// and passes them in explicitly.
type BranchUnit struct{}

// NewBranchUnit creates a BranchUnit.
func NewBranchUnit() *BranchUnit { return &BranchUnit{} }

// Branch evaluates cond(rs1Val, rs2Val) and returns the next PC: pc+imm
// if taken, pc+4 otherwise. It never checks target alignment — that is
// the hart's job at the next fetch (see ErrMisalignedFetch).
func (*BranchUnit) Branch(cond BranchCond, pc, rs1Val, rs2Val, imm uint32) uint32 {
	if cond.Taken(rs1Val, rs2Val) {
		return pc + imm
	}
	return pc + 4
}

// JAL returns (link, nextPC): the return address to store in rd and
// the jump target pc+imm.
func (*BranchUnit) JAL(pc, imm uint32) (link, nextPC uint32) {
	return pc + 4, pc + imm
}

// JALR returns (link, nextPC). The target is computed from rs1Val
// (read before any register write) plus imm, with bit 0 cleared — the
// ordering matters when rd == rs1: callers must read rs1Val before
// writing rd.
func (*BranchUnit) JALR(pc, rs1Val, imm uint32) (link, nextPC uint32) {
	target := (rs1Val + imm) &^ 1
	return pc + 4, target
}
