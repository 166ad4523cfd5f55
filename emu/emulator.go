package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rv32sim/bus"
	"github.com/sarchlab/rv32sim/insts"
	"github.com/sarchlab/rv32sim/peripheral"
)

// ErrMisalignedFetch reports a fetch at a PC that is not 4-byte
// aligned — the delayed consequence of a taken branch/jump whose
// target failed alignment, surfaced on the step that tries to fetch
// from it rather than on the branch/jump itself.
var ErrMisalignedFetch = errors.New("misaligned instruction fetch")

// State is one of a hart's three logical execution states.
type State uint8

// Hart states. A hart starts Running and only ever leaves Running for
// Halted or Faulted; both are terminal.
const (
	Running State = iota
	Halted
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Fault wraps an error with the PC it occurred at.
type Fault struct {
	PC  uint32
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at PC=0x%08x: %v", f.PC, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Event is one instruction-retirement record, handed to a TraceSink.
// It carries no behavior of its own — a nil sink means no trace is
// produced and costs one nil check per step.
type Event struct {
	PC   uint32
	Inst *insts.Instruction
}

// TraceSink receives one Event per retired instruction.
type TraceSink interface {
	Trace(Event)
}

// Hart is one RV32I hardware thread: a register file, a program
// counter, and the execution units that interpret instructions
// fetched and routed through a system bus. It holds no knowledge of
// what is attached to the bus — memories and peripherals are wired in
// by whoever constructs the hart.
type Hart struct {
	regs *RegFile
	pc   uint32

	bus  *bus.Bus
	halt *peripheral.HaltFlag

	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	state State
	fault *Fault

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit

	trace TraceSink
}

// Option configures a Hart at construction.
type Option func(*Hart)

// WithResetVector sets the initial PC. Default 0.
func WithResetVector(pc uint32) Option {
	return func(h *Hart) { h.pc = pc }
}

// WithMaxInstructions bounds Run to at most max steps (0 means
// unbounded, the default). This is a host policy, not a core
// requirement — the hart itself never stops on its own without a
// halt or a fault.
func WithMaxInstructions(max uint64) Option {
	return func(h *Hart) { h.maxInstructions = max }
}

// WithTraceSink attaches a sink that receives one Event per retired
// instruction.
func WithTraceSink(sink TraceSink) Option {
	return func(h *Hart) { h.trace = sink }
}

// NewHart creates a hart wired to bus b, signaling halt through the
// shared flag halt.
func NewHart(b *bus.Bus, halt *peripheral.HaltFlag, opts ...Option) *Hart {
	h := &Hart{
		regs:       &RegFile{},
		bus:        b,
		halt:       halt,
		alu:        NewALU(),
		lsu:        NewLoadStoreUnit(b),
		branchUnit: NewBranchUnit(),
		state:      Running,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Regs returns the hart's register file.
func (h *Hart) Regs() *RegFile { return h.regs }

// PC returns the hart's current program counter.
func (h *Hart) PC() uint32 { return h.pc }

// State returns the hart's current execution state.
func (h *Hart) State() State { return h.state }

// Fault returns the fault that transitioned the hart to Faulted, or
// nil if the hart never faulted.
func (h *Hart) Fault() *Fault { return h.fault }

// InstructionCount returns the number of instructions retired so far.
func (h *Hart) InstructionCount() uint64 { return h.instructionCount }

// Step fetches, decodes, and executes one instruction, then polls the
// halt flag. It is a no-op once the hart has left Running.
func (h *Hart) Step() error {
	if h.state != Running {
		return nil
	}

	fetchPC := h.pc
	if fetchPC%4 != 0 {
		return h.abort(fmt.Errorf("%w: pc=0x%08x", ErrMisalignedFetch, fetchPC))
	}

	word, err := h.bus.Read(fetchPC, 4)
	if err != nil {
		return h.abort(err)
	}

	inst, err := insts.Decode(word)
	if err != nil {
		return h.abort(err)
	}

	nextPC, err := h.execute(inst)
	if err != nil {
		return h.abort(err)
	}
	h.pc = nextPC
	h.instructionCount++

	if h.trace != nil {
		h.trace.Trace(Event{PC: fetchPC, Inst: inst})
	}

	if h.halt.Get() {
		h.state = Halted
	}

	if h.maxInstructions > 0 && h.instructionCount >= h.maxInstructions {
		h.state = Halted
	}

	return nil
}

// Run steps until the hart leaves Running, returning the fault (if
// any) that caused it to stop.
func (h *Hart) Run() error {
	for h.state == Running {
		if err := h.Step(); err != nil {
			return err
		}
	}
	if h.state == Faulted {
		return h.fault
	}
	return nil
}

func (h *Hart) abort(err error) error {
	f := &Fault{PC: h.pc, Err: err}
	h.fault = f
	h.state = Faulted
	return f
}

// execute applies inst's semantics and returns the next PC. Register
// and memory side effects happen here; PC itself is not mutated until
// the caller commits it, so a fault mid-execute leaves PC pointing at
// the faulting instruction.
func (h *Hart) execute(inst *insts.Instruction) (uint32, error) {
	switch inst.Format {
	case insts.FormatU:
		return h.executeU(inst)
	case insts.FormatJ:
		return h.executeJAL(inst)
	case insts.FormatIJump:
		return h.executeJALR(inst)
	case insts.FormatB:
		return h.executeBranch(inst)
	case insts.FormatILoad:
		return h.executeLoad(inst)
	case insts.FormatS:
		return h.executeStore(inst)
	case insts.FormatIArith:
		return h.executeIArith(inst)
	case insts.FormatIShift:
		return h.executeIShift(inst)
	case insts.FormatR:
		return h.executeR(inst)
	default:
		return 0, fmt.Errorf("%w: unhandled format for 0x%08x", insts.ErrIllegalInstruction, inst.Raw)
	}
}

func (h *Hart) executeU(inst *insts.Instruction) (uint32, error) {
	switch inst.Op {
	case insts.OpLUI:
		h.regs.Write(inst.Rd, inst.Imm)
	case insts.OpAUIPC:
		h.regs.Write(inst.Rd, h.pc+inst.Imm)
	}
	return h.pc + 4, nil
}

func (h *Hart) executeJAL(inst *insts.Instruction) (uint32, error) {
	link, next := h.branchUnit.JAL(h.pc, inst.Imm)
	h.regs.Write(inst.Rd, link)
	return next, nil
}

func (h *Hart) executeJALR(inst *insts.Instruction) (uint32, error) {
	rs1 := h.regs.Read(inst.Rs1)
	link, next := h.branchUnit.JALR(h.pc, rs1, inst.Imm)
	h.regs.Write(inst.Rd, link)
	return next, nil
}

var branchConds = map[insts.Op]BranchCond{
	insts.OpBEQ:  CondEQ,
	insts.OpBNE:  CondNE,
	insts.OpBLT:  CondLT,
	insts.OpBGE:  CondGE,
	insts.OpBLTU: CondLTU,
	insts.OpBGEU: CondGEU,
}

func (h *Hart) executeBranch(inst *insts.Instruction) (uint32, error) {
	cond := branchConds[inst.Op]
	rs1 := h.regs.Read(inst.Rs1)
	rs2 := h.regs.Read(inst.Rs2)
	return h.branchUnit.Branch(cond, h.pc, rs1, rs2, inst.Imm), nil
}

func (h *Hart) executeLoad(inst *insts.Instruction) (uint32, error) {
	addr := h.regs.Read(inst.Rs1) + inst.Imm

	var v uint32
	var err error
	switch inst.Op {
	case insts.OpLB:
		v, err = h.lsu.LB(addr)
	case insts.OpLH:
		v, err = h.lsu.LH(addr)
	case insts.OpLW:
		v, err = h.lsu.LW(addr)
	case insts.OpLBU:
		v, err = h.lsu.LBU(addr)
	case insts.OpLHU:
		v, err = h.lsu.LHU(addr)
	}
	if err != nil {
		return 0, err
	}
	h.regs.Write(inst.Rd, v)
	return h.pc + 4, nil
}

func (h *Hart) executeStore(inst *insts.Instruction) (uint32, error) {
	addr := h.regs.Read(inst.Rs1) + inst.Imm
	v := h.regs.Read(inst.Rs2)

	var err error
	switch inst.Op {
	case insts.OpSB:
		err = h.lsu.SB(addr, v)
	case insts.OpSH:
		err = h.lsu.SH(addr, v)
	case insts.OpSW:
		err = h.lsu.SW(addr, v)
	}
	if err != nil {
		return 0, err
	}
	return h.pc + 4, nil
}

func (h *Hart) executeIArith(inst *insts.Instruction) (uint32, error) {
	rs1 := h.regs.Read(inst.Rs1)
	imm := inst.Imm

	var result uint32
	switch inst.Op {
	case insts.OpADDI:
		result = h.alu.Add(rs1, imm)
	case insts.OpSLTI:
		result = h.alu.Slt(rs1, imm)
	case insts.OpSLTIU:
		result = h.alu.Sltu(rs1, imm)
	case insts.OpXORI:
		result = h.alu.Xor(rs1, imm)
	case insts.OpORI:
		result = h.alu.Or(rs1, imm)
	case insts.OpANDI:
		result = h.alu.And(rs1, imm)
	}
	h.regs.Write(inst.Rd, result)
	return h.pc + 4, nil
}

func (h *Hart) executeIShift(inst *insts.Instruction) (uint32, error) {
	rs1 := h.regs.Read(inst.Rs1)
	shamt := uint32(inst.Shamt)

	var result uint32
	switch inst.Op {
	case insts.OpSLLI:
		result = h.alu.Sll(rs1, shamt)
	case insts.OpSRLI:
		result = h.alu.Srl(rs1, shamt)
	case insts.OpSRAI:
		result = h.alu.Sra(rs1, shamt)
	}
	h.regs.Write(inst.Rd, result)
	return h.pc + 4, nil
}

func (h *Hart) executeR(inst *insts.Instruction) (uint32, error) {
	rs1 := h.regs.Read(inst.Rs1)
	rs2 := h.regs.Read(inst.Rs2)

	var result uint32
	switch inst.Op {
	case insts.OpADD:
		result = h.alu.Add(rs1, rs2)
	case insts.OpSUB:
		result = h.alu.Sub(rs1, rs2)
	case insts.OpSLL:
		result = h.alu.Sll(rs1, rs2)
	case insts.OpSLT:
		result = h.alu.Slt(rs1, rs2)
	case insts.OpSLTU:
		result = h.alu.Sltu(rs1, rs2)
	case insts.OpXOR:
		result = h.alu.Xor(rs1, rs2)
	case insts.OpSRL:
		result = h.alu.Srl(rs1, rs2)
	case insts.OpSRA:
		result = h.alu.Sra(rs1, rs2)
	case insts.OpOR:
		result = h.alu.Or(rs1, rs2)
	case insts.OpAND:
		result = h.alu.And(rs1, rs2)
	}
	h.regs.Write(inst.Rd, result)
	return h.pc + 4, nil
}
