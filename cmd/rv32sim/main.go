// Command rv32sim runs a raw binary or ELF32 RISC-V program against the
// functional RV32I simulator and reports how it finished.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sarchlab/rv32sim/bus"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/memory"
	"github.com/sarchlab/rv32sim/peripheral"
)

var (
	trace           = flag.Bool("trace", false, "Log one line per retired instruction to stderr")
	maxInstructions = flag.Uint64("max-instructions", 0, "Stop after this many instructions (0 = unbounded)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32sim [options] <program>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0)))
}

func run(path string) int {
	prog, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
		return 1
	}

	mm := bus.DefaultMemoryMap()
	b := bus.New()
	instMem := memory.NewRegion(mm.InstSize)
	dataMem := memory.NewRegion(mm.DataSize)
	halt := peripheral.NewHaltFlag()
	sc := peripheral.NewSimControl(halt)
	uart := peripheral.NewUART(os.Stdout)

	attach := []struct {
		name   string
		base   uint32
		size   uint32
		target bus.Port
	}{
		{"instr", mm.InstBase, mm.InstSize, instMem},
		{"data", mm.DataBase, mm.DataSize, dataMem},
		{"simcontrol", mm.SimControlBase, peripheral.Size, sc},
		{"uart", mm.UARTBase, peripheral.UARTSize, uart},
	}
	for _, a := range attach {
		if err := b.Attach(a.name, a.base, a.size, a.target); err != nil {
			fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
			return 1
		}
	}

	for _, seg := range prog.Segments {
		if err := loadSegment(instMem, dataMem, mm, seg); err != nil {
			fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
			return 1
		}
	}

	opts := []emu.Option{emu.WithResetVector(prog.EntryPoint)}
	if *maxInstructions > 0 {
		opts = append(opts, emu.WithMaxInstructions(*maxInstructions))
	}
	if *trace {
		opts = append(opts, emu.WithTraceSink(stderrTracer{log.New(os.Stderr, "", 0)}))
	}

	hart := emu.NewHart(b, halt, opts...)
	if err := hart.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rv32sim: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "rv32sim: %s after %d instructions\n", hart.State(), hart.InstructionCount())
	return int(int32(hart.Regs().Read(10))) // a0, the guest's exit-code convention
}

// loadSegment copies seg's bytes into whichever region its address
// falls within. Both of the default regions are writable, so either
// destination accepts program and data segments alike.
func loadSegment(instMem, dataMem *memory.Region, mm bus.MemoryMap, seg loader.Segment) error {
	switch {
	case seg.Addr >= mm.InstBase && seg.Addr < mm.InstBase+mm.InstSize:
		return instMem.LoadAt(seg.Addr-mm.InstBase, seg.Data)
	case seg.Addr >= mm.DataBase && seg.Addr < mm.DataBase+mm.DataSize:
		return dataMem.LoadAt(seg.Addr-mm.DataBase, seg.Data)
	default:
		return fmt.Errorf("segment at 0x%08x falls outside the mapped memory regions", seg.Addr)
	}
}

type stderrTracer struct{ l *log.Logger }

func (t stderrTracer) Trace(e emu.Event) {
	t.l.Printf("pc=0x%08x %s", e.PC, e.Inst)
}
