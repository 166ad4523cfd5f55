// Package loader turns a file on disk into a Program ready to be copied
// into the simulator's memory: either a raw binary blob or an ELF32
// little-endian RISC-V executable. Parsing is an external collaborator
// to the core — its only contract with the rest of the simulator is the
// Program it hands back, which the caller copies into memory (the
// rv32sim command does so with memory.Region.LoadAt, not through the
// bus).
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"
)

// DefaultRawBase is the physical address a raw binary blob is loaded
// at, matching the default memory map's instruction-memory base.
const DefaultRawBase = 0x0000_0000

// Segment is one contiguous run of bytes to be copied into memory at
// Addr. MemSize may exceed len(Data): the remainder is BSS and must be
// zero-filled by the caller (the destination memory region already
// starts zeroed, so callers typically only copy Data).
type Segment struct {
	Addr    uint32
	Data    []byte
	MemSize uint32
}

// Program is a loaded binary ready for execution: the segments to copy
// into memory and the address execution should begin at.
type Program struct {
	EntryPoint uint32
	Segments   []Segment
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads the file at path. A file that starts with the ELF magic is
// parsed as an ELF32 RISC-V executable, and any parse or validation
// failure is returned as an error; any other file is a raw binary blob
// loaded verbatim at DefaultRawBase.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	if bytes.HasPrefix(data, elfMagic) {
		return loadELF(data)
	}
	return loadRaw(data), nil
}

func loadRaw(data []byte) *Program {
	return &Program{
		EntryPoint: DefaultRawBase,
		Segments: []Segment{
			{Addr: DefaultRawBase, Data: data, MemSize: uint32(len(data))},
		},
	}
}

func loadELF(data []byte) (*Program, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: not a recognizable ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("loader: not a 32-bit ELF file (class: %v)", f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("loader: not a RISC-V ELF file (machine: %v)", f.Machine)
	}

	prog := &Program{EntryPoint: uint32(f.Entry)}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		buf := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(buf, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("loader: reading segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("loader: short read for segment at 0x%x: got %d, want %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		prog.Segments = append(prog.Segments, Segment{
			Addr:    uint32(phdr.Vaddr),
			Data:    buf,
			MemSize: uint32(phdr.Memsz),
		})
	}

	return prog, nil
}
