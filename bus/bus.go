// Package bus implements the address-routed system bus that connects
// the hart to its memories and peripherals. A bus owns a set of
// non-overlapping, address-sorted slave ports; every read or write
// locates the unique port covering the access and delegates to it.
package bus

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors the bus reports. Check with errors.Is; the messages
// carry the address/width context.
var (
	ErrUnmappedAccess   = errors.New("unmapped access")
	ErrMisalignedAccess = errors.New("misaligned access")
	ErrBusOverlap       = errors.New("bus overlap")
	ErrBadPortSize      = errors.New("bad port size")
	ErrBadWidth         = errors.New("bad access width")
)

// Port is the capability a bus slave must implement: byte/halfword/
// word read and write, addressed relative to the port's own base (the
// bus translates a global address to a port-local offset before
// calling in).
type Port interface {
	Read(offset uint32, width uint8) (uint32, error)
	Write(offset uint32, width uint8, value uint32) error
}

type attachment struct {
	name   string
	base   uint32
	size   uint32
	target Port
}

func (a attachment) end() uint32 { return a.base + a.size }

// Bus routes reads and writes of 1, 2, or 4 bytes to whichever
// attached port owns the accessed address range.
type Bus struct {
	ports []attachment
}

// New returns an empty bus with no attached ports.
func New() *Bus {
	return &Bus{}
}

// Attach registers a slave port covering [base, base+size). It is an
// error for size to be zero or for the range to overlap any port
// already attached.
func (b *Bus) Attach(name string, base, size uint32, target Port) error {
	if size == 0 {
		return fmt.Errorf("%w: port %q has size 0", ErrBadPortSize, name)
	}
	if uint64(base)+uint64(size) > 1<<32 {
		return fmt.Errorf("%w: port %q range overflows 32-bit address space", ErrBadPortSize, name)
	}

	next := attachment{name: name, base: base, size: size, target: target}
	for _, p := range b.ports {
		if rangesOverlap(p.base, p.end(), next.base, next.end()) {
			return fmt.Errorf("%w: port %q [0x%x,0x%x) overlaps port %q [0x%x,0x%x)",
				ErrBusOverlap, name, next.base, next.end(), p.name, p.base, p.end())
		}
	}

	b.ports = append(b.ports, next)
	sort.Slice(b.ports, func(i, j int) bool { return b.ports[i].base < b.ports[j].base })
	return nil
}

// Read reads width bytes (1, 2, or 4) at addr, little-endian.
func (b *Bus) Read(addr uint32, width uint8) (uint32, error) {
	p, err := b.find(addr, width)
	if err != nil {
		return 0, err
	}
	return p.target.Read(addr-p.base, width)
}

// Write writes the low width bytes of value at addr, little-endian.
func (b *Bus) Write(addr uint32, width uint8, value uint32) error {
	p, err := b.find(addr, width)
	if err != nil {
		return err
	}
	return p.target.Write(addr-p.base, width, value)
}

func (b *Bus) find(addr uint32, width uint8) (*attachment, error) {
	if width != 1 && width != 2 && width != 4 {
		return nil, fmt.Errorf("%w: %d", ErrBadWidth, width)
	}
	if uint32(addr)%uint32(width) != 0 {
		return nil, fmt.Errorf("%w: addr=0x%08x width=%d", ErrMisalignedAccess, addr, width)
	}

	end := addr + uint32(width)
	for i := range b.ports {
		p := &b.ports[i]
		if addr >= p.base && end <= p.end() {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: addr=0x%08x width=%d", ErrUnmappedAccess, addr, width)
}

func rangesOverlap(aStart, aEnd, bStart, bEnd uint32) bool {
	return aStart < bEnd && bStart < aEnd
}

// MemoryMap names the default address layout the CLI wires up: where
// instruction memory, data memory, and the peripherals sit. It is
// configuration, not part of the core bus contract — the bus itself
// only cares about whatever ranges get Attach'd to it.
type MemoryMap struct {
	InstBase       uint32
	InstSize       uint32
	DataBase       uint32
	DataSize       uint32
	SimControlBase uint32
	UARTBase       uint32
}

// DefaultMemoryMap returns the simulator's default address layout: 1 MiB
// of instruction memory at 0x0000_0000, 1 MiB of data memory at
// 0x1000_0000, SimControl at 0x2000_0000, and the UART-lite just past
// it at 0x2000_1000.
func DefaultMemoryMap() MemoryMap {
	return MemoryMap{
		InstBase:       0x0000_0000,
		InstSize:       1 << 20,
		DataBase:       0x1000_0000,
		DataSize:       1 << 20,
		SimControlBase: 0x2000_0000,
		UARTBase:       0x2000_1000,
	}
}
