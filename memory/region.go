// Package memory implements the flat, byte-addressable, little-endian
// storage backing the simulator's flash-like instruction memory and
// SRAM-like data memory. A Region satisfies bus.Port structurally —
// it never imports the bus package.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfRange reports an access outside a region's bounds.
var ErrOutOfRange = errors.New("memory: access out of range")

// ErrReadOnly reports a write to a region configured read-only.
var ErrReadOnly = errors.New("memory: region is read-only")

// Region is a fixed-size block of byte-addressable storage, zeroed at
// construction. It supports little-endian reads and writes of 1, 2, or
// 4 bytes, the standard bus access widths.
type Region struct {
	data     []byte
	readOnly bool
}

// NewRegion allocates a zero-filled region of the given size.
func NewRegion(size uint32) *Region {
	return &Region{data: make([]byte, size)}
}

// NewReadOnlyRegion allocates a zero-filled region that rejects writes.
// Load the contents via LoadAt before attaching it read-only to a bus —
// once attached, bus.Write calls into it always fault.
func NewReadOnlyRegion(size uint32) *Region {
	return &Region{data: make([]byte, size), readOnly: true}
}

// Size returns the region's size in bytes.
func (r *Region) Size() uint32 { return uint32(len(r.data)) }

// LoadAt copies data into the region starting at offset, bypassing the
// read-only flag. Used by loaders to place program bytes before
// execution begins.
func (r *Region) LoadAt(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(r.data)) {
		return fmt.Errorf("%w: offset=0x%x len=%d size=%d", ErrOutOfRange, offset, len(data), len(r.data))
	}
	copy(r.data[offset:], data)
	return nil
}

// Read implements bus.Port.
func (r *Region) Read(offset uint32, width uint8) (uint32, error) {
	end := uint64(offset) + uint64(width)
	if end > uint64(len(r.data)) {
		return 0, fmt.Errorf("%w: offset=0x%x width=%d size=%d", ErrOutOfRange, offset, width, len(r.data))
	}
	switch width {
	case 1:
		return uint32(r.data[offset]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(r.data[offset:])), nil
	case 4:
		return binary.LittleEndian.Uint32(r.data[offset:]), nil
	default:
		return 0, fmt.Errorf("memory: bad width %d", width)
	}
}

// Write implements bus.Port.
func (r *Region) Write(offset uint32, width uint8, value uint32) error {
	if r.readOnly {
		return fmt.Errorf("%w: offset=0x%x", ErrReadOnly, offset)
	}
	end := uint64(offset) + uint64(width)
	if end > uint64(len(r.data)) {
		return fmt.Errorf("%w: offset=0x%x width=%d size=%d", ErrOutOfRange, offset, width, len(r.data))
	}
	switch width {
	case 1:
		r.data[offset] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(r.data[offset:], uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(r.data[offset:], value)
	default:
		return fmt.Errorf("memory: bad width %d", width)
	}
	return nil
}
