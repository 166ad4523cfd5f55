// Package peripheral provides the memory-mapped register bank that
// every concrete peripheral (SimControl, the UART) embeds. A register
// bank is a capability: it implements bus.Port (Read/Write) without
// importing the bus package, matching the capability-interface
// re-expression of the source's base-class peripheral design.
package peripheral

import (
	"errors"
	"fmt"
)

// ErrNoSuchRegister reports an access to an offset/width the bank has
// no register registered for.
var ErrNoSuchRegister = errors.New("peripheral: no such register")

// ReadHandler computes the value returned for a register read given
// its currently stored value. A nil handler means "return the stored
// value unchanged".
type ReadHandler func(current uint32) uint32

// WriteHandler computes the value to store for a register write given
// the incoming value and the value previously stored. A nil handler
// means "store the incoming value unchanged".
type WriteHandler func(value, old uint32) uint32

// TriggerPredicate decides whether a trigger fires after a write,
// given the newly stored value and the value it replaced.
type TriggerPredicate func(newValue, oldValue uint32) bool

// TriggerCallback runs synchronously, within the write that triggered
// it, once its predicate returns true.
type TriggerCallback func(newValue, oldValue uint32)

type trigger struct {
	predicate TriggerPredicate
	callback  TriggerCallback
}

// Register is one memory-mapped register within a bank: an offset, a
// width, current storage, optional read/write handlers, and zero or
// more triggers that fire (in registration order) after a write.
type Register struct {
	offset uint32
	width  uint8
	value  uint32
	read   ReadHandler
	write  WriteHandler

	triggers []trigger
}

// AddTrigger appends a trigger to this register. Triggers fire in
// registration order, after the write handler has updated storage.
// There is no removal — triggers are declarative and live for the
// register's lifetime.
func (r *Register) AddTrigger(predicate TriggerPredicate, callback TriggerCallback) {
	r.triggers = append(r.triggers, trigger{predicate: predicate, callback: callback})
}

// Bank is a collection of registers addressed by offset within a
// peripheral's bus window.
type Bank struct {
	size      uint32
	registers map[uint32]*Register
}

// NewBank creates an empty register bank covering [0, size) relative
// to wherever the bus attaches it.
func NewBank(size uint32) *Bank {
	return &Bank{size: size, registers: make(map[uint32]*Register)}
}

// Size returns the bank's window size.
func (b *Bank) Size() uint32 { return b.size }

// AddRegister declares a register at offset with the given width and
// optional read/write handlers (nil for raw-value default behavior).
// It panics if offset+width exceeds the bank's size or a register is
// already registered at that offset — both are configuration errors,
// caught at wiring time, not access time.
func (b *Bank) AddRegister(offset uint32, width uint8, read ReadHandler, write WriteHandler) *Register {
	if uint64(offset)+uint64(width) > uint64(b.size) {
		panic(fmt.Sprintf("peripheral: register at offset 0x%x width %d exceeds bank size %d", offset, width, b.size))
	}
	if _, exists := b.registers[offset]; exists {
		panic(fmt.Sprintf("peripheral: register already declared at offset 0x%x", offset))
	}
	reg := &Register{offset: offset, width: width, read: read, write: write}
	b.registers[offset] = reg
	return reg
}

// Read implements bus.Port: it looks up the register at offset,
// requires an exact width match, and returns its read handler's
// result (or the raw stored value with no handler).
func (b *Bank) Read(offset uint32, width uint8) (uint32, error) {
	reg, err := b.lookup(offset, width)
	if err != nil {
		return 0, err
	}
	if reg.read != nil {
		return reg.read(reg.value), nil
	}
	return reg.value, nil
}

// Write implements bus.Port: the write handler (or raw passthrough)
// computes the new stored value, storage updates, and only then do
// this register's triggers evaluate and fire, in registration order —
// write-then-trigger, never the reverse.
func (b *Bank) Write(offset uint32, width uint8, value uint32) error {
	reg, err := b.lookup(offset, width)
	if err != nil {
		return err
	}

	old := reg.value
	newValue := value
	if reg.write != nil {
		newValue = reg.write(value, old)
	}
	reg.value = newValue

	for _, t := range reg.triggers {
		if t.predicate(newValue, old) {
			t.callback(newValue, old)
		}
	}
	return nil
}

func (b *Bank) lookup(offset uint32, width uint8) (*Register, error) {
	reg, ok := b.registers[offset]
	if !ok || reg.width != width {
		return nil, fmt.Errorf("%w: offset=0x%x width=%d", ErrNoSuchRegister, offset, width)
	}
	return reg, nil
}
