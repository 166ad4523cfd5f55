package peripheral

// HaltFlag is the shared handle between SimControl and the hart: a
// back-pointer from the peripheral to the hart would tie their
// lifetimes together for no reason, so instead both hold this small,
// explicitly-passed flag. Not safe for concurrent use — the simulator
// is single-threaded and synchronous (see the concurrency model), so
// it needs no synchronization.
type HaltFlag struct {
	halted bool
}

// NewHaltFlag returns a flag initialized to "not halted".
func NewHaltFlag() *HaltFlag {
	return &HaltFlag{}
}

// Set asserts or clears the flag.
func (h *HaltFlag) Set(v bool) { h.halted = v }

// Get reports whether the flag is currently asserted.
func (h *HaltFlag) Get() bool { return h.halted }

// ControlOffset is the offset of SimControl's sole register within its
// bus window.
const ControlOffset = 0

// Size is the size of SimControl's bus window: one 4-byte register.
const Size = 4

// SimControl is the one-register peripheral that lets guest software
// halt the simulation: writing a value whose bit 0 is set asserts the
// shared HaltFlag.
type SimControl struct {
	bank *Bank
}

// NewSimControl creates a SimControl peripheral that asserts halt on
// its shared handle when bit 0 of CONTROL is written as 1.
func NewSimControl(halt *HaltFlag) *SimControl {
	sc := &SimControl{bank: NewBank(Size)}
	reg := sc.bank.AddRegister(ControlOffset, 4, nil, nil)
	reg.AddTrigger(
		func(newValue, _ uint32) bool { return newValue&1 == 1 },
		func(_, _ uint32) { halt.Set(true) },
	)
	return sc
}

// Read implements bus.Port.
func (sc *SimControl) Read(offset uint32, width uint8) (uint32, error) {
	return sc.bank.Read(offset, width)
}

// Write implements bus.Port.
func (sc *SimControl) Write(offset uint32, width uint8, value uint32) error {
	return sc.bank.Write(offset, width, value)
}
