package peripheral

import "io"

// UART register offsets within its 8-byte bus window.
const (
	UARTDataOffset   = 0
	UARTStatusOffset = 4
	UARTSize         = 8
)

// UART status bits.
const (
	// UARTStatusOutputReady indicates DATA may be written: a byte
	// written now will be forwarded immediately, so this bit is
	// always set — there is no output buffering to back up on.
	UARTStatusOutputReady = 1 << 0
	// UARTStatusInputAvailable indicates a byte is queued and a read
	// of DATA will return it rather than 0.
	UARTStatusInputAvailable = 1 << 1
)

// UART is a minimal memory-mapped serial port: a DATA register whose
// writes forward a byte to an io.Writer and whose reads pop a byte
// from an input queue, and a read-only STATUS register exposing
// output-ready/input-available. It exists to exercise the peripheral
// framework (register bank + triggers) past SimControl's single
// register, not to model a real UART's timing or framing.
type UART struct {
	bank *Bank
	out  io.Writer
	in   []byte
}

// NewUART creates a UART that forwards DATA writes to out. Use Feed to
// queue bytes for the guest to read.
func NewUART(out io.Writer) *UART {
	u := &UART{out: out}
	u.bank = NewBank(UARTSize)

	u.bank.AddRegister(UARTDataOffset, 4, u.readData, u.writeData).AddTrigger(
		func(uint32, uint32) bool { return true },
		func(newValue, _ uint32) { u.forward(byte(newValue)) },
	)
	u.bank.AddRegister(UARTStatusOffset, 4, u.readStatus, u.writeStatus)

	return u
}

// Feed queues a byte for the guest to read from DATA, setting the
// input-available status bit.
func (u *UART) Feed(b byte) {
	u.in = append(u.in, b)
}

func (u *UART) readData(uint32) uint32 {
	if len(u.in) == 0 {
		return 0
	}
	b := u.in[0]
	u.in = u.in[1:]
	return uint32(b)
}

func (u *UART) writeData(value, _ uint32) uint32 {
	return value & 0xFF
}

func (u *UART) readStatus(uint32) uint32 {
	status := uint32(UARTStatusOutputReady)
	if len(u.in) > 0 {
		status |= UARTStatusInputAvailable
	}
	return status
}

// writeStatus discards the write: STATUS is read-only, always
// recomputed from u.in by readStatus.
func (u *UART) writeStatus(_, old uint32) uint32 {
	return old
}

func (u *UART) forward(b byte) {
	if u.out == nil {
		return
	}
	_, _ = u.out.Write([]byte{b})
}

// Read implements bus.Port.
func (u *UART) Read(offset uint32, width uint8) (uint32, error) {
	return u.bank.Read(offset, width)
}

// Write implements bus.Port.
func (u *UART) Write(offset uint32, width uint8, value uint32) error {
	return u.bank.Write(offset, width, value)
}
