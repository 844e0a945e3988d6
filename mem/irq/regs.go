package irq

import "fmt"

// Register offsets of the MMIO bank Regs exposes. Registers are 64 bits wide
// and bit i stands for line i. Narrower accesses see the low bits of the
// register.
const (
	RegEnable  = 0x00 // r/w: enabled lines
	RegPending = 0x08 // r: pending lines; w: 1 bits acknowledge
	RegRaise   = 0x10 // w: 1 bits raise the lines; reads 0
	RegLines   = 0x18 // r: number of lines; writes ignored

	// RegsSize is the size of the bank.
	RegsSize = 0x20
)

// Regs is the register bank of a controller, for mapping as an IO region:
//
//	h, _ := e.NewIO(0x0c00_0000, irq.RegsSize, irq.NewRegs(ctrl))
type Regs struct {
	c *Controller
}

// NewRegs wraps c in a register bank.
func NewRegs(c *Controller) *Regs { return &Regs{c: c} }

// Controller is the controller behind the bank.
func (r *Regs) Controller() *Controller { return r.c }

func widthMask(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return 1<<(uint(width)*8) - 1
}

// Read returns the low width bytes of the register at off.
func (r *Regs) Read(off uint64, width int) (uint64, error) {
	var v uint64
	switch off {
	case RegEnable:
		v = r.c.EnabledMask()
	case RegPending:
		v = r.c.PendingMask()
	case RegRaise:
	case RegLines:
		v = uint64(r.c.Len())
	default:
		return 0, fmt.Errorf("%w: %#x", ErrBadRegister, off)
	}
	return v & widthMask(width), nil
}

// Write updates the low width bytes of the register at off.
func (r *Regs) Write(off uint64, width int, v uint64) error {
	sel := widthMask(width)
	v &= sel
	switch off {
	case RegEnable:
		return r.c.SetEnabledMask(v, sel)
	case RegPending:
		return r.c.AckMask(v)
	case RegRaise:
		return r.c.RaiseMask(v)
	case RegLines:
		return nil
	default:
		return fmt.Errorf("%w: %#x", ErrBadRegister, off)
	}
}
