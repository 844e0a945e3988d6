package dm

import (
	"github.com/joshuapare/memkit/mem/irq"
)

// NewIRQ creates an interrupt controller with lines lines, all disabled.
func (e *Engine) NewIRQ(lines int) (Handle, error) {
	c, err := irq.New(lines)
	if err != nil {
		return 0, err
	}
	return e.put(kindIRQ, c)
}

// FreeIRQ drops controller c. Register regions created by IRQRegion keep
// working until they are freed.
func (e *Engine) FreeIRQ(c Handle) error {
	if _, err := e.irq(c); err != nil {
		return err
	}
	e.release(c)
	return nil
}

// IRQRegion creates an IO region at base exposing the registers of c (see
// irq.Regs). Writes to its raise register interrupt like IRQLine senders.
func (e *Engine) IRQRegion(c Handle, base uint64) (Handle, error) {
	ctrl, err := e.irq(c)
	if err != nil {
		return 0, err
	}
	return e.NewIO(base, irq.RegsSize, irq.NewRegs(ctrl))
}

// IRQLine returns the sender devices use to raise line of c.
func (e *Engine) IRQLine(c Handle, line int) (irq.Line, error) {
	ctrl, err := e.irq(c)
	if err != nil {
		return irq.Line{}, err
	}
	return ctrl.Line(line)
}

// BindIRQ installs h as the handler of line. h runs on the goroutine that
// raised the interrupt.
func (e *Engine) BindIRQ(c Handle, line int, h irq.Handler) error {
	ctrl, err := e.irq(c)
	if err != nil {
		return err
	}
	return ctrl.Bind(line, h)
}

// EnableIRQ unmasks line of c.
func (e *Engine) EnableIRQ(c Handle, line int) error {
	ctrl, err := e.irq(c)
	if err != nil {
		return err
	}
	return ctrl.Enable(line)
}

// DisableIRQ masks line of c.
func (e *Engine) DisableIRQ(c Handle, line int) error {
	ctrl, err := e.irq(c)
	if err != nil {
		return err
	}
	return ctrl.Disable(line)
}

// RaiseIRQ signals an interrupt on line of c.
func (e *Engine) RaiseIRQ(c Handle, line int) error {
	ctrl, err := e.irq(c)
	if err != nil {
		return err
	}
	return ctrl.Raise(line)
}

// AckIRQ clears the pending bit of line of c.
func (e *Engine) AckIRQ(c Handle, line int) error {
	ctrl, err := e.irq(c)
	if err != nil {
		return err
	}
	return ctrl.Ack(line)
}

// IRQPending reports whether line of c has an unacknowledged interrupt.
func (e *Engine) IRQPending(c Handle, line int) (bool, error) {
	ctrl, err := e.irq(c)
	if err != nil {
		return false, err
	}
	return ctrl.Pending(line)
}

func (e *Engine) irq(c Handle) (*irq.Controller, error) {
	return get[*irq.Controller](e, c, kindIRQ)
}
