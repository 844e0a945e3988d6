package script

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/pkg/dm"
)

// newIRQ creates a controller, maps its registers at base under name and
// binds every line to a handler that reports the interrupt.
func (r *Runner) newIRQ(c Command) error {
	lines, err := parseLine(c.Args[1])
	if err != nil {
		return err
	}
	base, err := ParseNumber(c.Args[2])
	if err != nil {
		return err
	}
	ctrl, err := r.e.NewIRQ(lines)
	if err != nil {
		return err
	}
	name := c.Args[0]
	for i := range lines {
		if err := r.e.BindIRQ(ctrl, i, func(line int) {
			r.res.IRQs++
			fmt.Fprintf(r.out, "irq %s %d\n", name, line)
		}); err != nil {
			return err
		}
	}
	regs, err := r.e.IRQRegion(ctrl, base)
	if err != nil {
		return errors.Join(err, r.e.FreeIRQ(ctrl))
	}
	if err := r.adopt(name, regs); err != nil {
		return errors.Join(err, r.e.FreeIRQ(ctrl))
	}
	r.irqs[regs] = ctrl
	return nil
}

// irqLine resolves the controller and line number of commands such as
// raise NAME LINE.
func (r *Runner) irqLine(c Command) (dm.Handle, int, error) {
	h, err := r.region(c.Args[0])
	if err != nil {
		return 0, 0, err
	}
	ctrl, ok := r.irqs[h]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrNotIRQ, c.Args[0])
	}
	line, err := parseLine(c.Args[1])
	if err != nil {
		return 0, 0, err
	}
	return ctrl, line, nil
}

func (r *Runner) irqOp(c Command) error {
	ctrl, line, err := r.irqLine(c)
	if err != nil {
		return err
	}
	switch c.Op {
	case "enable":
		return r.e.EnableIRQ(ctrl, line)
	case "disable":
		return r.e.DisableIRQ(ctrl, line)
	case "raise":
		return r.e.RaiseIRQ(ctrl, line)
	case "ack":
		return r.e.AckIRQ(ctrl, line)
	}
	pending, err := r.e.IRQPending(ctrl, line)
	if err != nil {
		return err
	}
	var v uint64
	if pending {
		v = 1
	}
	r.res.Reads++
	fmt.Fprintf(r.out, "pending %s %d = %d\n", c.Args[0], line, v)
	return expect(c, v)
}

// dropIRQ frees the controller behind the register region h, if any.
func (r *Runner) dropIRQ(h dm.Handle) {
	ctrl, ok := r.irqs[h]
	if !ok {
		return
	}
	delete(r.irqs, h)
	if err := r.e.FreeIRQ(ctrl); err != nil {
		logger.Warn("free irq controller", "err", err)
	}
}

func parseLine(s string) (int, error) {
	n, err := ParseNumber(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: line %s out of range", ErrSyntax, s)
	}
	return int(n), nil
}
