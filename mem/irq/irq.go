// Package irq models the interrupt lines devices use to signal the code that
// services them.
//
// A Controller holds a fixed number of lines. Each line has an enable bit, a
// pending bit and at most one bound handler. Raising a disabled line is
// dropped and leaves it not pending. Raising an enabled line marks it pending
// and runs its handler; the handler (or anyone else) acknowledges with Ack.
//
// Devices get a Line for the interrupt they drive, and Regs exposes the
// controller itself as a register bank for an IO region.
//
// A Controller is safe for concurrent use. Handlers run without the
// controller's lock held, so they may call back into it.
package irq

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/joshuapare/memkit/internal/logger"
)

// MaxLines bounds the size of a controller.
const MaxLines = 1024

// Handler services an interrupt on line.
type Handler func(line int)

type state struct {
	enabled bool
	pending bool
	handler Handler
	count   uint64
}

// Controller is a set of interrupt lines.
type Controller struct {
	mu    sync.Mutex
	lines []state
}

// New creates a controller with n lines, all disabled and unbound.
func New(n int) (*Controller, error) {
	if n <= 0 || n > MaxLines {
		return nil, fmt.Errorf("%w: %d", ErrBadCount, n)
	}
	return &Controller{lines: make([]state, n)}, nil
}

// Len is the number of lines.
func (c *Controller) Len() int { return len(c.lines) }

func (c *Controller) check(n int) error {
	if n < 0 || n >= len(c.lines) {
		return fmt.Errorf("%w: %d of %d", ErrUnknownLine, n, len(c.lines))
	}
	return nil
}

func (c *Controller) update(n int, fn func(s *state)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(n); err != nil {
		return err
	}
	fn(&c.lines[n])
	return nil
}

func (c *Controller) query(n int, fn func(s state) bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(n); err != nil {
		return false, err
	}
	return fn(c.lines[n]), nil
}

// Enable lets interrupts on line n through.
func (c *Controller) Enable(n int) error {
	return c.update(n, func(s *state) { s.enabled = true })
}

// Disable masks line n. A pending interrupt stays pending until acknowledged.
func (c *Controller) Disable(n int) error {
	return c.update(n, func(s *state) { s.enabled = false })
}

// Ack clears the pending bit of line n.
func (c *Controller) Ack(n int) error {
	return c.update(n, func(s *state) { s.pending = false })
}

// Enabled reports whether line n is enabled.
func (c *Controller) Enabled(n int) (bool, error) {
	return c.query(n, func(s state) bool { return s.enabled })
}

// Pending reports whether line n has an unacknowledged interrupt.
func (c *Controller) Pending(n int) (bool, error) {
	return c.query(n, func(s state) bool { return s.pending })
}

// Count is the number of interrupts delivered on line n.
func (c *Controller) Count(n int) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(n); err != nil {
		return 0, err
	}
	return c.lines[n].count, nil
}

// Bind installs h as the handler of line n. A line has at most one handler.
func (c *Controller) Bind(n int, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(n); err != nil {
		return err
	}
	if c.lines[n].handler != nil {
		return fmt.Errorf("%w: line %d", ErrBound, n)
	}
	c.lines[n].handler = h
	return nil
}

// Unbind removes the handler of line n, if any.
func (c *Controller) Unbind(n int) error {
	return c.update(n, func(s *state) { s.handler = nil })
}

// Raise signals an interrupt on line n. The pending bit is cleared first, so
// a raise on a disabled line leaves it not pending.
func (c *Controller) Raise(n int) error {
	c.mu.Lock()
	if err := c.check(n); err != nil {
		c.mu.Unlock()
		return err
	}
	s := &c.lines[n]
	s.pending = false
	if !s.enabled {
		c.mu.Unlock()
		logger.Debug("irq masked", "line", n)
		return nil
	}
	s.pending = true
	s.count++
	h := s.handler
	c.mu.Unlock()

	logger.Debug("irq", "line", n, "handled", h != nil)
	if h != nil {
		h(n)
	}
	return nil
}

// Line returns the sender for line n.
func (c *Controller) Line(n int) (Line, error) {
	if err := c.check(n); err != nil {
		return Line{}, err
	}
	return Line{c: c, n: n}, nil
}

// EnabledMask has bit i set when line i is enabled, for lines below 64.
func (c *Controller) EnabledMask() uint64 {
	return c.mask(func(s state) bool { return s.enabled })
}

// PendingMask has bit i set when line i is pending, for lines below 64.
func (c *Controller) PendingMask() uint64 {
	return c.mask(func(s state) bool { return s.pending })
}

func (c *Controller) mask(fn func(s state) bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var m uint64
	for i := range min(len(c.lines), 64) {
		if fn(c.lines[i]) {
			m |= 1 << i
		}
	}
	return m
}

// SetEnabledMask enables the lines whose bit is set in m and disables the
// other lines covered by sel.
func (c *Controller) SetEnabledMask(m, sel uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMask(m & sel); err != nil {
		return err
	}
	for i := range min(len(c.lines), 64) {
		if sel&(1<<i) != 0 {
			c.lines[i].enabled = m&(1<<i) != 0
		}
	}
	return nil
}

// AckMask acknowledges every line whose bit is set in m.
func (c *Controller) AckMask(m uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkMask(m); err != nil {
		return err
	}
	for i := range min(len(c.lines), 64) {
		if m&(1<<i) != 0 {
			c.lines[i].pending = false
		}
	}
	return nil
}

// RaiseMask raises every line whose bit is set in m, lowest first.
func (c *Controller) RaiseMask(m uint64) error {
	if err := c.checkMask(m); err != nil {
		return err
	}
	for m != 0 {
		i := bits.TrailingZeros64(m)
		m &^= 1 << i
		if err := c.Raise(i); err != nil {
			return err
		}
	}
	return nil
}

// checkMask rejects masks naming lines the controller does not have.
// c.lines never changes length, so no lock is needed.
func (c *Controller) checkMask(m uint64) error {
	if m == 0 {
		return nil
	}
	if top := 63 - bits.LeadingZeros64(m); top >= len(c.lines) {
		return fmt.Errorf("%w: %d of %d", ErrUnknownLine, top, len(c.lines))
	}
	return nil
}

// Line raises one interrupt of a controller. The zero Line is not usable.
type Line struct {
	c *Controller
	n int
}

// Num is the line number.
func (l Line) Num() int { return l.n }

// Raise signals an interrupt on the line.
func (l Line) Raise() error { return l.c.Raise(l.n) }
