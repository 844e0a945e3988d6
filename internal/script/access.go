package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/memkit/pkg/dm"
)

// width extracts the access width in bits from an op such as read32.
func width(op string) int {
	w, _ := strconv.Atoi(strings.TrimLeft(op, "abcdefghijklmnopqrstuvwxyz"))
	return w
}

func fits(v uint64, bits int) bool {
	return bits == 64 || v>>uint(bits) == 0
}

func (r *Runner) write(c Command) error {
	h, err := r.region(c.Args[0])
	if err != nil {
		return err
	}
	addr, err := ParseNumber(c.Args[1])
	if err != nil {
		return err
	}
	v, err := ParseNumber(c.Args[2])
	if err != nil {
		return err
	}
	bits := width(c.Op)
	if !fits(v, bits) {
		return fmt.Errorf("%w: %#x does not fit in %d bits", ErrSyntax, v, bits)
	}
	switch bits {
	case 8:
		err = r.e.Write8(h, addr, uint8(v))
	case 16:
		err = r.e.Write16(h, addr, uint16(v))
	case 32:
		err = r.e.Write32(h, addr, uint32(v))
	default:
		err = r.e.Write64(h, addr, v)
	}
	if err == nil {
		r.res.Writes++
	}
	return err
}

func (r *Runner) read(c Command) error {
	h, err := r.region(c.Args[0])
	if err != nil {
		return err
	}
	addr, err := ParseNumber(c.Args[1])
	if err != nil {
		return err
	}
	v, err := readWidth(width(c.Op), addr,
		func(a uint64) (uint8, error) { return r.e.Read8(h, a) },
		func(a uint64) (uint16, error) { return r.e.Read16(h, a) },
		func(a uint64) (uint32, error) { return r.e.Read32(h, a) },
		func(a uint64) (uint64, error) { return r.e.Read64(h, a) },
	)
	if err != nil {
		return err
	}
	r.res.Reads++
	fmt.Fprintf(r.out, "%s %s %#x = 0x%0*x\n", c.Op, c.Args[0], addr, width(c.Op)/4, v)
	return expect(c, v)
}

func (r *Runner) spaceWrite(c Command) error {
	addr, err := ParseNumber(c.Args[0])
	if err != nil {
		return err
	}
	v, err := ParseNumber(c.Args[1])
	if err != nil {
		return err
	}
	bits := width(c.Op)
	if !fits(v, bits) {
		return fmt.Errorf("%w: %#x does not fit in %d bits", ErrSyntax, v, bits)
	}
	switch bits {
	case 8:
		err = r.e.SpaceWrite8(r.space, addr, uint8(v))
	case 16:
		err = r.e.SpaceWrite16(r.space, addr, uint16(v))
	case 32:
		err = r.e.SpaceWrite32(r.space, addr, uint32(v))
	default:
		err = r.e.SpaceWrite64(r.space, addr, v)
	}
	if err == nil {
		r.res.Writes++
	}
	return err
}

func (r *Runner) spaceRead(c Command) error {
	addr, err := ParseNumber(c.Args[0])
	if err != nil {
		return err
	}
	s := r.space
	v, err := readWidth(width(c.Op), addr,
		func(a uint64) (uint8, error) { return r.e.SpaceRead8(s, a) },
		func(a uint64) (uint16, error) { return r.e.SpaceRead16(s, a) },
		func(a uint64) (uint32, error) { return r.e.SpaceRead32(s, a) },
		func(a uint64) (uint64, error) { return r.e.SpaceRead64(s, a) },
	)
	if err != nil {
		return err
	}
	r.res.Reads++
	fmt.Fprintf(r.out, "%s %#x = 0x%0*x\n", c.Op, addr, width(c.Op)/4, v)
	return expect(c, v)
}

func readWidth(
	bits int, addr uint64,
	r8 func(uint64) (uint8, error),
	r16 func(uint64) (uint16, error),
	r32 func(uint64) (uint32, error),
	r64 func(uint64) (uint64, error),
) (uint64, error) {
	switch bits {
	case 8:
		v, err := r8(addr)
		return uint64(v), err
	case 16:
		v, err := r16(addr)
		return uint64(v), err
	case 32:
		v, err := r32(addr)
		return uint64(v), err
	default:
		return r64(addr)
	}
}

func expect(c Command, got uint64) error {
	if _, ok := c.Opts[OptExpect]; !ok {
		return nil
	}
	want, err := c.Opt(OptExpect, 0)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: got %#x, want %#x", ErrExpect, got, want)
	}
	return nil
}

// Handle returns the handle the script holds for name, if any.
func (res Result) Handle(name string) (dm.Handle, bool) {
	h, ok := res.Regions[name]
	return h, ok
}
