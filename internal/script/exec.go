package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/pkg/dm"
)

// DefaultSpace is the space commands use until a space command selects another.
const DefaultSpace = "root"

// Result summarizes a run.
type Result struct {
	Commands int
	Reads    int
	Writes   int
	// IRQs counts interrupts delivered to irq controllers.
	IRQs int
	// Regions maps every name the script still holds to its handle.
	Regions map[string]dm.Handle
	// Space is the space selected when the run ended.
	Space dm.Handle
}

// Runner executes commands against an engine.
type Runner struct {
	e       *dm.Engine
	out     io.Writer
	space   dm.Handle
	regions map[string]dm.Handle
	irqs    map[dm.Handle]dm.Handle // register region -> controller
	res     Result
}

// NewRunner creates a runner printing read results and dumps to out.
// out may be nil.
func NewRunner(e *dm.Engine, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		e:       e,
		out:     out,
		regions: make(map[string]dm.Handle),
		irqs:    make(map[dm.Handle]dm.Handle),
	}
}

// Run executes cmds in order and stops at the first failure. A command
// flagged fail must return an error and the run continues past it.
func (r *Runner) Run(ctx context.Context, cmds []Command) (Result, error) {
	if r.space == 0 {
		sp, err := r.e.Space(DefaultSpace)
		if err != nil {
			return r.result(), err
		}
		r.space = sp
	}
	for _, c := range cmds {
		if err := ctx.Err(); err != nil {
			return r.result(), err
		}
		err := r.exec(ctx, c)
		r.res.Commands++
		if c.Flags[FlagFail] {
			if err == nil {
				return r.result(), fmt.Errorf("line %d: %s: expected failure", c.Line, c.Op)
			}
			logger.Debug("expected failure", "line", c.Line, "op", c.Op, "err", err)
			continue
		}
		if err != nil {
			return r.result(), fmt.Errorf("line %d: %s: %w", c.Line, c.Op, err)
		}
	}
	return r.result(), nil
}

func (r *Runner) result() Result {
	res := r.res
	res.Space = r.space
	res.Regions = make(map[string]dm.Handle, len(r.regions))
	for k, v := range r.regions {
		res.Regions[k] = v
	}
	return res
}

func (r *Runner) region(name string) (dm.Handle, error) {
	h, ok := r.regions[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return h, nil
}

func (r *Runner) exec(ctx context.Context, c Command) error {
	logger.Debug("exec", "line", c.Line, "op", c.Op, "args", c.Args)

	switch {
	case strings.HasPrefix(c.Op, "write"):
		return r.write(c)
	case strings.HasPrefix(c.Op, "read"):
		return r.read(c)
	case strings.HasPrefix(c.Op, "swrite"):
		return r.spaceWrite(c)
	case strings.HasPrefix(c.Op, "sread"):
		return r.spaceRead(c)
	}

	switch c.Op {
	case "space":
		sp, err := r.e.Space(c.Args[0])
		if err != nil {
			return err
		}
		r.space = sp
		return nil

	case "root":
		size, err := ParseNumber(c.Args[1])
		if err != nil {
			return err
		}
		align, err := c.Opt(OptAlign, DefaultAlign)
		if err != nil {
			return err
		}
		h, err := r.e.AllocRegion(0, size, align, c.Flags[FlagLazy])
		if err != nil {
			return err
		}
		return r.adopt(c.Args[0], h)

	case "file":
		align, err := c.Opt(OptAlign, DefaultAlign)
		if err != nil {
			return err
		}
		h, err := r.e.MapFile(c.Args[1], align, c.Flags[FlagRW])
		if err != nil {
			return err
		}
		return r.adopt(c.Args[0], h)

	case "alloc":
		parent, err := r.region(c.Args[1])
		if err != nil {
			return err
		}
		size, err := ParseNumber(c.Args[2])
		if err != nil {
			return err
		}
		align, err := c.Opt(OptAlign, DefaultAlign)
		if err != nil {
			return err
		}
		heap, err := r.e.Heap(parent)
		if err != nil {
			return err
		}
		h, err := r.e.AllocRegion(heap, size, align, false)
		if err != nil {
			return err
		}
		r.regions[c.Args[0]] = h
		return nil

	case "map", "mapp":
		src, err := r.region(c.Args[1])
		if err != nil {
			return err
		}
		nums := make([]uint64, len(c.Args)-2)
		for i, a := range c.Args[2:] {
			if nums[i], err = ParseNumber(a); err != nil {
				return err
			}
		}
		var h dm.Handle
		if c.Op == "map" {
			h, err = r.e.MapRegion(src, nums[0])
		} else {
			h, err = r.e.MapRegionPartial(src, nums[0], nums[1], nums[2])
		}
		if err != nil {
			return err
		}
		r.regions[c.Args[0]] = h
		return nil

	case "add":
		h, err := r.region(c.Args[0])
		if err != nil {
			return err
		}
		return r.register(c.Args[0], h)

	case "free":
		h, err := r.region(c.Args[0])
		if err != nil {
			return err
		}
		if err := r.e.FreeRegion(h); err != nil {
			return err
		}
		delete(r.regions, c.Args[0])
		r.dropIRQ(h)
		return nil

	case "freeheap":
		h, err := r.region(c.Args[0])
		if err != nil {
			return err
		}
		heap, err := r.e.Heap(h)
		if err != nil {
			return err
		}
		return r.e.FreeHeap(heap)

	case "delete":
		if err := r.e.DeleteRegion(r.space, c.Args[0]); err != nil {
			return err
		}
		if h, ok := r.regions[c.Args[0]]; ok {
			r.dropIRQ(h)
		}
		delete(r.regions, c.Args[0])
		return nil

	case "sync":
		h, err := r.region(c.Args[0])
		if err != nil {
			return err
		}
		return r.e.Sync(ctx, h)

	case "irq":
		return r.newIRQ(c)

	case "enable", "disable", "raise", "ack", "pending":
		return r.irqOp(c)

	case "dump":
		return r.e.Dump(r.space, r.out)
	}
	return fmt.Errorf("%w: %s", ErrSyntax, c.Op)
}

// adopt registers a region the command just created. The region is freed
// when the space rejects it.
func (r *Runner) adopt(name string, h dm.Handle) error {
	if err := r.register(name, h); err != nil {
		return errors.Join(err, r.e.FreeRegion(h))
	}
	return nil
}

// register adds h to the current space under name. A region superseded by
// the add is freed. A rejected add leaves h and the script's names untouched.
func (r *Runner) register(name string, h dm.Handle) error {
	held, hadName := r.regions[name]
	_, prev, err := r.e.AddRegion(r.space, name, h)
	if err != nil {
		return err
	}
	r.regions[name] = h
	if prev != 0 {
		logger.Info("region replaced", "name", name)
		if err := r.e.FreeRegion(prev); err != nil {
			return fmt.Errorf("free replaced %q: %w", name, err)
		}
		if hadName && held != h {
			r.dropIRQ(held)
		}
	}
	return nil
}
