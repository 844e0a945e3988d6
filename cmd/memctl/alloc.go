package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/script"
	"github.com/joshuapare/memkit/mem/alloc"
)

var (
	allocBase   uint64
	allocSize   uint64
	allocLocked bool
)

func init() {
	cmd := newAllocCmd()
	cmd.Flags().Uint64Var(&allocBase, "base", 0, "First address managed by the allocator")
	cmd.Flags().Uint64Var(&allocSize, "size", 1<<32, "Number of addresses managed by the allocator")
	cmd.Flags().BoolVar(&allocLocked, "locked", false, "Use the mutex-guarded allocator")
	rootCmd.AddCommand(cmd)
}

func newAllocCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alloc <op>...",
		Short: "Replay allocations against an address allocator",
		Long: `The alloc command replays a sequence of operations against a fresh
address allocator and prints the address each allocation received.

An operation is either SIZE[:ALIGN] to allocate or free:ADDR to release
the block starting at ADDR. Numbers use Go literal syntax.

Example:
  memctl alloc 0x100 0x40:0x100 free:0 0x80
  memctl alloc --base 0x1000 --size 0x1000 0x800 0x800 0x1
  memctl alloc --json 16:16 16:16`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(args)
		},
	}
	return cmd
}

// AllocStep is one replayed operation.
type AllocStep struct {
	Op    string `json:"op"`
	Size  uint64 `json:"size,omitempty"`
	Align uint64 `json:"align,omitempty"`
	Addr  uint64 `json:"addr"`
	Error string `json:"error,omitempty"`
}

// AllocReport is the JSON form of a replay.
type AllocReport struct {
	Steps []AllocStep   `json:"steps"`
	Stats alloc.Stats   `json:"stats"`
	Free  []alloc.Range `json:"free"`
}

type rangeAllocator interface {
	alloc.AddrAllocator
	FreeRanges() []alloc.Range
}

func runAlloc(args []string) error {
	var (
		a   rangeAllocator
		err error
	)
	if allocLocked {
		a, err = alloc.NewLocked(allocBase, allocSize)
	} else {
		a, err = alloc.New(allocBase, allocSize)
	}
	if err != nil {
		return err
	}
	printVerbose("Allocator [%#x, %#x)\n", a.Base(), a.Base()+a.Size())

	report := AllocReport{Steps: make([]AllocStep, 0, len(args))}
	failed := 0
	for _, arg := range args {
		step, err := parseAllocStep(arg)
		if err != nil {
			return err
		}
		switch step.Op {
		case "alloc":
			step.Addr, err = a.Alloc(step.Size, step.Align)
		case "free":
			err = a.Free(step.Addr)
		}
		if err != nil {
			step.Error = err.Error()
			failed++
		}
		report.Steps = append(report.Steps, step)
	}
	report.Stats = a.Stats()
	report.Free = a.FreeRanges()

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printAllocReport(report)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d operations failed", failed, len(args))
	}
	return nil
}

func parseAllocStep(arg string) (AllocStep, error) {
	if addr, ok := strings.CutPrefix(arg, "free:"); ok {
		n, err := script.ParseNumber(addr)
		if err != nil {
			return AllocStep{}, err
		}
		return AllocStep{Op: "free", Addr: n}, nil
	}
	sizeStr, alignStr, hasAlign := strings.Cut(arg, ":")
	size, err := script.ParseNumber(sizeStr)
	if err != nil {
		return AllocStep{}, err
	}
	align := uint64(1)
	if hasAlign {
		if align, err = script.ParseNumber(alignStr); err != nil {
			return AllocStep{}, err
		}
	}
	return AllocStep{Op: "alloc", Size: size, Align: align}, nil
}

func printAllocReport(r AllocReport) {
	for _, s := range r.Steps {
		switch {
		case s.Error != "":
			printInfo("%s %s ERROR %s\n", s.Op, stepArgs(s), s.Error)
		case s.Op == "alloc":
			printInfo("%s %s -> %#x\n", s.Op, stepArgs(s), s.Addr)
		default:
			printInfo("%s %s ok\n", s.Op, stepArgs(s))
		}
	}
	printInfo("\nUsed: %#x bytes in %d blocks\n", r.Stats.UsedBytes, r.Stats.Allocations)
	printInfo("Free: %#x bytes in %d ranges (largest %#x, fragmentation %.1f%%)\n",
		r.Stats.FreeBytes, r.Stats.FreeRanges, r.Stats.LargestFree, r.Stats.Fragmentation*100)
	for _, fr := range r.Free {
		printVerbose("  %s\n", fr)
	}
}

func stepArgs(s AllocStep) string {
	if s.Op == "free" {
		return fmt.Sprintf("%#x", s.Addr)
	}
	return fmt.Sprintf("size=%#x align=%#x", s.Size, s.Align)
}
