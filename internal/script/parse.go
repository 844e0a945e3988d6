// Package script reads and runs memory-model driver scripts.
//
// A script is a list of commands, one per line:
//
//	# comment
//	space root
//	root ram 0x10000 align=0x1000 lazy
//	alloc buf ram 0x100 align=16
//	write32 buf 0x1000 0xdeadbeef
//	read32 ram 0x1000 expect=0xdeadbeef
//	map ram_hi ram 0x8000_0000
//	irq pic 8 0x0c00_0000
//	enable pic 3
//	raise pic 3
//	pending pic 3 expect=1
//	dump
//
// Numbers use Go literal syntax. Options are key=value pairs and flags are
// bare words; both follow the positional arguments.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrSyntax indicates a malformed command line.
	ErrSyntax = errors.New("script: syntax error")

	// ErrExpect indicates a read that returned a different value than expected.
	ErrExpect = errors.New("script: unexpected value")

	// ErrUnknownRegion indicates a command naming a region the script never created.
	ErrUnknownRegion = errors.New("script: unknown region")

	// ErrNotIRQ indicates an interrupt command naming a region that is not
	// the register bank of an irq controller.
	ErrNotIRQ = errors.New("script: not an irq controller")
)

// Command is one parsed script line.
type Command struct {
	Line  int
	Op    string
	Args  []string
	Opts  map[string]string
	Flags map[string]bool
}

func (c Command) String() string {
	return fmt.Sprintf("%d: %s %s", c.Line, c.Op, strings.Join(c.Args, " "))
}

// Opt returns option key parsed as a number, or def when absent.
func (c Command) Opt(key string, def uint64) (uint64, error) {
	v, ok := c.Opts[key]
	if !ok {
		return def, nil
	}
	return ParseNumber(v)
}

// ParseOptions controls Parse.
type ParseOptions struct {
	// Encoding of the input: UTF-8 (default), LATIN1 or WINDOWS-1252.
	Encoding string
}

// signature describes the positional arguments and accepted options of an op.
type signature struct {
	args  int
	opts  []string
	flags []string
}

var commands = map[string]signature{
	"space":    {args: 1},
	"root":     {args: 2, opts: []string{OptAlign}, flags: []string{FlagLazy}},
	"alloc":    {args: 3, opts: []string{OptAlign}},
	"map":      {args: 3},
	"mapp":     {args: 5},
	"file":     {args: 2, opts: []string{OptAlign}, flags: []string{FlagRW}},
	"free":     {args: 1},
	"freeheap": {args: 1},
	"delete":   {args: 1},
	"add":      {args: 1},
	"sync":     {args: 1},
	"dump":     {args: 0},
	"irq":      {args: 3},
	"enable":   {args: 2},
	"disable":  {args: 2},
	"raise":    {args: 2},
	"ack":      {args: 2},
	"pending":  {args: 2, opts: []string{OptExpect}},
}

func init() {
	for _, w := range []string{"8", "16", "32", "64"} {
		commands["write"+w] = signature{args: 3}
		commands["read"+w] = signature{args: 2, opts: []string{OptExpect}}
		commands["swrite"+w] = signature{args: 2}
		commands["sread"+w] = signature{args: 1, opts: []string{OptExpect}}
	}
}

// Parse reads a script. Errors carry the offending line number.
func Parse(r io.Reader, opts ParseOptions) ([]Command, error) {
	dr, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(dr)
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	var cmds []Command
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), CR)
		if i := strings.Index(text, CommentPrefix); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		cmd, err := parseCommand(line, fields)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning script: %w", err)
	}
	return cmds, nil
}

func parseCommand(line int, fields []string) (Command, error) {
	op := strings.ToLower(fields[0])
	sp, ok := commands[op]
	if !ok {
		return Command{}, fmt.Errorf("%w: line %d: unknown command %q", ErrSyntax, line, fields[0])
	}
	cmd := Command{Line: line, Op: op, Opts: map[string]string{}, Flags: map[string]bool{}}

	for _, f := range fields[1:] {
		if k, v, found := strings.Cut(f, OptionSeparator); found {
			if !slices.Contains(sp.opts, k) {
				return Command{}, fmt.Errorf("%w: line %d: %s does not take %s=", ErrSyntax, line, op, k)
			}
			cmd.Opts[k] = v
			continue
		}
		if slices.Contains(sp.flags, f) || f == FlagFail {
			cmd.Flags[f] = true
			continue
		}
		if len(cmd.Opts) > 0 || len(cmd.Flags) > 0 {
			return Command{}, fmt.Errorf("%w: line %d: argument %q after options", ErrSyntax, line, f)
		}
		cmd.Args = append(cmd.Args, f)
	}
	if len(cmd.Args) != sp.args {
		return Command{}, fmt.Errorf("%w: line %d: %s takes %d arguments, got %d",
			ErrSyntax, line, op, sp.args, len(cmd.Args))
	}
	return cmd, nil
}

// ParseNumber parses a number in Go literal syntax: 16, 0x10, 0o20, 0b1_0000.
func ParseNumber(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, s)
	}
	return n, nil
}

// ParseFile reads the script at path.
func ParseFile(path string, opts ParseOptions) ([]Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f, opts)
}
