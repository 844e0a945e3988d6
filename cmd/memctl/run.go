package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/script"
	"github.com/joshuapare/memkit/pkg/dm"
)

var (
	runEncoding string
	runWatch    bool
	runLogAlloc bool
	runRootBase uint64
	runRootSize uint64
	runPageSize uint64
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runEncoding, "encoding", script.EncodingUTF8, "Script encoding (UTF-8, LATIN1, WINDOWS-1252)")
	cmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Re-run the script whenever it changes")
	cmd.Flags().BoolVar(&runLogAlloc, "log-alloc", false, "Log every allocator call (needs --log-level debug)")
	cmd.Flags().Uint64Var(&runRootBase, "root-base", 0, "First address of the standalone region range")
	cmd.Flags().Uint64Var(&runRootSize, "root-size", 0, "Size of the standalone region range (default: full address space)")
	cmd.Flags().Uint64Var(&runPageSize, "page-size", 0, "Commit granularity of lazy regions (default: 4096)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a driver script",
		Long: `The run command executes a driver script against a fresh engine and
prints every value read. A read with expect= stops the run when the value
differs.

Example:
  memctl run boot.mk
  memctl run boot.mk --encoding LATIN1
  memctl run boot.mk --watch
  memctl run boot.mk --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runRun(ctx, args)
		},
	}
	return cmd
}

// RunReport is the JSON form of a run.
type RunReport struct {
	Script   string   `json:"script"`
	Commands int      `json:"commands"`
	Reads    int      `json:"reads"`
	Writes   int      `json:"writes"`
	IRQs     int      `json:"irqs"`
	Regions  []string `json:"regions"`
	Output   []string `json:"output,omitempty"`
	Elapsed  string   `json:"elapsed"`
	Error    string   `json:"error,omitempty"`
}

func runRun(ctx context.Context, args []string) error {
	path := args[0]
	if !runWatch {
		return runOnce(ctx, path)
	}

	if err := runOnce(ctx, path); err != nil {
		printError("%v\n", err)
	}
	printInfo("Watching %s (Ctrl-C to stop)\n", path)
	err := watchFile(ctx, path, func() {
		printVerbose("Change detected, re-running %s\n", path)
		if err := runOnce(ctx, path); err != nil {
			printError("%v\n", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runOnce executes the script at path on a new engine and reports the result.
func runOnce(ctx context.Context, path string) error {
	report, err := runScript(ctx, path)
	if jsonOut {
		if err != nil {
			report.Error = err.Error()
		}
		if jerr := printJSON(report); jerr != nil {
			return jerr
		}
		return err
	}
	if err != nil {
		return err
	}
	printVerbose("%d commands, %d reads, %d writes, %d interrupts in %s\n",
		report.Commands, report.Reads, report.Writes, report.IRQs, report.Elapsed)
	return nil
}

func runScript(ctx context.Context, path string) (RunReport, error) {
	report := RunReport{Script: path, Regions: []string{}}

	cmds, err := script.ParseFile(path, script.ParseOptions{Encoding: runEncoding})
	if err != nil {
		return report, err
	}
	printVerbose("Parsed %d commands from %s\n", len(cmds), path)

	opts := dm.DefaultOptions()
	opts.LogAlloc = runLogAlloc
	if runRootBase != 0 {
		opts.RootBase = runRootBase
	}
	if runRootSize != 0 {
		opts.RootSize = runRootSize
	}
	if runPageSize != 0 {
		opts.PageSize = runPageSize
	}
	e, err := dm.New(opts)
	if err != nil {
		return report, err
	}

	var out io.Writer = os.Stdout
	var captured bytes.Buffer
	switch {
	case jsonOut:
		out = &captured
	case quiet:
		out = io.Discard
	}

	start := time.Now()
	res, runErr := script.NewRunner(e, out).Run(ctx, cmds)
	closeErr := e.Close()
	report.Elapsed = time.Since(start).Round(time.Microsecond).String()

	report.Commands = res.Commands
	report.Reads = res.Reads
	report.Writes = res.Writes
	report.IRQs = res.IRQs
	for name := range res.Regions {
		report.Regions = append(report.Regions, name)
	}
	sort.Strings(report.Regions)
	if captured.Len() > 0 {
		report.Output = strings.Split(strings.TrimRight(captured.String(), "\n"), "\n")
	}

	if runErr != nil {
		return report, fmt.Errorf("%s: %w", path, runErr)
	}
	if closeErr != nil {
		return report, fmt.Errorf("closing engine: %w", closeErr)
	}
	return report, nil
}
