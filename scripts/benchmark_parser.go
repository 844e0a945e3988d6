//go:build ignore

// benchmark_parser turns `go test -bench` output into a markdown report that
// compares two implementations benchmarked side by side, by default the plain
// and locked address allocators:
//
//	go test -bench . -benchmem ./mem/alloc | go run scripts/benchmark_parser.go
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Size        string
	Impl        string
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs the baseline and candidate runs of one operation.
type ComparisonResult struct {
	Operation    string
	Size         string
	BaseNs       float64
	CandNs       float64
	Ratio        float64 // CandNs / BaseNs
	BaseAllocs   int64
	CandAllocs   int64
	BaselineOnly bool
}

var (
	inputFile  = flag.String("input", "", "Input file with benchmark output (stdin if not specified)")
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	baseline   = flag.String("base", "plain", "Implementation name used as the baseline")
	candidate  = flag.String("cand", "locked", "Implementation name compared against the baseline")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// BenchmarkAllocFree/plain/small-8    1000000    1043 ns/op    0 B/op    0 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	results := parseBenchmarks(bufio.NewScanner(in))
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	comparisons := generateComparisons(results, *baseline, *candidate)
	report := generateMarkdownReport(comparisons, *baseline, *candidate)

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult
	for scanner.Scan() {
		line := scanner.Text()

		// Accept `go test -json` events as well
		var event map[string]any
		if err := json.Unmarshal([]byte(line), &event); err == nil {
			if output, ok := event["Output"].(string); ok {
				line = output
			}
		}

		m := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		r := BenchmarkResult{Name: m[1]}
		r.Iterations, _ = strconv.Atoi(m[2])
		r.NsPerOp, _ = strconv.ParseFloat(m[3], 64)
		if m[4] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(m[4], 10, 64)
		}
		if m[5] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(m[5], 10, 64)
		}

		// Benchmark<Operation>/<impl>/<size>-<procs>
		parts := strings.Split(trimProcs(r.Name), "/")
		r.Operation = strings.TrimPrefix(parts[0], "Benchmark")
		if len(parts) >= 2 {
			r.Impl = parts[1]
		}
		if len(parts) >= 3 {
			r.Size = parts[len(parts)-1]
		}
		results = append(results, r)
	}
	return results
}

// trimProcs drops the -GOMAXPROCS suffix go test appends to names.
func trimProcs(name string) string {
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return name
	}
	if _, err := strconv.Atoi(name[i+1:]); err != nil {
		return name
	}
	return name[:i]
}

func generateComparisons(results []BenchmarkResult, base, cand string) []ComparisonResult {
	type key struct{ op, size string }
	grouped := make(map[key]map[string]BenchmarkResult)
	for _, r := range results {
		k := key{r.Operation, r.Size}
		if grouped[k] == nil {
			grouped[k] = make(map[string]BenchmarkResult)
		}
		grouped[k][r.Impl] = r
	}

	var comparisons []ComparisonResult
	for k, impls := range grouped {
		b, hasBase := impls[base]
		if !hasBase {
			continue
		}
		c := ComparisonResult{
			Operation:  k.op,
			Size:       k.size,
			BaseNs:     b.NsPerOp,
			BaseAllocs: b.AllocsPerOp,
		}
		if cr, ok := impls[cand]; ok {
			c.CandNs = cr.NsPerOp
			c.CandAllocs = cr.AllocsPerOp
			c.Ratio = cr.NsPerOp / b.NsPerOp
		} else {
			c.BaselineOnly = true
		}
		comparisons = append(comparisons, c)
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		return comparisons[i].Size < comparisons[j].Size
	})
	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, base, cand string) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	total, count := 0.0, 0
	for _, c := range comparisons {
		if !c.BaselineOnly {
			total += c.Ratio
			count++
		}
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Operations**: %d\n", len(comparisons)))
	sb.WriteString(fmt.Sprintf("- **Compared** (%s and %s): %d\n", base, cand, count))
	if count > 0 {
		sb.WriteString(fmt.Sprintf("- **Average %s/%s time**: %.2fx\n", cand, base, total/float64(count)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString(fmt.Sprintf("| Operation | Size | %s (ns/op) | %s (ns/op) | Ratio | Allocs |\n", base, cand))
	sb.WriteString("|-----------|------|------------|------------|-------|--------|\n")
	for _, c := range comparisons {
		if c.BaselineOnly {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | *N/A* | *%s only* | %d |\n",
				c.Operation, c.Size, formatNumber(c.BaseNs), base, c.BaseAllocs))
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2fx | %d vs %d |\n",
			c.Operation, c.Size, formatNumber(c.BaseNs), formatNumber(c.CandNs),
			c.Ratio, c.BaseAllocs, c.CandAllocs))
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString(fmt.Sprintf("- **Ratio** is %s time over %s time; above 1.0 the %s variant is slower\n", cand, base, cand))
	sb.WriteString("- **Allocs** are Go heap allocations per operation; fewer is better\n")
	return sb.String()
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}
