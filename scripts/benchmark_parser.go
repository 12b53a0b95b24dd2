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

	"github.com/dustin/go-humanize"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string // without the -GOMAXPROCS suffix
	Component   string // Array, Table, Local, Global, ...
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs a benchmark from the current run with its baseline.
type ComparisonResult struct {
	Name         string
	Component    string
	Current      BenchmarkResult
	Base         BenchmarkResult
	HasBase      bool
	Speedup      float64 // base ns / current ns
	CurrentOnly  bool
	BaselineOnly bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Benchmark output of the current run (stdin if not specified)",
	)
	baseFile   = flag.String("base", "", "Benchmark output of the baseline run to compare against")
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

// BenchmarkArray_Append-8    10000    12450 ns/op    4096 B/op    8 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	current, err := readResults(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(current))
	}

	var base []BenchmarkResult
	if *baseFile != "" {
		base, err = readResults(*baseFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading baseline: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Parsed %d baseline results\n", len(base))
		}
	}

	report := generateMarkdownReport(compare(current, base), time.Now())

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

func readResults(path string) ([]BenchmarkResult, error) {
	if path == "" {
		return parseBenchmarks(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseBenchmarks(f), nil
}

// parseBenchmarks reads plain or -json `go test -bench` output. When a
// benchmark appears several times (-count), the fastest run wins.
func parseBenchmarks(r io.Reader) []BenchmarkResult {
	best := make(map[string]BenchmarkResult)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		// Try to parse as JSON (from -json flag)
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		res := BenchmarkResult{Name: trimProcs(matches[1])}
		res.Component = componentOf(res.Name)
		res.Iterations, _ = strconv.Atoi(matches[2])
		res.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			res.BytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			res.AllocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		if prev, ok := best[res.Name]; !ok || res.NsPerOp < prev.NsPerOp {
			best[res.Name] = res
		}
	}

	results := make([]BenchmarkResult, 0, len(best))
	for _, r := range best {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

// trimProcs drops the trailing -N GOMAXPROCS suffix.
func trimProcs(name string) string {
	dash := strings.LastIndex(name, "-")
	if dash < 0 {
		return name
	}
	if _, err := strconv.Atoi(name[dash+1:]); err != nil {
		return name
	}
	return name[:dash]
}

// componentOf maps BenchmarkTable_Set/sub to "Table".
func componentOf(name string) string {
	c := strings.TrimPrefix(name, "Benchmark")
	if i := strings.IndexAny(c, "_/"); i > 0 {
		c = c[:i]
	}
	return c
}

func compare(current, base []BenchmarkResult) []ComparisonResult {
	baseByName := make(map[string]BenchmarkResult, len(base))
	for _, b := range base {
		baseByName[b.Name] = b
	}

	var out []ComparisonResult
	seen := make(map[string]bool, len(current))
	for _, c := range current {
		seen[c.Name] = true
		comp := ComparisonResult{Name: c.Name, Component: c.Component, Current: c}
		if b, ok := baseByName[c.Name]; ok {
			comp.Base = b
			comp.HasBase = true
			if c.NsPerOp > 0 {
				comp.Speedup = b.NsPerOp / c.NsPerOp
			}
		} else {
			comp.CurrentOnly = len(base) > 0
		}
		out = append(out, comp)
	}
	for _, b := range base {
		if !seen[b.Name] {
			out = append(out, ComparisonResult{Name: b.Name, Component: b.Component, Base: b, HasBase: true, BaselineOnly: true})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Component != out[j].Component {
			return out[i].Component < out[j].Component
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func generateMarkdownReport(comparisons []ComparisonResult, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	faster, slower, compared := 0, 0, 0
	total := 0.0
	for _, c := range comparisons {
		if c.Speedup == 0 {
			continue
		}
		compared++
		total += c.Speedup
		if c.Speedup > 1.0 {
			faster++
		} else if c.Speedup < 1.0 {
			slower++
		}
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total benchmarks**: %d\n", len(comparisons))
	if compared > 0 {
		fmt.Fprintf(&sb, "- **Compared with baseline**: %d\n", compared)
		fmt.Fprintf(&sb, "  - faster: %d\n", faster)
		fmt.Fprintf(&sb, "  - slower: %d\n", slower)
		fmt.Fprintf(&sb, "  - Average speedup: **%.2fx**\n", total/float64(compared))
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Component | Benchmark | ns/op | Baseline ns/op | Speedup | Memory (B/op) | Allocs |\n")
	sb.WriteString("|-----------|-----------|-------|----------------|---------|---------------|--------|\n")

	for _, c := range comparisons {
		switch {
		case c.BaselineOnly:
			fmt.Fprintf(&sb, "| %s | %s | *removed* | %s | | | |\n",
				c.Component, c.Name, formatNumber(c.Base.NsPerOp))
		case c.HasBase:
			indicator := "✓"
			if c.Speedup < 1.0 {
				indicator = "✗"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %.2fx %s | %s vs %s | %s vs %s |\n",
				c.Component, c.Name,
				formatNumber(c.Current.NsPerOp), formatNumber(c.Base.NsPerOp),
				c.Speedup, indicator,
				formatBytes(c.Current.BytesPerOp), formatBytes(c.Base.BytesPerOp),
				humanize.Comma(c.Current.AllocsPerOp), humanize.Comma(c.Base.AllocsPerOp))
		default:
			baseCol := "*N/A*"
			if c.CurrentOnly {
				baseCol = "*new*"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | | %s | %s |\n",
				c.Component, c.Name, formatNumber(c.Current.NsPerOp), baseCol,
				formatBytes(c.Current.BytesPerOp), humanize.Comma(c.Current.AllocsPerOp))
		}
	}
	sb.WriteString("\n")

	if compared > 0 {
		sb.WriteString("## Performance by Component\n\n")
		for _, line := range componentSummary(comparisons) {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Notes\n\n")
	sb.WriteString("- **Speedup > 1.0**: current run is faster ✓\n")
	sb.WriteString("- **Speedup < 1.0**: baseline is faster ✗\n")
	sb.WriteString("- Repeated runs (-count) keep the fastest result\n")

	return sb.String()
}

func componentSummary(comparisons []ComparisonResult) []string {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, c := range comparisons {
		if c.Speedup == 0 {
			continue
		}
		sums[c.Component] += c.Speedup
		counts[c.Component]++
	}

	names := make([]string, 0, len(sums))
	for n := range sums {
		names = append(names, n)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, n := range names {
		avg := sums[n] / float64(counts[n])
		status := "✓"
		if avg < 1.0 {
			status = "✗"
		}
		lines = append(lines, fmt.Sprintf("- %s **%s**: %.2fx average speedup\n", status, n, avg))
	}
	return lines
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	return humanize.IBytes(uint64(b))
}
