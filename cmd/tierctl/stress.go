package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/tierkit/alloc"
	"github.com/joshuapare/tierkit/codec"
	"github.com/joshuapare/tierkit/collections/array"
	"github.com/joshuapare/tierkit/collections/table"
	"github.com/joshuapare/tierkit/internal/logger"
	"github.com/joshuapare/tierkit/keys"
	"github.com/joshuapare/tierkit/metrics"
)

var (
	stressWorkload    string
	stressWorkers     int
	stressIterations  int
	stressMinSize     string
	stressMaxSize     string
	stressMmap        bool
	stressMetricsAddr string
	stressCleanup     bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().StringVarP(&stressWorkload, "workload", "w", "", "YAML workload file")
	cmd.Flags().IntVar(&stressWorkers, "workers", 0, "Concurrent workers (overrides workload)")
	cmd.Flags().IntVar(&stressIterations, "iterations", 0, "Operations per worker (overrides workload)")
	cmd.Flags().StringVar(&stressMinSize, "min-size", "", "Smallest raw block, e.g. 8B (overrides workload)")
	cmd.Flags().StringVar(&stressMaxSize, "max-size", "", "Largest raw block, e.g. 16KB (overrides workload)")
	cmd.Flags().BoolVar(&stressMmap, "mmap", false, "Map large blocks with mmap instead of the Go heap")
	cmd.Flags().StringVar(&stressMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&stressCleanup, "cleanup", true, "Clear the caches when the run ends")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Drive concurrent workers against the allocator",
		Long: `The stress command runs workers, each with its own local tier, that mix
raw block alloc/free, array appends and table inserts/deletes, then prints
the allocator statistics.

Example:
  tierctl stress --workers 8 --iterations 50000
  tierctl stress --workload heavy.yaml --mmap --json
  tierctl stress --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := stressConfig(cmd)
			if err != nil {
				return err
			}
			return runStress(cmd.Context(), w)
		},
	}
	return cmd
}

// stressConfig loads the workload file and applies explicitly set flags on top.
func stressConfig(cmd *cobra.Command) (Workload, error) {
	w, err := loadWorkload(stressWorkload)
	if err != nil {
		return w, err
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		w.Workers = stressWorkers
	}
	if flags.Changed("iterations") {
		w.Iterations = stressIterations
	}
	if flags.Changed("min-size") {
		if w.MinSize, err = parseByteSize(stressMinSize); err != nil {
			return w, err
		}
	}
	if flags.Changed("max-size") {
		if w.MaxSize, err = parseByteSize(stressMaxSize); err != nil {
			return w, err
		}
	}
	if flags.Changed("mmap") {
		w.Mmap = stressMmap
	}
	return w, w.validate()
}

type stressReport struct {
	Workload Workload      `json:"workload"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Stats    alloc.Stats   `json:"stats"`
}

func runStress(ctx context.Context, w Workload) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var src alloc.Source = alloc.HeapSource{}
	if w.Mmap {
		src = alloc.NewMmapSource(0)
	}
	a := alloc.New(&alloc.Config{Source: src})

	if stressMetricsAddr != "" {
		stop, err := serveMetrics(a, stressMetricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	logger.Info("stress start", "workers", w.Workers, "iterations", w.Iterations,
		"min_size", w.MinSize.String(), "max_size", w.MaxSize.String(), "mmap", w.Mmap)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for id := range w.Workers {
		g.Go(func() error {
			l := a.NewLocal()
			defer l.Close()
			return stressWorker(alloc.WithLocal(ctx, l), w, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	report := stressReport{Workload: w, Elapsed: elapsed, Stats: a.Stats()}
	if stressCleanup {
		a.Cleanup()
	}
	logger.Info("stress done", "elapsed", elapsed)

	if jsonOut {
		return printJSON(report)
	}
	printStressReport(report)
	return nil
}

// stressWorker runs one worker's operation mix on the Local carried by ctx.
func stressWorker(ctx context.Context, w Workload, id int) error {
	l, ok := alloc.LocalFrom(ctx)
	if !ok {
		return errors.New("stress worker without local tier")
	}
	rng := rand.New(rand.NewPCG(w.Seed, uint64(id)))

	held := make([]*alloc.Block, 0, w.Held)
	tb := table.New(l, codec.Int64(), codec.Int64(), keys.Int64(), nil)
	defer tb.Free()

	span := int(w.MaxSize-w.MinSize) + 1
	for i := range w.Iterations {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		switch op := rng.IntN(10); {
		case op < 6:
			b := l.Alloc(int(w.MinSize) + rng.IntN(span))
			if b.Size() > 0 {
				b.Bytes()[0] = byte(id)
			}
			if len(held) < w.Held {
				held = append(held, b)
				continue
			}
			j := rng.IntN(len(held) + 1)
			if j < len(held) {
				held[j], b = b, held[j]
			}
			if err := l.Free(b); err != nil {
				return fmt.Errorf("worker %d: %w", id, err)
			}
		case op < 8:
			arr := array.New(l, codec.Int64(), nil)
			for v := range w.ArrayLen {
				arr.Append(int64(v))
			}
			arr.Free()
		default:
			if w.TableKeys == 0 {
				continue
			}
			k := rng.Int64N(int64(w.TableKeys))
			if rng.IntN(3) == 0 {
				if err := tb.Delete(k); err != nil && !errors.Is(err, table.ErrKeyNotFound) {
					return fmt.Errorf("worker %d: %w", id, err)
				}
				continue
			}
			tb.Set(k, int64(i))
		}
	}

	for _, b := range held {
		if err := l.Free(b); err != nil {
			return fmt.Errorf("worker %d: %w", id, err)
		}
	}
	logger.Debug("worker done", "worker", id, "table_len", tb.Len(), "local", l.Stats())
	return nil
}

// serveMetrics exposes a's collector over HTTP until stop is called.
func serveMetrics(a *alloc.Allocator, addr string) (stop func(), err error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector(a, nil)); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	printVerbose("Serving metrics on %s/metrics\n", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "addr", addr, "error", err)
		}
	}, nil
}

func printStressReport(r stressReport) {
	w := r.Workload
	printInfo("Stress: %d workers x %s ops, blocks %s - %s, %s\n",
		w.Workers, humanize.Comma(int64(w.Iterations)), w.MinSize.HumanReadable(), w.MaxSize.HumanReadable(), r.Elapsed.Round(time.Millisecond))
	printTier("Local", r.Stats.Local)
	printTier("Global", r.Stats.Global)

	if verbose && len(r.Stats.Classes) > 0 {
		printInfo("\nGlobal cache by size class:\n")
		for _, c := range r.Stats.Classes {
			upper := "large"
			if c.Upper >= 0 {
				upper = "<= " + humanize.IBytes(uint64(c.Upper))
			}
			printInfo("  %-12s %6d blocks  %s\n", upper, c.Blocks, humanize.IBytes(uint64(c.Bytes)))
		}
	}
}

func printTier(name string, s alloc.TierStats) {
	printInfo("\n%s tier:\n", name)
	printInfo("  Hits:   %s (%.1f%%)\n", humanize.Comma(s.Hits), s.HitRate()*100)
	printInfo("  Misses: %s\n", humanize.Comma(s.Misses))
	printInfo("  Frees:  %s\n", humanize.Comma(s.Frees))
	printInfo("  Fresh:  %s\n", humanize.IBytes(uint64(s.FreshBytes)))
	printInfo("  Cached: %s blocks, %s\n", humanize.Comma(s.CachedBlocks), humanize.IBytes(uint64(s.CachedBytes)))
}
