package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/osdldbt/dbt5-sub001/internal/engine"
	"github.com/osdldbt/dbt5-sub001/internal/frame"
	"github.com/osdldbt/dbt5-sub001/internal/metrics"
	"github.com/osdldbt/dbt5-sub001/internal/store"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Args        []string
	Count       int
	Concurrency int
	MetricsAddr string
}

// LatencyStats summarizes invocation latencies in milliseconds.
type LatencyStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	P50MS  float64 `json:"p50_ms"`
	P95MS  float64 `json:"p95_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// BenchResult is the summary of a bench run.
type BenchResult struct {
	Frame       string         `json:"frame"`
	Invocations int            `json:"invocations"`
	Concurrency int            `json:"concurrency"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
	Codes       map[string]int `json:"codes,omitempty"`
	ElapsedMS   float64        `json:"elapsed_ms"`
	Throughput  float64        `json:"throughput_per_sec"`
	Latency     LatencyStats   `json:"latency"`
}

// WriteText prints the summary as "key = value" lines.
func (r BenchResult) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "frame = %s\n", r.Frame)
	fmt.Fprintf(w, "invocations = %d\n", r.Invocations)
	fmt.Fprintf(w, "concurrency = %d\n", r.Concurrency)
	fmt.Fprintf(w, "succeeded = %d\n", r.Succeeded)
	fmt.Fprintf(w, "failed = %d\n", r.Failed)
	codes := make([]string, 0, len(r.Codes))
	for code := range r.Codes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "failed[%s] = %d\n", code, r.Codes[code])
	}
	fmt.Fprintf(w, "elapsed_ms = %.3f\n", r.ElapsedMS)
	fmt.Fprintf(w, "throughput_per_sec = %.1f\n", r.Throughput)
	_, err := fmt.Fprintf(w, "latency_ms min=%.3f mean=%.3f p50=%.3f p95=%.3f max=%.3f\n",
		r.Latency.MinMS, r.Latency.MeanMS, r.Latency.P50MS, r.Latency.P95MS, r.Latency.MaxMS)
	return err
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench <frame>",
		Short: "Invoke a frame repeatedly and report latency",
		Long: `Invoke one frame repeatedly, each call in its own transaction.

Calls run on a bounded pool of workers. Frame failures are counted by error
code and do not stop the run; any other error does. With --metrics-addr the
invocation counter and latency histogram are served at /metrics while the
run is in progress.

Exit codes:
  0 - Every invocation succeeded
  1 - One or more invocations failed
  2 - Command error

Examples:
  dbt5 bench TradeCleanupFrame1 -n 1000 -c 4 --arg canceled_status_id=CNCL \
    --arg pending_status_id=PNDG --arg submitted_status_id=SBMT \
    --arg trade_id_floor=0
  dbt5 bench BrokerVolumeFrame1 --arg broker_names=Alice \
    --arg sector_name=Technology --metrics-addr :9090`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "frame argument as name=value (repeatable)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 100, "number of invocations")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", 1, "number of concurrent workers")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")

	return cmd
}

func runBench(opts *BenchOptions, frameID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	if opts.Count < 1 || opts.Concurrency < 1 {
		return NewExitError(ExitCommandError, "--count and --concurrency must be positive")
	}
	params, ok := engine.Params(frameID)
	if !ok {
		return out.FrameError(frame.NewUnknownFrameError(frameID), "")
	}
	args, err := parseArgs(params, opts.Args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheus(reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "register metrics", err)
	}

	addr := opts.Config.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		addr = opts.MetricsAddr
	}
	if addr != "" {
		stop, err := serveMetrics(addr, reg, opts.Logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "serve metrics", err)
		}
		defer stop()
	}

	st, err := opts.openStore(ctx, false)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(
		engine.WithMetrics(recorder),
		engine.WithLogger(opts.Logger),
	)

	result, err := bench(ctx, st, eng, frameID, args, opts.Count, opts.Concurrency)
	if err != nil {
		return WrapExitError(ExitCommandError, "bench aborted", err)
	}
	opts.Logger.Info("bench completed",
		"frame", frameID,
		"invocations", result.Invocations,
		"failed", result.Failed,
	)

	if err := out.Success(result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invocation(s) failed", result.Failed))
	}
	return nil
}

// bench runs count invocations of frameID on at most concurrency workers.
func bench(ctx context.Context, st *store.Store, eng *engine.Engine, frameID string, args frame.Args, count, concurrency int) (BenchResult, error) {
	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, count)
		result    = BenchResult{
			Frame:       frameID,
			Invocations: count,
			Concurrency: concurrency,
			Codes:       map[string]int{},
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	start := time.Now()
	for range count {
		g.Go(func() error {
			var inv engine.Invocation
			err := st.RunInTx(gctx, func(tx *store.Tx) error {
				var err error
				inv, err = eng.Call(gctx, tx, frameID, args)
				return err
			})
			code := frame.CodeOf(err)
			if err != nil && code == "" {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			latencies = append(latencies, inv.Duration)
			if err != nil {
				result.Failed++
				result.Codes[string(code)]++
			} else {
				result.Succeeded++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BenchResult{}, err
	}
	elapsed := time.Since(start)

	result.ElapsedMS = millis(elapsed)
	if elapsed > 0 {
		result.Throughput = float64(count) / elapsed.Seconds()
	}
	result.Latency = summarize(latencies)
	return result, nil
}

// summarize computes latency statistics using nearest-rank percentiles.
func summarize(latencies []time.Duration) LatencyStats {
	if len(latencies) == 0 {
		return LatencyStats{}
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	rank := func(p float64) time.Duration {
		i := int(math.Ceil(p*float64(len(sorted)))) - 1
		return sorted[max(0, min(i, len(sorted)-1))]
	}
	return LatencyStats{
		MinMS:  millis(sorted[0]),
		MeanMS: millis(total / time.Duration(len(sorted))),
		P50MS:  millis(rank(0.50)),
		P95MS:  millis(rank(0.95)),
		MaxMS:  millis(sorted[len(sorted)-1]),
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// serveMetrics serves reg on addr until the returned stop func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}
