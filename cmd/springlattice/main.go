package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/springlattice/internal/analysis"
	"github.com/san-kum/springlattice/internal/config"
	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/experiment"
	"github.com/san-kum/springlattice/internal/export"
	"github.com/san-kum/springlattice/internal/lattice"
	"github.com/san-kum/springlattice/internal/optim"
	"github.com/san-kum/springlattice/internal/sink"
	"github.com/san-kum/springlattice/internal/storage"
	"github.com/san-kum/springlattice/internal/viz"
)

var (
	dataDir     string
	eventsPath  string
	logLevel    string
	configFile  string
	preset      string
	size        int
	spacing     float64
	springK     float64
	stepRate    float64
	damping     float64
	duration    float64
	integrator  string
	workers     int
	stretchX    float64
	jitter      float64
	seed        int64
	dropTest    bool
	threshold   float64
	metricsAddr string
	pollRate    float64
	sweepKs     string
	runFilter   string
	tuneGrid    []string
	tuneMetric  string
	svgOut      string

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "springlattice",
		Short: "elastic body lattice simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				Prefix:          "springlattice",
				Level:           level,
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".springlattice", "data directory")
	rootCmd.PersistentFlags().StringVar(&eventsPath, "events", "", "drop event database (default <data>/events.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and archive its compression trace",
		RunE:  runSimulation,
	}
	addBodyFlags(runCmd)
	runCmd.Flags().BoolVar(&dropTest, "drop-test", false, "drop periodic impacts and record threshold crossings")
	runCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "drop test compression threshold")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "step in real time and expose metrics until interrupted",
		RunE:  serveSimulation,
	}
	addBodyFlags(serveCmd)
	serveCmd.Flags().BoolVar(&dropTest, "drop-test", true, "drop periodic impacts and record threshold crossings")
	serveCmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "drop test compression threshold")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "prometheus listen address")
	serveCmd.Flags().Float64Var(&pollRate, "poll-rate", 10, "drop test polls per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the compression trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the trace as SVG to this file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "list recorded drop test events",
		RunE:  listEvents,
	}
	eventsCmd.Flags().StringVar(&runFilter, "run", "", "only events of this run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the body in the terminal",
		RunE:  runLive,
	}
	addBodyFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one body per spring constant concurrently",
		RunE:  runSweep,
	}
	addBodyFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepKs, "ks", "2,5,10,20,40", "comma separated spring constants")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same body (all when none named)",
		RunE:  compareIntegrators,
	}
	addBodyFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tK\tDAMPING\tRATE\tINTEG\tDROP")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.1f\t%.2f\t%.0fHz\t%s\t%v\n",
					name, p.Lattice.Size, p.Physics.SpringConstant, p.Physics.Damping,
					p.Physics.StepRate, p.Integrator, p.DropTest.Enabled)
			}
			return w.Flush()
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search physical parameters minimizing a run metric",
		RunE:  tuneParameters,
	}
	addBodyFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", []string{"damping=0,0.1,0.5,1"}, "name=v1,v2,... (k, damping, mass, rate, spacing)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "mean_compression", "metric to minimize")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "simulate and write the final body shape as SVG",
		RunE:  snapshotBody,
	}
	addBodyFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&svgOut, "out", "body.svg", "output file")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput by size and workers",
		RunE:  benchLattice,
	}

	rootCmd.AddCommand(runCmd, serveCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, eventsCmd,
		liveCmd, sweepCmd, compareCmd, tuneCmd, snapshotCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addBodyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&size, "size", config.DefaultSize, "masses per edge")
	f.Float64Var(&spacing, "spacing", config.DefaultSpacing, "rest distance between neighbors")
	f.Float64Var(&springK, "k", config.DefaultSpringConstant, "spring constant")
	f.Float64Var(&stepRate, "rate", config.DefaultStepRate, "steps per simulated second")
	f.Float64Var(&damping, "damping", 0, "linear velocity damping")
	f.Float64Var(&duration, "time", config.DefaultDuration, "simulated duration in seconds")
	f.StringVar(&integrator, "integrator", "symplectic", "euler or symplectic")
	f.IntVar(&workers, "workers", 1, "force pass workers")
	f.Float64Var(&stretchX, "stretch", 0, "initial strain along x")
	f.Float64Var(&jitter, "jitter", 0, "initial random displacement, in spacings")
	f.Int64Var(&seed, "seed", 0, "jitter seed")
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("size") {
		cfg.Lattice.Size = size
	}
	if changed("spacing") {
		cfg.Lattice.Spacing = spacing
	}
	if changed("k") {
		cfg.Physics.SpringConstant = springK
	}
	if changed("rate") {
		cfg.Physics.StepRate = stepRate
	}
	if changed("damping") {
		cfg.Physics.Damping = damping
	}
	if changed("time") {
		cfg.Duration = duration
	}
	if changed("integrator") {
		cfg.Integrator = integrator
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("stretch") {
		cfg.Perturb.StretchX = stretchX
	}
	if changed("jitter") {
		cfg.Perturb.Jitter = jitter
	}
	if changed("seed") {
		cfg.Perturb.Seed = seed
	}
	if f := cmd.Flags().Lookup("drop-test"); f != nil && (f.Changed || (preset == "" && configFile == "")) {
		cfg.DropTest.Enabled = dropTest
	}
	if changed("threshold") {
		cfg.DropTest.Threshold = threshold
	}
	return cfg, nil
}

func openEvents() (*storage.EventLog, error) {
	path := eventsPath
	if path == "" {
		path = filepath.Join(dataDir, "events.db")
	}
	return storage.NewEventLog(path)
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	opts := []experiment.Option{experiment.WithLogger(logger)}
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		prom, err := sink.NewPrometheus(reg)
		if err != nil {
			return err
		}
		srv := serveMetrics(metricsAddr, reg)
		defer srv.Close()
		opts = append(opts, experiment.WithSink(prom))
	}

	runTag := fmt.Sprintf("run_%d", time.Now().UnixNano())
	if cfg.DropTest.Enabled {
		events, err := openEvents()
		if err != nil {
			return err
		}
		defer events.Close()
		opts = append(opts, experiment.WithRecorder(events, runTag))
	}

	exp := experiment.New(cfg, opts...)
	if err := exp.Setup(); err != nil {
		return err
	}

	dcfg := exp.Simulator().Config()
	logger.Info("running",
		"size", dcfg.Size,
		"links", lattice.LinkCount(dcfg.Size).Total(),
		"k", dcfg.SpringConstant,
		"rate", dcfg.StepRate,
		"integrator", cfg.Integrator,
	)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	for _, stepErr := range result.Errors {
		logger.Warn("run stopped early", "err", stepErr)
	}

	meta := storage.NewRunMetadata(dcfg, cfg.Integrator, cfg.Duration)
	meta.Preset = preset
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if dt := exp.DropTest(); dt != nil {
		fmt.Printf("impacts: %d  threshold events: %d  (tag %s)\n", dt.Drops(), dt.Events(), runTag)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func serveSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if pollRate <= 0 {
		return fmt.Errorf("poll rate must be positive, got %v", pollRate)
	}

	reg := prometheus.NewRegistry()
	prom, err := sink.NewPrometheus(reg)
	if err != nil {
		return err
	}
	srv := serveMetrics(metricsAddr, reg)
	defer srv.Close()

	// The drop test is driven from its own poll loop below, not per step.
	dropCfg := cfg.DropTest
	cfg.DropTest.Enabled = false

	exp := experiment.New(cfg, experiment.WithLogger(logger), experiment.WithSink(prom))
	if err := exp.Setup(); err != nil {
		return err
	}
	sim := exp.Simulator()

	var dt *sink.DropTest
	if dropCfg.Enabled {
		events, err := openEvents()
		if err != nil {
			return err
		}
		defer events.Close()

		dt, err = sink.NewDropTest(sink.DropTestConfig{
			Threshold: dropCfg.Threshold,
			Interval:  dropCfg.Interval,
			Impulse:   dropCfg.Impulse,
		}, sim, sim,
			sink.WithRecorder(events),
			sink.WithDropLogger(logger),
			sink.WithRunID(fmt.Sprintf("serve_%d", time.Now().UnixNano())),
		)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("stepping", "rate", cfg.Physics.StepRate, "drop_test", dt != nil)
	if err := stepAndPoll(ctx, sim, dt, pollRate, logger); err != nil {
		return err
	}
	logger.Info("stopped", "t", sim.Time(), "compression", sim.CurrentAverageCompression())
	return nil
}

// stepAndPoll steps sim in real time and, when dt is set, ticks it at
// pollRate. It returns once every goroutine it started has stopped.
func stepAndPoll(ctx context.Context, sim *dynamo.Simulator, dt *sink.DropTest, pollRate float64, logger *log.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sim.RunFixedRate(ctx) })

	if dt != nil {
		g.Go(func() error {
			ticker := time.NewTicker(dynamo.TickInterval(pollRate))
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := dt.Tick(ctx, sim.Time()); err != nil {
						logger.Warn("drop test", "err", err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSIZE\tK\tRATE\tDURATION\tINTEG\tPEAK")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%.0fHz\t%.2fs\t%s\t%.5f\n",
			run.ID,
			orDash(run.Preset),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Size,
			run.SpringConstant,
			run.StepRate,
			run.Duration,
			run.Integrator,
			run.Metrics["peak_compression"],
		)
	}

	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, compression, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(compression) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.TraceToSVG(times, compression, 800, 300, "#00ccff")), 0644); err != nil {
			return err
		}
		logger.Info("wrote trace", "path", svgOut)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("body: %d^3, k=%.2f, %s\n", meta.Size, meta.SpringConstant, meta.Integrator)
	fmt.Printf("samples: %d\n\n", len(compression))

	graph := asciigraph.Plot(compression,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("average compression vs step"),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, compression, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	summary, err := analysis.Summarize(times, compression, meta.StepRate, 1e-3)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "steps\t%d\n", summary.Steps)
	fmt.Fprintf(w, "mean\t%.6f\n", summary.Mean)
	fmt.Fprintf(w, "stddev\t%.6f\n", summary.StdDev)
	fmt.Fprintf(w, "peak\t%.6f at %.2fs\n", summary.Peak, summary.PeakTime)
	fmt.Fprintf(w, "final\t%.6f\n", summary.Final)
	if summary.Settled {
		fmt.Fprintf(w, "settled\tat %.2fs\n", summary.SettlingTime)
	} else {
		fmt.Fprintf(w, "settled\tno\n")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(compression)
	if len(ps) > 2 {
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("compression spectrum"),
		)
		fmt.Println()
		fmt.Println(graph)
	}

	if summary.DominantFrequency > 0 {
		fmt.Printf("\ndominant frequency: %.3f hz\n", summary.DominantFrequency)
		fmt.Printf("period: %.3f s\n", 1.0/summary.DominantFrequency)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func listEvents(cmd *cobra.Command, args []string) error {
	events, err := openEvents()
	if err != nil {
		return err
	}
	defer events.Close()

	list, err := events.List(cmd.Context(), runFilter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no events recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSIM TIME\tCOMPRESSION\tTHRESHOLD\tDROP\tRECORDED")
	for _, ev := range list {
		fmt.Fprintf(w, "%s\t%.2fs\t%.5f\t%.5f\t%d\t%s\n",
			ev.RunID, ev.SimTime, ev.Compression, ev.Threshold, ev.Drop,
			ev.RecordedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = fmt.Sprintf("lattice %d^3", cfg.Lattice.Size)
	}
	return viz.RunLive(cfg, name)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var ks []float64
	for _, field := range strings.Split(sweepKs, ",") {
		k, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("bad spring constant %q: %w", field, err)
		}
		ks = append(ks, k)
	}

	start := time.Now()
	points, err := experiment.Sweep(cmd.Context(), cfg, ks)
	if err != nil {
		return err
	}
	logger.Info("sweep finished", "bodies", len(points), "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "K\tSTEPS\tMEAN\tPEAK\tFINAL\tDRIFT")
	for _, p := range points {
		if err := p.Err(); err != nil {
			logger.Warn("sweep body stopped early", "k", p.SpringConstant, "steps", p.Result.StepsTaken, "err", err)
		}
		final := 0.0
		if n := len(p.Result.Compression); n > 0 {
			final = p.Result.Compression[n-1]
		}
		fmt.Fprintf(w, "%.2f\t%d\t%.6f\t%.6f\t%.6f\t%.2e\n",
			p.SpringConstant, p.Result.StepsTaken,
			p.Result.Metrics["mean_compression"], p.Result.Metrics["peak_compression"],
			final, p.Result.Metrics["energy_drift"])
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Perturb.IsZero() {
		cfg.Perturb.StretchX = 0.1
	}
	if len(args) == 0 {
		args = experiment.NewRegistry().ListIntegrators()
	}

	fmt.Printf("comparing integrators (size=%d, k=%.2f, rate=%.0fHz, duration=%.1fs)\n\n",
		cfg.Lattice.Size, cfg.Physics.SpringConstant, cfg.Physics.StepRate, cfg.Duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "final_comp", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 54))

	for _, name := range args {
		c := *cfg
		c.Integrator = name
		c.DropTest.Enabled = false

		exp := experiment.New(&c)
		if err := exp.Setup(); err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		final := 0.0
		if n := len(result.Compression); n > 0 {
			final = result.Compression[n-1]
		}
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f\n", name, final, result.Metrics["energy_drift"], float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func tuneParameters(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Perturb.IsZero() {
		cfg.Perturb.StretchX = 0.1
	}

	names := make([]string, 0, len(tuneGrid))
	ranges := make([][]float64, 0, len(tuneGrid))
	for _, spec := range tuneGrid {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("grid %q: expected name=v1,v2", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("grid %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}

	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	start := time.Now()
	best, value, err := search.Search(cmd.Context(), cfg, tuneMetric)
	if err != nil {
		return err
	}
	logger.Info("search finished", "elapsed", time.Since(start))

	fmt.Printf("best %s: %.6f\n", tuneMetric, value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func snapshotBody(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}
	if _, err := exp.Run(cmd.Context()); err != nil {
		return err
	}

	edges := viz.LatticeEdges(exp.Simulator().Positions(), cfg.Lattice.Size, cfg.Lattice.Spacing)
	svg := export.BodyToSVG(edges, viz.NewCamera(), 600, 600, "#00ff88")
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("wrote snapshot", "path", svgOut, "edges", len(edges), "t", exp.Simulator().Time())
	return nil
}

func benchLattice(cmd *cobra.Command, args []string) error {
	sizes := []int{4, 8, 16}
	workerCounts := []int{1, 2, 4}
	const steps = 100

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tLINKS\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		for _, wc := range workerCounts {
			cfg := config.DefaultConfig()
			cfg.Lattice.Size = n
			cfg.Workers = wc
			cfg.Perturb.StretchX = 0.05
			cfg.Duration = steps / cfg.Physics.StepRate

			exp := experiment.New(cfg)
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%v\t%.0f\n",
				n, lattice.LinkCount(n).Total(), wc, result.StepsTaken, elapsed,
				float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
