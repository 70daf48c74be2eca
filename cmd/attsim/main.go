package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/san-kum/attsim/internal/config"
	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/log"
	"github.com/san-kum/attsim/internal/observability"
	"github.com/san-kum/attsim/internal/scenario"
	"github.com/san-kum/attsim/internal/sim"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	metricsAddr string
	traceOn     bool

	mode     string
	scenName string
	duration float64
	frameDt  float64
	jitter   float64
	seed     int64
	params   map[string]string

	netEnabled bool
	netAddr    string
	apiAddr    string
	theme      string
	runName    string

	plotSeries string
	svgOut     string
	svgDials   bool

	sendAddr     string
	sendInterval float64
	sendCount    int
)

// main registers the attsim commands. With no subcommand it starts the live
// attitude indicator.
func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	liveFlags := func(c *cobra.Command) {
		c.Flags().BoolVar(&netEnabled, "net", false, "accept joystick packets over UDP")
		c.Flags().StringVar(&netAddr, "net-addr", "", "UDP listen address (default :8888)")
		c.Flags().StringVar(&apiAddr, "api-addr", "", "serve the telemetry and command API on this address")
		c.Flags().StringVar(&theme, "theme", "console", "color theme")
	}

	rootCmd := &cobra.Command{
		Use:          "attsim",
		Short:        "spacecraft attitude simulator",
		SilenceUsage: true,
		RunE:         runLive,
	}
	liveFlags(rootCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".attsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&traceOn, "trace", false, "emit OpenTelemetry spans for headless runs")
	pf.StringVar(&mode, "mode", "", "control mode (manual, rate_command, fly_by_wire)")
	pf.StringVar(&scenName, "scenario", "", "disturbance scenario (none, retrofire, tumble, thruster_stuck, orbital_drift)")
	pf.Float64Var(&duration, "duration", config.DefaultDuration, "simulated seconds")
	pf.Float64Var(&frameDt, "frame-dt", config.DefaultFrameDt, "frame time in seconds")
	pf.Float64Var(&jitter, "jitter", 0, "relative frame time jitter in [0,1)")
	pf.Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	pf.StringToStringVar(&params, "param", nil, "override a spacecraft parameter, e.g. --param Izz=900 (Ixx, Iyy, Izz, damping, rateGain, lowThr, highThr)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the live attitude indicator",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the scenario)")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "play a command script headlessly and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotSeries, "series", "rates", "rates, attitude, torque or energy")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "report the dominant oscillation frequency of each body rate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&plotSeries, "series", "rates", "rates, attitude, torque or energy")
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().BoolVar(&svgDials, "dials", false, "draw the final attitude gauges instead of a chart")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and telemetry to JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}

	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "stream a sine-wave joystick pattern over UDP",
		Args:  cobra.NoArgs,
		RunE:  runSender,
	}
	sendCmd.Flags().StringVar(&sendAddr, "addr", "", "destination (default 127.0.0.1:8888)")
	sendCmd.Flags().Float64Var(&sendInterval, "interval", 0.05, "seconds between packets")
	sendCmd.Flags().IntVar(&sendCount, "count", 0, "packets to send, 0 for unlimited")

	rootCmd.AddCommand(liveCmd, runCmd, scriptCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportSVGCmd, exportJSONCmd, presetsCmd, initCmd, sendCmd)
	return rootCmd
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		m, err := dynamo.ParseControlMode(mode)
		if err != nil {
			return nil, err
		}
		cfg.Mode = m
	}
	if flags.Changed("scenario") {
		k, err := scenario.Parse(scenName)
		if err != nil {
			return nil, err
		}
		cfg.Scenario = k
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("frame-dt") {
		cfg.FrameDt = frameDt
	}
	if flags.Changed("jitter") {
		cfg.Jitter = jitter
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if flags.Changed("trace") {
		cfg.Tracing.Enabled = traceOn
	}
	if flags.Lookup("net") != nil && flags.Changed("net") {
		cfg.Network.Enabled = netEnabled
	}
	if flags.Lookup("net-addr") != nil && flags.Changed("net-addr") {
		cfg.Network.Addr = netAddr
	}
	if flags.Lookup("api-addr") != nil && flags.Changed("api-addr") {
		cfg.API.Addr = apiAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyParams sets each name=value on the session's spacecraft in name
// order.
func applyParams(s *sim.Session, kv map[string]string) error {
	names := make([]string, 0, len(kv))
	for n := range kv {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		v, err := strconv.ParseFloat(kv[n], 64)
		if err != nil {
			return fmt.Errorf("param %s: %w", n, err)
		}
		if err := s.Craft().SetParam(n, v); err != nil {
			return fmt.Errorf("param %s: %w", n, err)
		}
	}
	return nil
}

func newLogger(cfg *config.Config, out io.Writer) (log.Logger, error) {
	return log.New(log.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Output: out})
}

// startMetrics serves /metrics in the background when an address is
// configured. It returns nil when metrics are disabled.
func startMetrics(ctx context.Context, cfg *config.Config, logger log.Logger) (*observability.Collector, error) {
	if cfg.Metrics.Addr == "" {
		return nil, nil
	}
	c, err := observability.NewCollector(nil)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := c.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
			logger.Errorf("metrics server: %v", err)
		}
	}()
	return c, nil
}

// initTracing installs the configured tracer provider and returns a flush
// function for defer.
func initTracing(ctx context.Context, cfg *config.Config, logger log.Logger) (func(), error) {
	shutdown, err := observability.InitTracing(ctx, cfg.TracingOptions(), logger)
	if err != nil {
		return nil, err
	}
	return func() { observability.ShutdownWithTimeout(context.Background(), shutdown, logger) }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
