package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/attsim/internal/api"
	"github.com/san-kum/attsim/internal/analysis"
	"github.com/san-kum/attsim/internal/automation"
	"github.com/san-kum/attsim/internal/config"
	"github.com/san-kum/attsim/internal/export"
	"github.com/san-kum/attsim/internal/metrics"
	"github.com/san-kum/attsim/internal/netinput"
	"github.com/san-kum/attsim/internal/observability"
	"github.com/san-kum/attsim/internal/sim"
	"github.com/san-kum/attsim/internal/storage"
	"github.com/san-kum/attsim/internal/viz"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the indicator; logs only reach the log file.
	logger, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	collector, err := startMetrics(ctx, cfg, logger)
	if err != nil {
		return err
	}

	session := cfg.NewSession()
	if err := applyParams(session, params); err != nil {
		return err
	}
	if collector != nil {
		session.AddObserver(collector)
	}

	var inputs viz.Inputs
	if cfg.Network.Enabled {
		rcfg := netinput.ReceiverConfig{
			Addr:      cfg.Network.Addr,
			Tolerance: float32(cfg.Network.Tolerance),
			Logger:    logger,
		}
		if collector != nil {
			rcfg.Recorder = collector
		}
		rx := netinput.NewReceiver(rcfg)
		if err := rx.Start(ctx); err != nil {
			return err
		}
		logger.Infof("listening for joystick packets on %s", rx.LocalAddr())
		inputs = append(inputs, rx)
	}

	if cfg.API.Addr != "" {
		tel := api.NewTelemetry()
		session.AddObserver(tel)
		var rec netinput.Recorder
		if collector != nil {
			rec = collector
		}
		ctl := api.NewControl(float32(cfg.Network.Tolerance), rec)
		srv := api.NewServer(api.Options{
			Telemetry:      tel,
			Control:        ctl,
			Store:          storage.New(dataDir),
			StreamInterval: time.Duration(cfg.API.StreamInterval * float64(time.Second)),
			Logger:         logger,
		})
		go func() {
			if err := srv.Serve(ctx, cfg.API.Addr); err != nil {
				logger.Errorf("telemetry API: %v", err)
			}
		}()
		inputs = append(inputs, ctl)
	}

	var input viz.Input
	if len(inputs) > 0 {
		input = inputs
	}

	logger.Infof("live indicator: mode=%s scenario=%s", session.Mode(), session.Scenario())
	m := viz.NewModel(session, input, "").WithTheme(theme)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	collector, err := startMetrics(ctx, cfg, logger)
	if err != nil {
		return err
	}

	flush, err := initTracing(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer flush()

	session := cfg.NewSession()
	if err := applyParams(session, params); err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		session.AddMetric(m)
	}
	if collector != nil {
		session.AddObserver(collector)
	}

	name := runName
	if name == "" {
		name = cfg.Scenario.String()
	}

	fmt.Printf("running %s simulation (%s, %.1fs)...\n", name, cfg.Mode, cfg.Duration)
	start := time.Now()
	spanCtx, span := observability.StartSpan(ctx, "attsim.run",
		attribute.String("run.name", name),
		attribute.String("mode", cfg.Mode.String()),
		attribute.String("scenario", cfg.Scenario.String()),
		attribute.Float64("duration", cfg.Duration),
		attribute.Int64("seed", cfg.Seed),
	)
	result, err := sim.Run(spanCtx, session, cfg.RunConfig())
	if err != nil {
		span.RecordError(err)
		span.End()
		return err
	}
	span.SetAttributes(attribute.Int("run.frames", result.Frames), attribute.Int("run.steps", result.Steps))
	span.End()
	elapsed := time.Since(start)

	runID, err := saveRun(cfg, name, result)
	if err != nil {
		return err
	}
	logger.WithField("run", runID).Infof("stored %d frames", result.Frames)

	fmt.Printf("completed in %v\n", elapsed)
	printResult(runID, result)
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	collector, err := startMetrics(ctx, cfg, logger)
	if err != nil {
		return err
	}

	flush, err := initTracing(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer flush()

	if script.Seed == 0 {
		script.Seed = cfg.Seed
	}
	cfg.Seed = script.Seed
	session := cfg.NewSession()
	if err := applyParams(session, params); err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		session.AddMetric(m)
	}
	if collector != nil {
		session.AddObserver(collector)
	}

	result, err := automation.RunScript(ctx, session, script, logger)
	if err != nil {
		return err
	}

	cfg.FrameDt, cfg.Duration, cfg.Jitter = script.FrameDt, script.Duration, script.Jitter
	runID, err := saveRun(cfg, script.Name, result)
	if err != nil {
		return err
	}
	printResult(runID, result)
	return nil
}

func saveRun(cfg *config.Config, name string, result *sim.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunMetadata{
		Name:     name,
		Seed:     cfg.Seed,
		FrameDt:  cfg.FrameDt,
		Duration: cfg.Duration,
		Jitter:   cfg.Jitter,
		Timestep: cfg.Physics.Timestep,
		Mode:     cfg.Mode,
		Scenario: cfg.Scenario,
	}, result)
}

func printResult(runID string, result *sim.Result) {
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d  steps: %d\n", result.Frames, result.Steps)
	if final, ok := result.Final(); ok {
		a := final.Attitude
		fmt.Printf("final attitude: roll %.2f  pitch %.2f  yaw %.2f deg\n", a.Roll, a.Pitch, a.Yaw)
		fmt.Printf("final rates:    roll %.3f  pitch %.3f  yaw %.3f deg/s\n", a.RollRate, a.PitchRate, a.YawRate)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
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
	fmt.Fprintln(w, "ID\tMODE\tSCENARIO\tDURATION\tSTEPS\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%d\t%s\n",
			r.ID, r.Mode, r.Scenario, r.Duration, r.Steps, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	series, caption, err := plotData(samples, plotSeries)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s, %s)\n\n", meta.ID, meta.Mode, meta.Scenario)
	opts := []asciigraph.Option{
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	}
	if len(series) > 1 {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue))
	}
	fmt.Println(asciigraph.PlotMany(series, opts...))
	return nil
}

// plotData extracts the named series from samples.
func plotData(samples []sim.Sample, name string) ([][]float64, string, error) {
	pick := func(f func(sim.Sample) float64) []float64 {
		out := make([]float64, len(samples))
		for i, s := range samples {
			out[i] = f(s)
		}
		return out
	}
	switch name {
	case "rates":
		return [][]float64{
			pick(func(s sim.Sample) float64 { return s.Attitude.RollRate }),
			pick(func(s sim.Sample) float64 { return s.Attitude.PitchRate }),
			pick(func(s sim.Sample) float64 { return s.Attitude.YawRate }),
		}, "body rates deg/s (roll red, pitch green, yaw blue)", nil
	case "attitude":
		return [][]float64{
			pick(func(s sim.Sample) float64 { return s.Attitude.Roll }),
			pick(func(s sim.Sample) float64 { return s.Attitude.Pitch }),
			pick(func(s sim.Sample) float64 { return s.Attitude.Yaw }),
		}, "attitude deg (roll red, pitch green, yaw blue)", nil
	case "torque":
		return [][]float64{
			pick(func(s sim.Sample) float64 { return s.ControlTorque.X + s.Disturbance.X }),
			pick(func(s sim.Sample) float64 { return s.ControlTorque.Y + s.Disturbance.Y }),
			pick(func(s sim.Sample) float64 { return s.ControlTorque.Z + s.Disturbance.Z }),
		}, "net torque N·m (roll red, pitch green, yaw blue)", nil
	case "energy":
		return [][]float64{
			pick(func(s sim.Sample) float64 { return s.Energy }),
		}, "rotational kinetic energy", nil
	}
	return nil, "", fmt.Errorf("unknown series: %s", name)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}

	rates, _, err := plotData(samples, "rates")
	if err != nil {
		return err
	}
	sampleRate := 1 / meta.FrameDt

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("mode: %s  scenario: %s  sample rate: %.1f Hz\n\n", meta.Mode, meta.Scenario, sampleRate)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AXIS\tFREQUENCY\tPERIOD\tPOWER")
	for i, axis := range []string{"roll", "pitch", "yaw"} {
		p := analysis.DominantFrequency(rates[i], sampleRate)
		if p.Frequency == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t0\n", axis)
			continue
		}
		fmt.Fprintf(w, "%s\t%.3f Hz\t%.2f s\t%.2f\n", axis, p.Frequency, 1/p.Frequency, p.Power)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	var svg string
	if svgDials {
		svg = export.DialsToSVG(samples[len(samples)-1].Attitude, 6)
	} else {
		series, _, err := plotData(samples, plotSeries)
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(series, 800, 300, export.SeriesColors)
	}

	if svgOut == "" {
		_, err = fmt.Fprintln(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, samples)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMODE\tSCENARIO\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Mode, p.Scenario, p.Description)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func runSender(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	scfg := netinput.DefaultSenderConfig()
	if sendAddr != "" {
		scfg.Addr = sendAddr
	}
	if sendInterval > 0 {
		scfg.Interval = time.Duration(sendInterval * float64(time.Second))
	}
	scfg.Count = sendCount
	scfg.Logger = logger

	s, err := netinput.NewSender(scfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	logger.Infof("sending test pattern to %s every %v", scfg.Addr, scfg.Interval)
	return s.Run(ctx)
}
