package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/scenario"
	"github.com/san-kum/attsim/internal/storage"
	"github.com/san-kum/attsim/internal/sim"

	. "github.com/onsi/gomega"
)

func resetFlags() {
	configFile, preset, runName = "", "", ""
	netEnabled, netAddr, apiAddr = false, "", ""
	params = nil
}

func TestResolveConfig_Precedence(t *testing.T) {
	g := NewWithT(t)
	defer resetFlags()

	dir := t.TempDir()
	path := filepath.Join(dir, "attsim.yaml")
	g.Expect(os.WriteFile(path, []byte("scenario: tumble\nduration: 7\nseed: 99\n"), 0644)).To(Succeed())

	root := newRootCmd()
	runCmd, _, err := root.Find([]string{"run"})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runCmd.ParseFlags([]string{"--preset", "fbw-roll", "--config", path, "--seed", "5"})).To(Succeed())

	cfg, err := resolveConfig(runCmd)
	g.Expect(err).NotTo(HaveOccurred())
	// preset
	g.Expect(cfg.Mode).To(Equal(dynamo.FlyByWire))
	g.Expect(cfg.Command).To(Equal(dynamo.AxisCommand{Roll: 100}))
	// config file over preset
	g.Expect(cfg.Scenario).To(Equal(scenario.Tumble))
	g.Expect(cfg.Duration).To(Equal(7.0))
	// flags over config file
	g.Expect(cfg.Seed).To(Equal(int64(5)))
}

func TestResolveConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"preset", []string{"--preset", "nope"}},
		{"mode", []string{"--mode", "autopilot"}},
		{"scenario", []string{"--scenario", "meteor"}},
		{"duration", []string{"--duration", "0"}},
		{"config", []string{"--config", "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetFlags()
			root := newRootCmd()
			runCmd, _, _ := root.Find([]string{"run"})
			if err := runCmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			if _, err := resolveConfig(runCmd); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPlotData(t *testing.T) {
	g := NewWithT(t)
	samples := []sim.Sample{
		{Attitude: dynamo.Attitude{RollRate: 1, Yaw: 10}, Energy: 2},
		{Attitude: dynamo.Attitude{RollRate: 3, Yaw: 20}, Energy: 4},
	}
	rates, _, err := plotData(samples, "rates")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rates).To(HaveLen(3))
	g.Expect(rates[0]).To(Equal([]float64{1, 3}))

	att, _, _ := plotData(samples, "attitude")
	g.Expect(att[2]).To(Equal([]float64{10, 20}))

	energy, _, _ := plotData(samples, "energy")
	g.Expect(energy).To(Equal([][]float64{{2, 4}}))

	_, _, err = plotData(samples, "bogus")
	g.Expect(err).To(HaveOccurred())
}

func TestRunCommand_StoresRun(t *testing.T) {
	g := NewWithT(t)
	defer resetFlags()
	dir := t.TempDir()

	root := newRootCmd()
	root.SetArgs([]string{"run", "--data", dir, "--preset", "fbw-roll", "--name", "roll", "--log-level", "error"})
	g.Expect(root.Execute()).To(Succeed())

	runs, err := storage.New(dir).List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runs).To(HaveLen(1))
	g.Expect(runs[0].Name).To(Equal("roll"))
	g.Expect(runs[0].Mode).To(Equal(dynamo.FlyByWire))
	g.Expect(runs[0].Steps).To(BeNumerically(">=", 99))
	g.Expect(runs[0].Metrics).To(HaveKey("control_effort"))
}

func TestApplyParams(t *testing.T) {
	g := NewWithT(t)
	s := sim.NewSession(sim.Options{})

	g.Expect(applyParams(s, map[string]string{"Izz": "900", "damping": "0.95"})).To(Succeed())
	got := s.Craft().GetParams()
	g.Expect(got["Izz"]).To(Equal(900.0))
	g.Expect(got["damping"]).To(Equal(0.95))

	g.Expect(applyParams(s, map[string]string{"Ixx": "heavy"})).To(MatchError(ContainSubstring("param Ixx")))
	g.Expect(applyParams(s, map[string]string{"warp": "9"})).To(MatchError(ContainSubstring("unknown parameter")))
	g.Expect(applyParams(s, nil)).To(Succeed())
}
