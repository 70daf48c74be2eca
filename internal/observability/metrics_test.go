package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/sim"
)

func TestSessionDrivesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	s := sim.NewSession(sim.Options{})
	s.AddObserver(c)
	s.SetCommand(dynamo.AxisCommand{Pitch: 20})

	s.Advance(0.035)
	s.Advance(0.001)

	if got := testutil.ToFloat64(c.Steps); got != 3 {
		t.Fatalf("attsim_physics_steps_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.Accumulator); got < 0.0059 || got > 0.0061 {
		t.Fatalf("attsim_accumulator_seconds = %v, want ~0.006", got)
	}
	if got := testutil.ToFloat64(c.Rates.WithLabelValues("pitch")); got != 20 {
		t.Fatalf("pitch rate = %v, want 20", got)
	}
	if got := histogramSampleCount(t, reg, "attsim_frame_substeps"); got != 2 {
		t.Fatalf("attsim_frame_substeps sample_count = %d, want 2", got)
	}
}

func TestPacketCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.PacketAccepted()
	c.PacketAccepted()
	c.PacketRejected("range")

	if got := testutil.ToFloat64(c.Packets.WithLabelValues("accepted")); got != 2 {
		t.Fatalf("accepted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Packets.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Rejects.WithLabelValues("range")); got != 1 {
		t.Fatalf("rejected{range} = %v, want 1", got)
	}
}

func TestRegisterTwiceReuses(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	b, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	a.Steps.Inc()
	if got := testutil.ToFloat64(b.Steps); got != 1 {
		t.Fatalf("second collector does not share counters: %v", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.OnStep(sim.Sample{})
	c.OnFrame(1, 0)
	c.PacketAccepted()
	c.PacketRejected("size")
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	c.OnStep(sim.Sample{Attitude: dynamo.Attitude{Roll: 12}})
	c.OnFrame(1, 0.002)
	c.PacketAccepted()
	c.PacketRejected("size")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"attsim_physics_steps_total",
		"attsim_frame_substeps",
		"attsim_accumulator_seconds",
		`attsim_attitude_degrees{axis="roll"} 12`,
		"attsim_rate_degrees_per_second",
		`attsim_packets_total{result="accepted"} 1`,
		`attsim_packets_rejected_total{reason="size"} 1`,
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	mf := findFamily(t, gatherer, name)
	if mf == nil || mf.GetType() != dto.MetricType_HISTOGRAM {
		return 0
	}
	for _, m := range mf.Metric {
		if h := m.GetHistogram(); h != nil {
			return h.GetSampleCount()
		}
	}
	return 0
}

func findFamily(t *testing.T, gatherer prometheus.Gatherer, name string) *dto.MetricFamily {
	t.Helper()

	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
