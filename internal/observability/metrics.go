// Package observability exposes simulation and network input counters as
// Prometheus metrics.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/attsim/internal/log"
	"github.com/san-kum/attsim/internal/netinput"
	"github.com/san-kum/attsim/internal/sim"
)

var (
	_ sim.Observer      = (*Collector)(nil)
	_ sim.FrameObserver = (*Collector)(nil)
	_ netinput.Recorder = (*Collector)(nil)
)

// Collector bundles the attsim metrics. It is attached to a session as an
// observer and to a receiver as its recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	Steps       prometheus.Counter
	Substeps    prometheus.Histogram
	Accumulator prometheus.Gauge
	Attitude    *prometheus.GaugeVec
	Rates       *prometheus.GaugeVec
	Packets     *prometheus.CounterVec
	Rejects     *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attsim_physics_steps_total",
		Help: "Fixed-timestep physics updates executed.",
	}), "attsim_physics_steps_total")
	if err != nil {
		return nil, err
	}

	substeps, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "attsim_frame_substeps",
		Help:    "Physics steps taken per frame.",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 10, 25, 100},
	}), "attsim_frame_substeps")
	if err != nil {
		return nil, err
	}

	acc, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "attsim_accumulator_seconds",
		Help: "Frame time left in the physics accumulator after the last frame.",
	}), "attsim_accumulator_seconds")
	if err != nil {
		return nil, err
	}

	attitude, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "attsim_attitude_degrees",
		Help: "Displayed attitude angle in degrees, wrapped to [0, 360).",
	}, []string{"axis"}), "attsim_attitude_degrees")
	if err != nil {
		return nil, err
	}

	rates, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "attsim_rate_degrees_per_second",
		Help: "Body angular rate in deg/s.",
	}, []string{"axis"}), "attsim_rate_degrees_per_second")
	if err != nil {
		return nil, err
	}

	packets, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attsim_packets_total",
		Help: "Joystick packets received, labeled by result.",
	}, []string{"result"}), "attsim_packets_total")
	if err != nil {
		return nil, err
	}

	rejects, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attsim_packets_rejected_total",
		Help: "Joystick packets dropped, labeled by reason.",
	}, []string{"reason"}), "attsim_packets_rejected_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:    gatherer,
		Steps:       steps,
		Substeps:    substeps,
		Accumulator: acc,
		Attitude:    attitude,
		Rates:       rates,
		Packets:     packets,
		Rejects:     rejects,
	}, nil
}

func (c *Collector) OnStep(s sim.Sample) {
	if c == nil {
		return
	}
	c.Steps.Inc()
	a := s.Attitude
	c.Attitude.WithLabelValues("roll").Set(a.Roll)
	c.Attitude.WithLabelValues("pitch").Set(a.Pitch)
	c.Attitude.WithLabelValues("yaw").Set(a.Yaw)
	c.Rates.WithLabelValues("roll").Set(a.RollRate)
	c.Rates.WithLabelValues("pitch").Set(a.PitchRate)
	c.Rates.WithLabelValues("yaw").Set(a.YawRate)
}

func (c *Collector) OnFrame(steps int, accumulator float64) {
	if c == nil {
		return
	}
	c.Substeps.Observe(float64(steps))
	c.Accumulator.Set(accumulator)
}

func (c *Collector) PacketAccepted() {
	if c == nil {
		return
	}
	c.Packets.WithLabelValues("accepted").Inc()
}

func (c *Collector) PacketRejected(reason string) {
	if c == nil {
		return
	}
	c.Packets.WithLabelValues("rejected").Inc()
	c.Rejects.WithLabelValues(reason).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	logger.Infof("serving Prometheus metrics on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
