package sim_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/physics"
	"github.com/san-kum/attsim/internal/scenario"
	"github.com/san-kum/attsim/internal/sim"
)

type zeroNoise struct{}

func (zeroNoise) Sample() float64 { return 0 }

type countingObserver struct {
	steps  []int
	frames []int
	accs   []float64
}

func (c *countingObserver) OnStep(s sim.Sample) { c.steps = append(c.steps, s.Step) }

func (c *countingObserver) OnFrame(steps int, acc float64) {
	c.frames = append(c.frames, steps)
	c.accs = append(c.accs, acc)
}

var _ = Describe("Session", func() {
	var s *sim.Session

	BeforeEach(func() {
		s = sim.NewSession(sim.Options{
			Params:   physics.DefaultParams(),
			Scenario: scenario.NewGenerator(zeroNoise{}),
		})
	})

	It("starts at identity and rest", func() {
		Expect(s.Readout()).To(Equal(dynamo.Attitude{}))
		Expect(s.Mode()).To(Equal(dynamo.Manual))
		Expect(s.Accumulator()).To(BeZero())
		Expect(s.Timestep()).To(Equal(physics.DefaultTimestep))
	})

	Describe("Advance", func() {
		It("takes three steps for 35 ms and keeps the remainder", func() {
			Expect(s.Advance(0.035)).To(Equal(3))
			Expect(s.Accumulator()).To(BeNumerically("~", 0.005, 1e-12))
			Expect(s.Steps()).To(Equal(3))
		})

		It("takes zero then one step for two 5 ms frames", func() {
			Expect(s.Advance(0.005)).To(Equal(0))
			Expect(s.Advance(0.005)).To(Equal(1))
			Expect(s.Accumulator()).To(BeNumerically("~", 0, 1e-12))
		})

		It("catches up after a stall", func() {
			Expect(s.Advance(0.25)).To(BeNumerically("~", 25, 1))
			Expect(s.Accumulator()).To(BeNumerically("<", s.Timestep()))
		})

		It("ignores non-positive and non-finite frame times", func() {
			s.Advance(0.004)
			Expect(s.Advance(0)).To(Equal(0))
			Expect(s.Advance(-1)).To(Equal(0))
			Expect(s.Advance(math.NaN())).To(Equal(0))
			Expect(s.Advance(math.Inf(1))).To(Equal(0))
			Expect(s.Accumulator()).To(BeNumerically("~", 0.004, 1e-15))
		})

		It("keeps the accumulator in [0, timestep) for arbitrary frames", func() {
			rng := rand.New(rand.NewSource(3))
			for i := 0; i < 2000; i++ {
				s.Advance(rng.Float64() * 0.05)
				Expect(s.Accumulator()).To(And(
					BeNumerically(">=", 0),
					BeNumerically("<", s.Timestep()),
				))
			}
		})
	})

	Describe("fly-by-wire", func() {
		It("rolls under full thrust without disturbing pitch or yaw", func() {
			s.SetMode(dynamo.FlyByWire)
			s.SetCommand(dynamo.AxisCommand{Roll: 100})
			for i := 0; i < 100; i++ {
				s.Advance(physics.DefaultTimestep)
			}
			Expect(s.Steps()).To(Equal(100))

			att := s.Readout()
			want := 100 * 15.0 / physics.DefaultIxx * (180 / math.Pi) * physics.DefaultTimestep
			Expect(att.RollRate).To(BeNumerically("~", want, 1e-9))
			Expect(att.PitchRate).To(BeZero())
			Expect(att.YawRate).To(BeZero())
			Expect(att.Pitch).To(BeZero())
			Expect(att.Yaw).To(BeZero())
			Expect(att.Roll).To(BeNumerically(">", 359))
		})

		It("produces no torque inside the deadband", func() {
			s.SetMode(dynamo.FlyByWire)
			s.SetCommand(dynamo.AxisCommand{Roll: 24.9, Pitch: -24.9, Yaw: 10})
			s.Advance(0.1)
			Expect(s.Readout().Rates()).To(Equal(dynamo.Vec3{}))
		})
	})

	Describe("manual", func() {
		It("sets rates directly and clamps them", func() {
			s.SetCommand(dynamo.AxisCommand{Roll: 20, Yaw: 250})
			s.Advance(0.01)
			att := s.Readout()
			Expect(att.RollRate).To(Equal(20.0))
			Expect(att.YawRate).To(Equal(100.0))
		})

		It("ignores disturbance torque", func() {
			s.SetScenario(scenario.ThrusterStuck)
			for i := 0; i < 50; i++ {
				s.Advance(0.01)
			}
			Expect(s.Readout()).To(Equal(dynamo.Attitude{}))
		})
	})

	Describe("rate command", func() {
		It("drifts under a stuck thruster", func() {
			s.SetMode(dynamo.RateCommand)
			s.SetScenario(scenario.ThrusterStuck)
			for i := 0; i < 50; i++ {
				s.Advance(0.01)
			}
			Expect(s.Readout().RollRate).To(BeNumerically(">", 0))
			Expect(s.Sample().Disturbance).To(Equal(dynamo.Vec3{X: 8}))
		})

		It("cancels a stuck thruster with an opposing command", func() {
			s.SetMode(dynamo.RateCommand)
			s.SetScenario(scenario.ThrusterStuck)
			s.SetCommand(dynamo.AxisCommand{Roll: -80})
			s.Advance(0.5)
			// 80 * 0.3 = 24 N·m against 8 N·m of disturbance
			Expect(s.Readout().RollRate).To(BeNumerically("<", 0))
		})
	})

	It("zeroes the command on mode change but keeps the motion", func() {
		s.SetCommand(dynamo.AxisCommand{Pitch: 40})
		s.Advance(0.1)
		before := s.Readout()

		s.SetMode(dynamo.RateCommand)
		Expect(s.Command()).To(Equal(dynamo.AxisCommand{}))
		Expect(s.Readout()).To(Equal(before))
	})

	It("resets state but keeps mode and scenario", func() {
		s.SetMode(dynamo.FlyByWire)
		s.SetScenario(scenario.Tumble)
		s.SetCommand(dynamo.AxisCommand{Yaw: 90})
		s.Advance(0.123)

		s.Reset()

		Expect(s.Readout()).To(Equal(dynamo.Attitude{}))
		Expect(s.Accumulator()).To(BeZero())
		Expect(s.Steps()).To(BeZero())
		Expect(s.Command()).To(Equal(dynamo.AxisCommand{}))
		Expect(s.Mode()).To(Equal(dynamo.FlyByWire))
		Expect(s.Scenario()).To(Equal(scenario.Tumble))
	})

	It("notifies observers per step and per frame", func() {
		obs := &countingObserver{}
		s.AddObserver(obs)

		s.Advance(0.035)
		s.Advance(0.001)

		Expect(obs.steps).To(Equal([]int{1, 2, 3}))
		Expect(obs.frames).To(Equal([]int{3, 0}))
		Expect(obs.accs[1]).To(BeNumerically("~", 0.006, 1e-12))
	})

	It("keeps sessions independent", func() {
		other := sim.NewSession(sim.Options{})
		s.SetCommand(dynamo.AxisCommand{Roll: 50})
		s.Advance(0.2)

		Expect(other.Readout()).To(Equal(dynamo.Attitude{}))
		Expect(other.Steps()).To(BeZero())
	})

	It("applies an initial attitude", func() {
		s = sim.NewSession(sim.Options{InitAttitude: dynamo.Vec3{Y: 30}})
		Expect(s.Readout().Pitch).To(BeNumerically("~", 30, 1e-9))
	})
})
