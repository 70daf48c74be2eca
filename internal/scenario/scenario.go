// Package scenario generates disturbance torques for scripted mission
// situations. Random components come from an injectable Noise source so
// runs can be replayed exactly.
package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/san-kum/attsim/internal/dynamo"
)

type Kind int

const (
	None Kind = iota
	Retrofire
	Tumble
	ThrusterStuck
	OrbitalDrift
)

var kindNames = [...]string{"none", "retrofire", "tumble", "thruster_stuck", "orbital_drift"}

var kindLabels = [...]string{"None", "Retrofire", "Tumble", "Thruster Stuck", "Orbital Drift"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Label is the human-readable name shown in the indicator.
func (k Kind) Label() string {
	if k < 0 || int(k) >= len(kindLabels) {
		return k.String()
	}
	return kindLabels[k]
}

// Next cycles to the following scenario, wrapping back to None.
func (k Kind) Next() Kind {
	return Kind((int(k) + 1) % len(kindNames))
}

func Parse(s string) (Kind, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "none", "":
		return None, nil
	case "retrofire":
		return Retrofire, nil
	case "tumble":
		return Tumble, nil
	case "thruster_stuck", "stuck_thruster", "stuck":
		return ThrusterStuck, nil
	case "orbital_drift", "drift":
		return OrbitalDrift, nil
	}
	return None, fmt.Errorf("unknown scenario: %s", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func Kinds() []Kind {
	return []Kind{None, Retrofire, Tumble, ThrusterStuck, OrbitalDrift}
}

// Noise yields samples in [-1, 1).
type Noise interface {
	Sample() float64
}

// RandNoise draws from a seeded math/rand source in steps of 1/50.
type RandNoise struct {
	rng *rand.Rand
}

func NewRandNoise(seed int64) *RandNoise {
	return &RandNoise{rng: rand.New(rand.NewSource(seed))}
}

func (n *RandNoise) Sample() float64 {
	return float64(n.rng.Intn(100)-50) / 50
}

// Generator tracks the active scenario and its elapsed time.
type Generator struct {
	kind  Kind
	t     float64
	noise Noise
}

// NewGenerator returns a generator in the None scenario. A nil noise source
// is replaced with RandNoise seeded with 1.
func NewGenerator(noise Noise) *Generator {
	if noise == nil {
		noise = NewRandNoise(1)
	}
	return &Generator{noise: noise}
}

func (g *Generator) Kind() Kind { return g.kind }
func (g *Generator) Elapsed() float64 { return g.t }

// Set switches scenario and restarts scenario time.
func (g *Generator) Set(k Kind) {
	g.kind = k
	g.t = 0
}

// Update advances scenario time by dt and returns the disturbance torque in
// N·m for the frame.
func (g *Generator) Update(dt float64) dynamo.Vec3 {
	g.t += dt
	t := g.t

	switch g.kind {
	case Retrofire:
		return dynamo.Vec3{
			X: math.Sin(t*0.5)*4 + g.noise.Sample()*1.5,
			Y: math.Cos(t*0.7)*3 + g.noise.Sample()*1.0,
			Z: math.Sin(t*0.3)*2.5 + g.noise.Sample()*1.0,
		}
	case Tumble:
		return g.scaled(15)
	case ThrusterStuck:
		return dynamo.Vec3{X: 8}
	case OrbitalDrift:
		return g.scaled(2)
	}
	return dynamo.Vec3{}
}

func (g *Generator) scaled(k float64) dynamo.Vec3 {
	x := g.noise.Sample() * k
	y := g.noise.Sample() * k
	z := g.noise.Sample() * k
	return dynamo.Vec3{X: x, Y: y, Z: z}
}
