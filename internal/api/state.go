package api

import (
	"sync"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/netinput"
	"github.com/san-kum/attsim/internal/sim"
)

var _ sim.Observer = (*Telemetry)(nil)

// Telemetry keeps the most recent session sample for the API. It is fed by
// the session as an observer and read by request handlers.
type Telemetry struct {
	mu     sync.RWMutex
	latest sim.Sample
	has    bool
}

func NewTelemetry() *Telemetry { return &Telemetry{} }

func (t *Telemetry) OnStep(s sim.Sample) {
	t.mu.Lock()
	t.latest = s
	t.has = true
	t.mu.Unlock()
}

// Snapshot returns the latest sample; ok is false before the first step.
func (t *Telemetry) Snapshot() (sim.Sample, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest, t.has
}

// CommandMsg is a joystick command sent over HTTP or WebSocket. A zero Seq
// is replaced by the next local sequence number.
type CommandMsg struct {
	Roll  float32 `json:"roll"`
	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
	Seq   uint32  `json:"seq,omitempty"`
}

// Control holds the most recent valid remote command. It satisfies the
// live view's input interface the same way a UDP receiver does.
type Control struct {
	tolerance float32
	recorder  netinput.Recorder

	mu     sync.Mutex
	latest netinput.Packet
	has    bool
	seq    uint32
}

// NewControl validates commands against tolerance, defaulting to
// netinput.Tolerance. recorder may be nil.
func NewControl(tolerance float32, recorder netinput.Recorder) *Control {
	if tolerance <= 0 {
		tolerance = netinput.Tolerance
	}
	return &Control{tolerance: tolerance, recorder: recorder}
}

// Submit validates msg and makes it the latest command.
func (c *Control) Submit(msg CommandMsg) (netinput.Packet, error) {
	p := netinput.Packet{
		Command: dynamo.AxisCommand{Roll: msg.Roll, Pitch: msg.Pitch, Yaw: msg.Yaw},
		Seq:     msg.Seq,
	}
	if err := p.Validate(c.tolerance); err != nil {
		if c.recorder != nil {
			c.recorder.PacketRejected(netinput.RejectReason(err))
		}
		return netinput.Packet{}, err
	}

	c.mu.Lock()
	if p.Seq == 0 {
		p.Seq = c.seq + 1
	}
	c.seq = p.Seq
	c.latest = p
	c.has = true
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.PacketAccepted()
	}
	return p, nil
}

func (c *Control) Latest() (netinput.Packet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.has
}

// Release forgets the latest command so the keyboard takes over again.
func (c *Control) Release() {
	c.mu.Lock()
	c.latest = netinput.Packet{}
	c.has = false
	c.mu.Unlock()
}
