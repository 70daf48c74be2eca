package netinput

import (
	"context"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/log"
)

// Wave is the test joystick pattern: slow roll, medium pitch and fast yaw
// sine waves of amplitude 50.
func Wave(t float64) dynamo.AxisCommand {
	return dynamo.AxisCommand{
		Roll:  float32(50 * math.Sin(t*0.5)),
		Pitch: float32(50 * math.Sin(t)),
		Yaw:   float32(50 * math.Sin(t*2)),
	}
}

type SenderConfig struct {
	Addr     string
	Interval time.Duration
	// TimeStep is how far the wave advances per packet.
	TimeStep float64
	// StartTime offsets the wave phase.
	StartTime float64
	// Count stops after this many packets; zero sends until cancelled.
	Count  int
	Logger log.Logger
}

func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		Addr:     fmt.Sprintf("127.0.0.1:%d", DefaultPort),
		Interval: 50 * time.Millisecond,
		TimeStep: 0.2,
	}
}

// Sender streams Wave packets with incrementing sequence numbers.
type Sender struct {
	cfg  SenderConfig
	log  log.Logger
	conn *net.UDPConn
	seq  uint32
	t    float64
}

func NewSender(cfg SenderConfig) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", cfg.Addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}
	l := cfg.Logger
	if l == nil {
		l = log.Nop()
	}
	return &Sender{cfg: cfg, log: l, conn: conn, t: cfg.StartTime}, nil
}

// Send writes one packet carrying cmd.
func (s *Sender) Send(cmd dynamo.AxisCommand) error {
	p := Packet{Command: cmd, Seq: s.seq}
	if _, err := s.conn.Write(p.Encode()); err != nil {
		return fmt.Errorf("netinput: send: %w", err)
	}
	s.seq++
	return nil
}

// Run sends the wave pattern until ctx is done or Count packets are out.
func (s *Sender) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for sent := 0; s.cfg.Count == 0 || sent < s.cfg.Count; sent++ {
		cmd := Wave(s.t)
		if err := s.Send(cmd); err != nil {
			return err
		}
		s.log.Debugf("sent packet %d roll=%.2f pitch=%.2f yaw=%.2f", s.seq, cmd.Roll, cmd.Pitch, cmd.Yaw)
		s.t += s.cfg.TimeStep

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
