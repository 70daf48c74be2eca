package netinput

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/san-kum/attsim/internal/log"
)

// readTimeout bounds each blocking read so cancellation is noticed.
const readTimeout = time.Second

// Recorder counts packet outcomes.
type Recorder interface {
	PacketAccepted()
	PacketRejected(reason string)
}

type ReceiverConfig struct {
	// Addr is a host:port to bind; ":8888" when empty.
	Addr      string
	Tolerance float32
	Logger    log.Logger
	Recorder  Recorder
}

// Stats is a snapshot of receiver counters.
type Stats struct {
	Accepted uint64
	Rejected uint64
	LastSeq  uint32
}

// Receiver listens for joystick packets and keeps only the most recent
// valid one. Latest is safe to call from any goroutine.
type Receiver struct {
	cfg  ReceiverConfig
	log  log.Logger
	conn *net.UDPConn

	mu     sync.Mutex
	latest Packet
	has    bool
	stats  Stats
}

func NewReceiver(cfg ReceiverConfig) *Receiver {
	if cfg.Addr == "" {
		cfg.Addr = fmt.Sprintf(":%d", DefaultPort)
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = Tolerance
	}
	l := cfg.Logger
	if l == nil {
		l = log.Nop()
	}
	return &Receiver{cfg: cfg, log: l.WithField("component", "netinput")}
}

// Listen binds the UDP socket.
func (r *Receiver) Listen() error {
	if r.conn != nil {
		return errors.New("netinput: receiver already listening")
	}
	addr, err := net.ResolveUDPAddr("udp", r.cfg.Addr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", r.cfg.Addr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", r.cfg.Addr, err)
	}
	r.conn = conn
	r.log.Infof("UDP receiver listening on %s", conn.LocalAddr())
	return nil
}

// LocalAddr is the bound address, nil before Listen.
func (r *Receiver) LocalAddr() net.Addr {
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Serve reads packets until ctx is cancelled, then closes the socket. It
// returns nil on cancellation and the read error otherwise.
func (r *Receiver) Serve(ctx context.Context) error {
	if r.conn == nil {
		if err := r.Listen(); err != nil {
			return err
		}
	}
	defer func() {
		r.conn.Close()
		r.log.Infof("UDP receiver stopped")
	}()

	buf := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return nil
		}
		r.conn.SetReadDeadline(time.Now().Add(readTimeout))
		n, src, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("netinput: read: %w", err)
		}
		r.handle(buf[:n], src)
	}
}

// Start binds and serves in the background.
func (r *Receiver) Start(ctx context.Context) error {
	if err := r.Listen(); err != nil {
		return err
	}
	go func() {
		if err := r.Serve(ctx); err != nil {
			r.log.Errorf("%v", err)
		}
	}()
	return nil
}

func (r *Receiver) handle(b []byte, src net.Addr) {
	p, err := Parse(b, r.cfg.Tolerance)
	if err != nil {
		r.mu.Lock()
		r.stats.Rejected++
		r.mu.Unlock()
		r.log.WithField("src", src).Warnf("packet dropped: %v", err)
		if r.cfg.Recorder != nil {
			r.cfg.Recorder.PacketRejected(RejectReason(err))
		}
		return
	}

	r.mu.Lock()
	first := !r.has
	r.latest = p
	r.has = true
	r.stats.Accepted++
	r.stats.LastSeq = p.Seq
	r.mu.Unlock()

	if first {
		r.log.Infof("first joystick packet received from %s", src)
	}
	if r.cfg.Recorder != nil {
		r.cfg.Recorder.PacketAccepted()
	}
}

// Latest returns the most recent valid packet. ok is false until a packet
// arrives and again after Reset.
func (r *Receiver) Latest() (Packet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.has
}

func (r *Receiver) HasData() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.has
}

// Reset forgets the latest packet.
func (r *Receiver) Reset() {
	r.mu.Lock()
	r.latest = Packet{}
	r.has = false
	r.mu.Unlock()
	r.log.Infof("UDP receiver reset")
}

func (r *Receiver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
