// Package netinput receives joystick commands over UDP. Each datagram is a
// fixed 16-byte little-endian packet: float32 roll, pitch and yaw followed
// by a uint32 sequence number.
package netinput

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/attsim/internal/dynamo"
)

const (
	PacketSize  = 16
	DefaultPort = 8888

	InputMin = -100.0
	InputMax = 100.0
	// Tolerance is the largest magnitude accepted on any axis.
	Tolerance = 150.0
)

var (
	ErrPacketSize = errors.New("netinput: invalid packet size")
	ErrNonFinite  = errors.New("netinput: NaN or Inf in packet")
	ErrOutOfRange = errors.New("netinput: input out of range")
)

// Packet is one decoded joystick sample.
type Packet struct {
	Command dynamo.AxisCommand
	Seq     uint32
}

// Encode writes p in wire format.
func (p Packet) Encode() []byte {
	b := make([]byte, PacketSize)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(p.Command.Roll))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(p.Command.Pitch))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(p.Command.Yaw))
	binary.LittleEndian.PutUint32(b[12:], p.Seq)
	return b
}

func (p Packet) MarshalBinary() ([]byte, error) {
	return p.Encode(), nil
}

func (p *Packet) UnmarshalBinary(b []byte) error {
	v, err := Decode(b)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Decode parses a datagram. It checks the length only; see Validate.
func Decode(b []byte) (Packet, error) {
	if len(b) != PacketSize {
		return Packet{}, fmt.Errorf("%w: got %d bytes, want %d", ErrPacketSize, len(b), PacketSize)
	}
	return Packet{
		Command: dynamo.AxisCommand{
			Roll:  math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
			Pitch: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			Yaw:   math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		},
		Seq: binary.LittleEndian.Uint32(b[12:]),
	}, nil
}

// Validate rejects non-finite values and any axis whose magnitude exceeds
// tolerance.
func (p Packet) Validate(tolerance float32) error {
	for _, v := range [3]float32{p.Command.Roll, p.Command.Pitch, p.Command.Yaw} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrNonFinite
		}
	}
	if !p.Command.Within(tolerance) {
		return fmt.Errorf("%w: |v| > %.0f", ErrOutOfRange, tolerance)
	}
	return nil
}

// Parse decodes and validates in one go.
func Parse(b []byte, tolerance float32) (Packet, error) {
	p, err := Decode(b)
	if err != nil {
		return Packet{}, err
	}
	if err := p.Validate(tolerance); err != nil {
		return Packet{}, err
	}
	return p, nil
}

// RejectReason maps a parse error to a short label for metrics.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrPacketSize):
		return "size"
	case errors.Is(err, ErrNonFinite):
		return "non_finite"
	case errors.Is(err, ErrOutOfRange):
		return "range"
	}
	return "other"
}
