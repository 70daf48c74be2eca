package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/scenario"
	"github.com/san-kum/attsim/internal/sim"
)

var csvHeader = []string{
	"step", "time", "mode", "scenario",
	"roll_cmd", "pitch_cmd", "yaw_cmd",
	"roll", "pitch", "yaw", "roll_rate", "pitch_rate", "yaw_rate",
	"torque_x", "torque_y", "torque_z",
	"disturbance_x", "disturbance_y", "disturbance_z",
	"energy",
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// WriteCSV writes one row per sample under csvHeader.
func WriteCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range samples {
		a := s.Attitude
		row := []string{
			strconv.Itoa(s.Step), ff(s.Time), s.Mode.String(), s.Scenario.String(),
			ff(float64(s.Command.Roll)), ff(float64(s.Command.Pitch)), ff(float64(s.Command.Yaw)),
			ff(a.Roll), ff(a.Pitch), ff(a.Yaw), ff(a.RollRate), ff(a.PitchRate), ff(a.YawRate),
			ff(s.ControlTorque.X), ff(s.ControlTorque.Y), ff(s.ControlTorque.Z),
			ff(s.Disturbance.X), ff(s.Disturbance.Y), ff(s.Disturbance.Z),
			ff(s.Energy),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV produced.
func ReadCSV(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(csvHeader) {
			return nil, fmt.Errorf("telemetry row %d: %d fields, want %d", i+1, len(rec), len(csvHeader))
		}

		var s sim.Sample
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("telemetry row %d: %w", i+1, err)
		}
		s.Step = step

		if s.Mode, err = dynamo.ParseControlMode(rec[2]); err != nil {
			return nil, fmt.Errorf("telemetry row %d: %w", i+1, err)
		}
		if s.Scenario, err = scenario.Parse(rec[3]); err != nil {
			return nil, fmt.Errorf("telemetry row %d: %w", i+1, err)
		}

		v := make([]float64, 0, len(rec)-4)
		for j, field := range append([]string{rec[1]}, rec[4:]...) {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("telemetry row %d col %d: %w", i+1, j, err)
			}
			v = append(v, f)
		}

		s.Time = v[0]
		s.Command = dynamo.AxisCommand{Roll: float32(v[1]), Pitch: float32(v[2]), Yaw: float32(v[3])}
		s.Attitude = dynamo.Attitude{
			Roll: v[4], Pitch: v[5], Yaw: v[6],
			RollRate: v[7], PitchRate: v[8], YawRate: v[9],
		}
		s.ControlTorque = dynamo.Vec3{X: v[10], Y: v[11], Z: v[12]}
		s.Disturbance = dynamo.Vec3{X: v[13], Y: v[14], Z: v[15]}
		s.Energy = v[16]
		samples = append(samples, s)
	}
	return samples, nil
}

type ExportData struct {
	Metadata RunMetadata  `json:"metadata"`
	Samples  []sim.Sample `json:"samples"`
}

// ExportJSON writes metadata and samples as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: meta, Samples: samples})
}
