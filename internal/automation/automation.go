// Package automation drives a session through a scripted timeline of mode,
// command and scenario changes.
package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/log"
	"github.com/san-kum/attsim/internal/observability"
	"github.com/san-kum/attsim/internal/scenario"
	"github.com/san-kum/attsim/internal/sim"
)

// Script is a timeline applied to one session.
type Script struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	FrameDt     float64 `yaml:"frame_dt"`
	Duration    float64 `yaml:"duration"`
	Jitter      float64 `yaml:"jitter"`
	Seed        int64   `yaml:"seed"`
	Events      []Event `yaml:"events"`
}

// Event fires once the frame clock reaches At seconds. Unset fields leave
// the session alone; Mode is applied before Command, since a mode change
// clears the command.
type Event struct {
	At       float64             `yaml:"at"`
	Mode     *dynamo.ControlMode `yaml:"mode,omitempty"`
	Command  *dynamo.AxisCommand `yaml:"command,omitempty"`
	Scenario *scenario.Kind      `yaml:"scenario,omitempty"`
	Reset    bool                `yaml:"reset,omitempty"`
	Note     string              `yaml:"note,omitempty"`
}

// LoadScript loads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate fills defaults and checks timing.
func (s *Script) Validate() error {
	if s.FrameDt == 0 {
		s.FrameDt = sim.DefaultRunConfig().FrameDt
	}
	if s.Duration <= 0 {
		end := 0.0
		for _, e := range s.Events {
			if e.At > end {
				end = e.At
			}
		}
		s.Duration = end + 1
	}
	for i, e := range s.Events {
		if e.At < 0 {
			return fmt.Errorf("event %d: negative time %g", i+1, e.At)
		}
		if e.At > s.Duration {
			return fmt.Errorf("event %d: at %g is after the end of the script (%g)", i+1, e.At, s.Duration)
		}
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	return nil
}

func (s *Script) RunConfig() sim.RunConfig {
	return sim.RunConfig{
		FrameDt:  s.FrameDt,
		Duration: s.Duration,
		Jitter:   s.Jitter,
		Seed:     s.Seed,
	}
}

// RunScript plays the script against session and returns the recorded
// frames.
func RunScript(ctx context.Context, session *sim.Session, script *Script, logger log.Logger) (*sim.Result, error) {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithField("script", script.Name)
	logger.Infof("running script: %d events over %.2fs", len(script.Events), script.Duration)

	ctx, span := observability.StartSpan(ctx, "automation.RunScript",
		attribute.String("script.name", script.Name),
		attribute.Int("script.events", len(script.Events)),
		attribute.Float64("script.duration", script.Duration),
	)
	defer span.End()

	next := 0
	result, err := sim.RunWithCallback(ctx, session, script.RunConfig(), func(elapsed float64, s *sim.Session) bool {
		for next < len(script.Events) && script.Events[next].At <= elapsed+1e-9 {
			e := script.Events[next]
			apply(s, e)
			span.AddEvent("script.event", trace.WithAttributes(
				attribute.Float64("at", e.At),
				attribute.Float64("elapsed", elapsed),
				attribute.String("change", describe(e)),
			))
			logger.WithField("t", fmt.Sprintf("%.3f", elapsed)).Infof("event %d/%d %s", next+1, len(script.Events), describe(e))
			next++
		}
		return true
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	span.SetAttributes(attribute.Int("run.frames", result.Frames), attribute.Int("run.steps", result.Steps))
	if next < len(script.Events) {
		logger.Warnf("%d events past the last frame were not applied", len(script.Events)-next)
	}
	return result, nil
}

func apply(s *sim.Session, e Event) {
	if e.Reset {
		s.Reset()
	}
	if e.Mode != nil {
		s.SetMode(*e.Mode)
	}
	if e.Scenario != nil {
		s.SetScenario(*e.Scenario)
	}
	if e.Command != nil {
		s.SetCommand(*e.Command)
	}
}

func describe(e Event) string {
	out := ""
	if e.Reset {
		out += " reset"
	}
	if e.Mode != nil {
		out += " mode=" + e.Mode.String()
	}
	if e.Scenario != nil {
		out += " scenario=" + e.Scenario.String()
	}
	if e.Command != nil {
		out += fmt.Sprintf(" command=(%.0f,%.0f,%.0f)", e.Command.Roll, e.Command.Pitch, e.Command.Yaw)
	}
	if e.Note != "" {
		out += " note=" + e.Note
	}
	return out
}
