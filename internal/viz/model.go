package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/attsim/internal/control"
	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/netinput"
	"github.com/san-kum/attsim/internal/sim"
)

const (
	frameRate       = 60
	historyCapacity = 240
	// KeyStep is how far one key press moves an axis command.
	KeyStep = 10
)

// Input is a source of the latest joystick command, normally a
// netinput.Receiver.
type Input interface {
	Latest() (netinput.Packet, bool)
}

// Inputs polls several sources in order and reports the first that has a
// command.
type Inputs []Input

func (in Inputs) Latest() (netinput.Packet, bool) {
	for _, src := range in {
		if p, ok := src.Latest(); ok {
			return p, true
		}
	}
	return netinput.Packet{}, false
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live attitude indicator. Each tick reads the network input,
// smooths the command in rate-command mode and advances the session by the
// real time since the previous tick.
type Model struct {
	session *sim.Session
	input   Input
	title   string

	target  dynamo.AxisCommand
	applied dynamo.AxisCommand

	running   bool
	showHelp  bool
	last      time.Time
	lastSteps int
	netSeq    uint32
	netActive bool

	theme   Theme
	styles  Styles
	history *rateHistory
}

// NewModel wraps a session. input may be nil for keyboard-only control.
func NewModel(s *sim.Session, input Input, title string) Model {
	if title == "" {
		title = "Spacecraft Attitude Indicator"
	}
	return Model{
		session: s,
		input:   input,
		title:   title,
		running: true,
		theme:   ThemeConsole,
		styles:  NewStyles(ThemeConsole),
		history: newRateHistory(historyCapacity),
	}
}

// WithTheme returns a copy of m using the named theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = NewStyles(m.theme)
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and advances the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "?":
			m.showHelp = !m.showHelp
		case "r":
			m.reset()
		case "1":
			m.setMode(dynamo.Manual)
		case "2":
			m.setMode(dynamo.RateCommand)
		case "3":
			m.setMode(dynamo.FlyByWire)
		case "m", "tab":
			m.setMode(m.session.Mode().Next())
		case "n":
			m.session.SetScenario(m.session.Scenario().Next())
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case "0":
			m.target = dynamo.AxisCommand{}
		case "d", "right":
			m.nudge(&m.target.Roll, KeyStep)
		case "a", "left":
			m.nudge(&m.target.Roll, -KeyStep)
		case "w", "up":
			m.nudge(&m.target.Pitch, KeyStep)
		case "s", "down":
			m.nudge(&m.target.Pitch, -KeyStep)
		case "c":
			m.nudge(&m.target.Yaw, KeyStep)
		case "z":
			m.nudge(&m.target.Yaw, -KeyStep)
		}
	case TickMsg:
		now := time.Time(msg)
		dt := 1.0 / frameRate
		if !m.last.IsZero() {
			dt = now.Sub(m.last).Seconds()
		}
		m.last = now
		if m.running {
			m.frame(dt)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) nudge(axis *float32, delta float32) {
	v := *axis + delta
	if v > netinput.InputMax {
		v = netinput.InputMax
	}
	if v < netinput.InputMin {
		v = netinput.InputMin
	}
	*axis = v
}

// setMode switches the control mode and drops any pending command.
func (m *Model) setMode(mode dynamo.ControlMode) {
	m.session.SetMode(mode)
	m.target = dynamo.AxisCommand{}
	m.applied = dynamo.AxisCommand{}
}

func (m *Model) reset() {
	m.session.Reset()
	m.target = dynamo.AxisCommand{}
	m.applied = dynamo.AxisCommand{}
	m.lastSteps = 0
	m.history.Reset()
}

// frame runs one display frame of dt seconds.
func (m *Model) frame(dt float64) {
	if m.input != nil {
		if p, ok := m.input.Latest(); ok {
			m.target = p.Command
			m.netSeq = p.Seq
			m.netActive = true
		} else {
			m.netActive = false
		}
	}
	if m.session.Mode() == dynamo.RateCommand {
		m.applied = control.BlendCommand(m.applied, m.target, control.DefaultBlend)
	} else {
		m.applied = m.target
	}
	m.session.SetCommand(m.applied)
	m.lastSteps = m.session.Advance(dt)
	m.history.Add(m.session.Readout().Rates())
}

// View renders the indicator.
func (m Model) View() string {
	st := m.styles
	att := m.session.Readout()

	var b strings.Builder
	b.WriteString(st.Header.Render(strings.ToUpper(m.title)) + "\n")
	b.WriteString(m.statusLine() + "\n\n")

	dials := make([]string, 0, 3)
	for _, d := range []struct {
		name  string
		angle float64
	}{{"ROLL", att.Roll}, {"PITCH", att.Pitch}, {"YAW", att.Yaw}} {
		gauge := st.Dial.Render(Dial(d.angle).String())
		label := st.Value.Render(fmt.Sprintf("%-5s %6.1f°", d.name, d.angle))
		dials = append(dials, st.Panel.Render(gauge+"\n"+label))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, dials...) + "\n")

	b.WriteString(st.Panel.Render(m.ratePanel(att)) + "\n")

	if m.history.Len() > 1 {
		chart := asciigraph.PlotMany(m.history.Series(),
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
			asciigraph.Caption("Rates deg/s (roll red, pitch green, yaw blue)"))
		b.WriteString(st.Graph.Render(chart) + "\n")
	}

	b.WriteString(st.Help.Render("1/2/3:Mode  a/d w/s z/c:Axes  0:Zero  n:Scenario  r:Reset  SP:Pause  t:Theme  ?:Help  q:Quit"))

	if m.showHelp {
		return helpText + "\n" + b.String()
	}
	return b.String()
}

func (m Model) statusLine() string {
	st := m.styles
	status := st.Running.Render("RUNNING")
	if !m.running {
		status = st.Paused.Render("PAUSED")
	}
	net := st.Label.Render("NET --")
	if m.netActive {
		net = st.Net.Render(fmt.Sprintf("NET #%d", m.netSeq))
	}
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		status,
		st.Value.Render("Mode: "+modeLabel(m.session.Mode())),
		st.Value.Render("Scenario: "+m.session.Scenario().Label()),
		st.Value.Render(fmt.Sprintf("t=%.2fs steps/frame=%d", m.session.Time(), m.lastSteps)),
		net)
}

func (m Model) ratePanel(att dynamo.Attitude) string {
	st := m.styles
	mode := m.session.Mode()
	cmd := [3]float32{m.applied.Roll, m.applied.Pitch, m.applied.Yaw}
	rates := [3]float64{att.RollRate, att.PitchRate, att.YawRate}
	names := [3]string{"Roll", "Pitch", "Yaw"}
	th := control.DefaultThruster()

	var b strings.Builder
	for i := range names {
		line := st.Label.Render(names[i]+" rate") +
			CenterBar(rates[i], control.DefaultRateLimit, 21) +
			st.Value.Render(fmt.Sprintf(" %8.2f°/s", rates[i])) +
			st.Label.Render("  cmd") +
			st.Value.Render(fmt.Sprintf("%7.1f", cmd[i]))
		if mode == dynamo.FlyByWire {
			lvl := th.Level(cmd[i])
			line += "  " + st.Thrust[lvl].Render(lvl.String())
		}
		b.WriteString(line)
		if i < len(names)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func modeLabel(m dynamo.ControlMode) string {
	switch m {
	case dynamo.Manual:
		return "Manual"
	case dynamo.RateCommand:
		return "Rate Command"
	case dynamo.FlyByWire:
		return "Fly-by-Wire"
	}
	return m.String()
}

const helpText = `
╔═════════════════════════════════════════╗
║            KEYBOARD SHORTCUTS           ║
╠═════════════════════════════════════════╣
║  1 / 2 / 3  - Manual / Rate / Fly-by-W  ║
║  m, Tab     - Cycle control mode        ║
║  a / d      - Roll command -/+          ║
║  w / s      - Pitch command +/-         ║
║  z / c      - Yaw command -/+           ║
║  0          - Zero all commands         ║
║  n          - Next disturbance scenario ║
║  r          - Reset attitude            ║
║  Space      - Pause/Resume              ║
║  t          - Cycle themes              ║
║  ?          - Toggle this help          ║
║  q          - Quit                      ║
╚═════════════════════════════════════════╝
`
