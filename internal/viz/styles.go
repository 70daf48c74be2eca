package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Panel   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Dial    lipgloss.Style
	Graph   lipgloss.Style
	Help    lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Net     lipgloss.Style
	Thrust  [3]lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:   lipgloss.NewStyle().Foreground(t.Text),
		Dial:    lipgloss.NewStyle().Foreground(t.Primary),
		Graph:   lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		Help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Net:     lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Thrust: [3]lipgloss.Style{
			lipgloss.NewStyle().Foreground(t.Muted),
			lipgloss.NewStyle().Foreground(t.Warning),
			lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		},
	}
}

// CenterBar renders v in [-limit, limit] as a bar growing left or right of
// a center mark. Values beyond the limit pin to the end.
func CenterBar(v, limit float64, width int) string {
	if width < 3 {
		width = 3
	}
	half := width / 2
	n := 0
	if limit > 0 {
		n = int(v / limit * float64(half))
	}
	if n > half {
		n = half
	}
	if n < -half {
		n = -half
	}
	cells := []rune(strings.Repeat("░", half) + "│" + strings.Repeat("░", half))
	if n > 0 {
		for i := half + 1; i <= half+n; i++ {
			cells[i] = '█'
		}
	} else {
		for i := half + n; i < half; i++ {
			cells[i] = '█'
		}
	}
	return string(cells)
}
