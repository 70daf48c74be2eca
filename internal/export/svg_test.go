package export

import (
	"strings"
	"testing"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/viz"

	. "github.com/onsi/gomega"
)

func TestCanvasToSVG_OneCirclePerDot(t *testing.T) {
	g := NewWithT(t)
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(1, 3)
	c.Set(3, 2)

	svg := CanvasToSVG(c, 10, "#00ff00")
	g.Expect(svg).To(HavePrefix("<?xml"))
	g.Expect(svg).To(ContainSubstring(`width="40" height="40"`))
	g.Expect(strings.Count(svg, "<circle")).To(Equal(3))
	g.Expect(svg).To(ContainSubstring(`cx="5.0" cy="5.0"`))
	g.Expect(CanvasToSVG(nil, 10, "#fff")).To(BeEmpty())
}

func TestDialsToSVG(t *testing.T) {
	g := NewWithT(t)
	svg := DialsToSVG(dynamo.Attitude{Roll: 10, Pitch: 20, Yaw: 350}, 4)
	g.Expect(strings.Count(svg, "<g fill=")).To(Equal(3))
	g.Expect(svg).To(ContainSubstring("ROLL 10.0°"))
	g.Expect(svg).To(ContainSubstring("YAW 350.0°"))
	g.Expect(svg).To(HaveSuffix("</svg>"))
}

func TestSeriesToSVG(t *testing.T) {
	g := NewWithT(t)
	svg := SeriesToSVG([][]float64{{-1, 0, 1}, {2, 2, 2}, {5}}, 200, 100, SeriesColors)
	g.Expect(strings.Count(svg, "<path")).To(Equal(2))
	g.Expect(svg).To(ContainSubstring(SeriesColors[0]))
	g.Expect(svg).To(ContainSubstring(SeriesColors[1]))
	g.Expect(svg).NotTo(ContainSubstring(SeriesColors[2]))
	g.Expect(svg).To(ContainSubstring("stroke-dasharray"))
	g.Expect(svg).To(ContainSubstring("M0.0,"))

	g.Expect(SeriesToSVG([][]float64{{1}}, 200, 100, nil)).To(BeEmpty())
}
