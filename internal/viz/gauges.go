package viz

import (
	"math"

	"github.com/san-kum/attsim/internal/dynamo"
)

const (
	dialCols = 14
	dialRows = 7
)

// Dial draws a round gauge with a needle at angle degrees. Zero points up
// and angles grow clockwise, so 90 points right.
func Dial(angle float64) *Canvas {
	c := NewCanvas(dialCols, dialRows)
	w, h := c.PixelSize()
	cx, cy := w/2, h/2
	r := cy - 1
	if cx-1 < r {
		r = cx - 1
	}
	c.DrawCircle(cx, cy, r)
	for _, tick := range [4]float64{0, 90, 180, 270} {
		x0, y0 := dialPoint(cx, cy, float64(r)-3, tick)
		x1, y1 := dialPoint(cx, cy, float64(r), tick)
		c.DrawLine(x0, y0, x1, y1)
	}
	if !math.IsNaN(angle) && !math.IsInf(angle, 0) {
		x, y := dialPoint(cx, cy, float64(r)-2, angle)
		c.DrawLine(cx, cy, x, y)
	}
	return c
}

func dialPoint(cx, cy int, r, deg float64) (int, int) {
	a := deg * math.Pi / 180
	return cx + int(math.Round(r*math.Sin(a))), cy - int(math.Round(r*math.Cos(a)))
}

// rateHistory keeps a bounded window of body rates for the chart.
type rateHistory struct {
	capacity int
	series   [3][]float64
}

func newRateHistory(capacity int) *rateHistory {
	return &rateHistory{capacity: capacity}
}

func (h *rateHistory) Add(rates dynamo.Vec3) {
	for i, v := range [3]float64{rates.X, rates.Y, rates.Z} {
		h.series[i] = append(h.series[i], v)
		if len(h.series[i]) > h.capacity {
			h.series[i] = h.series[i][1:]
		}
	}
}

func (h *rateHistory) Len() int { return len(h.series[0]) }

func (h *rateHistory) Reset() {
	for i := range h.series {
		h.series[i] = h.series[i][:0]
	}
}

func (h *rateHistory) Series() [][]float64 {
	return [][]float64{h.series[0], h.series[1], h.series[2]}
}
