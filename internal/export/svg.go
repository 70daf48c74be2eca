// Package export renders stored telemetry and indicator snapshots as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/attsim/internal/dynamo"
	"github.com/san-kum/attsim/internal/viz"
)

const background = "#0a0a0a"

// SeriesColors are the roll, pitch and yaw stroke colors.
var SeriesColors = []string{"#ff5f5f", "#87d787", "#5fafff"}

// Braille dot-to-bit mapping
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// writeDots emits one circle per lit Braille dot, shifted right by offsetX.
func writeDots(sb *strings.Builder, canvas *viz.Canvas, scale, offsetX float64) {
	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			baseX := offsetX + float64(col)*scale*2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}
}

// CanvasToSVG converts a Braille canvas to SVG.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}
	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)
	writeDots(&sb, canvas, scale, 0)
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// DialsToSVG draws the roll, pitch and yaw gauges of att side by side with
// their readouts underneath.
func DialsToSVG(att dynamo.Attitude, scale float64) string {
	angles := [3]float64{att.Roll, att.Pitch, att.Yaw}
	names := [3]string{"ROLL", "PITCH", "YAW"}

	first := viz.Dial(0)
	cellW := float64(first.Width) * scale * 2
	cellH := float64(first.Height) * scale * 4
	gap := scale * 4
	width := 3*cellW + 2*gap
	height := cellH + scale*6

	var sb strings.Builder
	header(&sb, width, height)
	for i, a := range angles {
		x := float64(i) * (cellW + gap)
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n", SeriesColors[i])
		writeDots(&sb, viz.Dial(a), scale, x)
		sb.WriteString("</g>\n")
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" fill=\"#dddddd\" font-family=\"monospace\" font-size=\"%.0f\" text-anchor=\"middle\">%s %.1f°</text>\n",
			x+cellW/2, cellH+scale*4, scale*3, names[i], a)
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots each series as a polyline over a shared index axis.
// Series shorter than two points are skipped.
func SeriesToSVG(series [][]float64, width, height int, colors []string) string {
	minY, maxY, maxLen := 0.0, 0.0, 0
	seen := false
	for _, s := range series {
		if len(s) > maxLen {
			maxLen = len(s)
		}
		for _, v := range s {
			if !seen || v < minY {
				minY = v
			}
			if !seen || v > maxY {
				maxY = v
			}
			seen = true
		}
	}
	if maxLen < 2 {
		return ""
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(maxLen - 1)

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	if minY < 0 && maxY > 0 {
		zero := float64(height) - (0-minY)/rangeY*float64(height)
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#444444\" stroke-dasharray=\"4 4\"/>\n", zero, width, zero)
	}
	for i, s := range series {
		if len(s) < 2 {
			continue
		}
		color := "#00ff00"
		if len(colors) > 0 {
			color = colors[i%len(colors)]
		}
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", color)
		for j, v := range s {
			x := float64(j) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}
