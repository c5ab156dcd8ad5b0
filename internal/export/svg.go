package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/blochsim/internal/trace"
	"github.com/san-kum/blochsim/internal/viz"
)

const background = "#0a0a0a"

// Series is one polyline; X and Y must have equal length.
type Series struct {
	Name  string
	Color string
	X, Y  []float64
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func seriesBounds(series []Series) (bounds, bool) {
	var b bounds
	found := false
	for _, s := range series {
		for i := range s.X {
			x, y := s.X[i], s.Y[i]
			if !found {
				b = bounds{x, x, y, y}
				found = true
				continue
			}
			b.minX, b.maxX = min(b.minX, x), max(b.maxX, x)
			b.minY, b.maxY = min(b.minY, y), max(b.maxY, y)
		}
	}
	return b, found
}

// pad widens the bounds by 10% on each side.
func (b bounds) pad() bounds {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	return bounds{b.minX - rx*0.1, b.maxX + rx*0.1, b.minY - ry*0.1, b.maxY + ry*0.1}
}

// SeriesToSVG plots every series on shared axes with a legend. Series with
// fewer than two points are skipped; it returns "" when nothing is drawable.
func SeriesToSVG(series []Series, width, height int) string {
	drawable := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.X) >= 2 && len(s.X) == len(s.Y) {
			drawable = append(drawable, s)
		}
	}
	b, ok := seriesBounds(drawable)
	if !ok {
		return ""
	}
	b = b.pad()
	w, h := float64(width), float64(height)
	px := func(x float64) float64 { return (x - b.minX) / (b.maxX - b.minX) * w }
	py := func(y float64) float64 { return h - (y-b.minY)/(b.maxY-b.minY)*h }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	if b.minY < 0 && b.maxY > 0 {
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444444" stroke-width="1"/>
`, py(0), width, py(0))
	}

	for i, s := range drawable {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color)
		for j := range s.X {
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", px(s.X[j]), py(s.Y[j]))
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", px(s.X[j]), py(s.Y[j]))
			}
		}
		sb.WriteString("\"/>\n")
		if s.Name != "" {
			fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*i, s.Color, s.Name)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// bufferSeries recovers (time offset, value) pairs from a trace buffer by
// inverting its layout. Points come out oldest first.
func bufferSeries(name, color string, b *trace.Buffer, l trace.Layout) Series {
	pts := b.Ordered()
	s := Series{Name: name, Color: color, X: make([]float64, len(pts)), Y: make([]float64, len(pts))}
	scale := l.Scale
	if scale == 0 {
		scale = 1
	}
	for i, p := range pts {
		d := trace.Vec3{X: p.X - l.Origin.X, Y: p.Y - l.Origin.Y, Z: p.Z - l.Origin.Z}
		s.X[i] = float64(i) * l.Step
		s.Y[i] = dot(d, l.ValueAxis) / scale
	}
	return s
}

func dot(a, b trace.Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// TracesToSVG plots both detector channels as currently held by the
// recorder.
func TracesToSVG(rec *trace.Recorder, width, height int) string {
	bx, by := rec.Buffers()
	lx, ly := rec.Layouts()
	return SeriesToSVG([]Series{
		bufferSeries("Sx", "#ff4d6d", bx, lx),
		bufferSeries("Sy", "#4dd2ff", by, ly),
	}, width, height)
}

// CanvasToSVG converts a braille canvas to dots, colored per pen.
func CanvasToSVG(c *viz.Canvas, scale float64, th viz.Theme) string {
	if c == nil {
		return ""
	}
	sw, sh := c.Dots()
	width, height := float64(sw)*scale, float64(sh)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	r := scale * 0.4
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, r, string(th.PenColor(c.PenAt(x, y))))
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}
