package viz

import (
	"math"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/trace"
)

// World layout: Y is up and carries Mz, X carries Mx and Z carries My. The
// trace layouts place their planes in the same frame.
const (
	ArrowScale   = 100.0
	AxisLength   = 150.0
	DetectorDist = 125.0
	SceneExtent  = 260.0
)

// MagnetizationTip places m in world space.
func MagnetizationTip(m bloch.Magnetization, m0 float64) trace.Vec3 {
	if m0 <= 0 {
		m0 = 1
	}
	s := ArrowScale / m0
	return trace.Vec3{X: m.X * s, Y: m.Z * s, Z: m.Y * s}
}

func AddAxes(w *Wireframe, length float64) {
	o := trace.Vec3{}
	w.AddEdge(o, trace.Vec3{X: length}, PenAxis)
	w.AddEdge(o, trace.Vec3{Y: length}, PenAxis)
	w.AddEdge(o, trace.Vec3{Z: length}, PenAxis)
}

// AddArrow draws a shaft from the origin to tip with a four-barb head.
func AddArrow(w *Wireframe, tip trace.Vec3) {
	o := trace.Vec3{}
	w.AddEdge(o, tip, PenArrow)

	n := math.Sqrt(tip.X*tip.X + tip.Y*tip.Y + tip.Z*tip.Z)
	if n < 1e-9 {
		w.AddPoint(o, PenArrow)
		return
	}
	dir := tip.Scale(1 / n)
	u, v := perpendicular(dir)
	head := math.Min(12, n*0.25)
	back := tip.Add(dir.Scale(-head))
	for _, side := range []trace.Vec3{u, u.Scale(-1), v, v.Scale(-1)} {
		w.AddEdge(tip, back.Add(side.Scale(head*0.4)), PenArrow)
	}
}

// AddDetector draws a cone whose apex sits at apex and whose base opens
// away from the origin along the same line.
func AddDetector(w *Wireframe, apex trace.Vec3, height, radius float64, segments int) {
	n := math.Sqrt(apex.X*apex.X + apex.Y*apex.Y + apex.Z*apex.Z)
	if n < 1e-9 || segments < 3 {
		return
	}
	dir := apex.Scale(1 / n)
	center := apex.Add(dir.Scale(height))
	u, v := perpendicular(dir)

	rim := make([]trace.Vec3, segments)
	for i := range rim {
		a := 2 * math.Pi * float64(i) / float64(segments)
		rim[i] = center.Add(u.Scale(radius * math.Cos(a))).Add(v.Scale(radius * math.Sin(a)))
	}
	for i, p := range rim {
		w.AddEdge(p, rim[(i+1)%segments], PenDetector)
		w.AddEdge(apex, p, PenDetector)
	}
}

// AddTrace connects consecutive slots of the buffer inside its draw range.
// Once the buffer has wrapped the newest and oldest slots are adjacent; that
// seam is left open.
func AddTrace(w *Wireframe, b *trace.Buffer, pen Pen) {
	n := b.DrawRange()
	if n <= 1 {
		w.AddPoint(b.At(0), pen)
		return
	}
	seam := -1
	if b.Wrapped() {
		seam = b.Cursor() - 1
		if seam < 0 {
			seam = n - 1
		}
	}
	for i := 0; i+1 < n; i++ {
		if i == seam {
			continue
		}
		w.AddEdge(b.At(i), b.At(i+1), pen)
	}
}

// BuildScene assembles the full frame for the session state.
func BuildScene(w *Wireframe, m bloch.Magnetization, m0 float64, rec *trace.Recorder) {
	w.Clear()
	AddAxes(w, AxisLength)
	AddDetector(w, trace.Vec3{X: DetectorDist}, 30, 12, 8)
	AddDetector(w, trace.Vec3{Z: DetectorDist}, 30, 12, 8)
	if rec != nil {
		bx, by := rec.Buffers()
		AddTrace(w, bx, PenChannelX)
		AddTrace(w, by, PenChannelY)
	}
	AddArrow(w, MagnetizationTip(m, m0))
}

// perpendicular returns two unit vectors orthogonal to d and each other.
func perpendicular(d trace.Vec3) (trace.Vec3, trace.Vec3) {
	ref := trace.Vec3{Y: 1}
	if math.Abs(d.Y) > 0.9 {
		ref = trace.Vec3{X: 1}
	}
	u := cross(d, ref)
	u = u.Scale(1 / math.Sqrt(u.X*u.X+u.Y*u.Y+u.Z*u.Z))
	return u, cross(d, u)
}

func cross(a, b trace.Vec3) trace.Vec3 {
	return trace.Vec3{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}
