package viz

import (
	"math"
	"sort"

	"github.com/san-kum/blochsim/internal/trace"
)

// Camera orbits the origin. World coordinates are divided by Extent before
// projection, so a point at distance Extent lands near the canvas edge.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
	Distance         float64
	Extent           float64
}

func NewCamera(extent float64) *Camera {
	return &Camera{RotX: 0.45, RotY: -0.7, Zoom: 1, Distance: 3, Extent: extent}
}

const (
	minZoom = 0.2
	maxZoom = 8
)

func clampZoom(z float64) float64 { return math.Max(minZoom, math.Min(maxZoom, z)) }

// RotatePoint applies the X, Y, then Z rotations.
func (c *Camera) RotatePoint(p trace.Vec3) trace.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps a world point to sub-pixel coordinates on a sw x sh grid.
// It returns the depth (larger is nearer) and whether the point is on screen
// and in front of the camera.
func (c *Camera) Project(p trace.Vec3, sw, sh int) (int, int, float64, bool) {
	extent := c.Extent
	if extent <= 0 {
		extent = 1
	}
	rot := c.RotatePoint(p).Scale(clampZoom(c.Zoom) / extent)
	if rot.Z >= c.Distance-0.05 {
		return 0, 0, rot.Z, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	half := float64(min(sw, sh)) / 2
	sx := int(math.Round(rot.X*persp*half)) + sw/2
	sy := int(math.Round(-rot.Y*persp*half)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End trace.Vec3
	Pen        Pen
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0, 64)} }

func (w *Wireframe) AddEdge(s, e trace.Vec3, p Pen) { w.Edges = append(w.Edges, Edge{s, e, p}) }
func (w *Wireframe) AddPoint(v trace.Vec3, p Pen)   { w.Edges = append(w.Edges, Edge{v, v, p}) }
func (w *Wireframe) Clear()                         { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	pen            Pen
}

// Render3D draws far edges first so nearer pens win shared cells.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Dots()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if !v1 && !v2 {
			continue
		}
		// Behind the camera the projection is meaningless.
		if d1 >= cam.Distance-0.05 || d2 >= cam.Distance-0.05 {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Pen})
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.SetPen(e.pen)
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}
