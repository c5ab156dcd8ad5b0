package trace

// Layout maps a sample to display space. The sample index runs along
// TimeAxis in Step units centered on Origin; the value runs along ValueAxis
// scaled by Scale.
type Layout struct {
	Origin    Vec3    `yaml:"origin"`
	TimeAxis  Vec3    `yaml:"time_axis"`
	ValueAxis Vec3    `yaml:"value_axis"`
	Step      float64 `yaml:"step"`
	Scale     float64 `yaml:"scale"`
}

const (
	DefaultCapacity = 800
	DefaultStep     = 0.5
	DefaultScale    = 120.0
)

// DefaultLayouts puts both traces in the Y=80 plane: Sx runs along X with
// its value on Z, Sy runs along Z with its value on X.
func DefaultLayouts() (Layout, Layout) {
	x := Layout{
		Origin:    Vec3{110, 80, 0},
		TimeAxis:  Vec3{1, 0, 0},
		ValueAxis: Vec3{0, 0, 1},
		Step:      DefaultStep,
		Scale:     DefaultScale,
	}
	y := Layout{
		Origin:    Vec3{0, 80, 110},
		TimeAxis:  Vec3{0, 0, 1},
		ValueAxis: Vec3{1, 0, 0},
		Step:      DefaultStep,
		Scale:     DefaultScale,
	}
	return x, y
}

// Point computes the position of value v written at slot idx of a buffer
// with the given capacity.
func (l Layout) Point(idx, capacity int, v float64) Vec3 {
	tx := -float64(capacity)*l.Step*0.5 + float64(idx)*l.Step
	return l.Origin.Add(l.TimeAxis.Scale(tx)).Add(l.ValueAxis.Scale(l.Scale * v))
}

// Recorder keeps the two detector channels in lockstep ring buffers.
type Recorder struct {
	layouts [2]Layout
	buffers [2]*Buffer
}

func NewRecorder(capacity int, a, b Layout) (*Recorder, error) {
	ba, err := NewBuffer(capacity)
	if err != nil {
		return nil, err
	}
	bb, err := NewBuffer(capacity)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		layouts: [2]Layout{a, b},
		buffers: [2]*Buffer{ba, bb},
	}, nil
}

// PushSample writes one value per channel at the shared cursor.
func (r *Recorder) PushSample(a, b float64) {
	idx := r.buffers[0].Cursor()
	capacity := r.buffers[0].Capacity()
	r.buffers[0].Write(r.layouts[0].Point(idx, capacity, a))
	r.buffers[1].Write(r.layouts[1].Point(idx, capacity, b))
}

func (r *Recorder) Clear() {
	r.buffers[0].Clear()
	r.buffers[1].Clear()
}

// Buffers returns the X and Y channel buffers.
func (r *Recorder) Buffers() (*Buffer, *Buffer) {
	return r.buffers[0], r.buffers[1]
}

func (r *Recorder) Layouts() (Layout, Layout) {
	return r.layouts[0], r.layouts[1]
}

// DrawRange is shared by both channels.
func (r *Recorder) DrawRange() int { return r.buffers[0].DrawRange() }
