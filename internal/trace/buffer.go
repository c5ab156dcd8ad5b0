package trace

import "errors"

var ErrCapacity = errors.New("trace: capacity must be positive")

// Buffer is a fixed-capacity ring of 3D points stored flat as x,y,z triples,
// ready to hand to a line renderer. Only the first DrawRange points are
// meaningful.
type Buffer struct {
	positions []float32
	capacity  int
	cursor    int
	wrapped   bool
	count     int
	dirty     bool
}

func NewBuffer(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}
	b := &Buffer{
		positions: make([]float32, capacity*3),
		capacity:  capacity,
	}
	b.Clear()
	return b, nil
}

// Write stores p at the cursor and advances it.
func (b *Buffer) Write(p Vec3) {
	i := b.cursor * 3
	b.positions[i] = float32(p.X)
	b.positions[i+1] = float32(p.Y)
	b.positions[i+2] = float32(p.Z)

	b.cursor++
	if b.cursor == b.capacity {
		b.cursor = 0
		b.wrapped = true
	}

	if b.wrapped {
		b.count = b.capacity
	} else {
		b.count = b.cursor
	}
	b.dirty = true
}

// Clear zeroes the storage. The draw range stays at one point so a renderer
// still has something to show before the first write.
func (b *Buffer) Clear() {
	for i := range b.positions {
		b.positions[i] = 0
	}
	b.cursor = 0
	b.wrapped = false
	b.count = 1
	b.dirty = true
}

// Positions exposes the backing array; callers must not retain it across
// writes if they need a stable copy.
func (b *Buffer) Positions() []float32 { return b.positions }

func (b *Buffer) Capacity() int  { return b.capacity }
func (b *Buffer) Cursor() int    { return b.cursor }
func (b *Buffer) DrawRange() int { return b.count }
func (b *Buffer) Wrapped() bool  { return b.wrapped }

// Dirty reports whether the positions changed since the last MarkSynced.
func (b *Buffer) Dirty() bool { return b.dirty }
func (b *Buffer) MarkSynced() { b.dirty = false }

// At returns the point at physical slot i.
func (b *Buffer) At(i int) Vec3 {
	i = ((i % b.capacity) + b.capacity) % b.capacity
	j := i * 3
	return Vec3{float64(b.positions[j]), float64(b.positions[j+1]), float64(b.positions[j+2])}
}

// Ordered returns the written points oldest first.
func (b *Buffer) Ordered() []Vec3 {
	if !b.wrapped {
		out := make([]Vec3, b.cursor)
		for i := range out {
			out[i] = b.At(i)
		}
		return out
	}
	out := make([]Vec3, b.capacity)
	for i := range out {
		out[i] = b.At(b.cursor + i)
	}
	return out
}
