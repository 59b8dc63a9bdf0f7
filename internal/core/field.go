package core

import "math"

// Field stores a 2D lattice of float64 samples in row-major order.
type Field struct {
	W, H int
	data []float64
}

// NewField allocates a zeroed field with the given dimensions. Non-positive
// dimensions produce an empty field.
func NewField(w, h int) *Field {
	if w <= 0 || h <= 0 {
		return &Field{}
	}
	return &Field{W: w, H: h, data: make([]float64, w*h)}
}

// Values exposes the backing slice so callers can read/write samples directly.
func (f *Field) Values() []float64 { return f.data }

// Len returns the number of samples.
func (f *Field) Len() int { return len(f.data) }

// Index returns the linear slice index for coordinates (x, y).
func (f *Field) Index(x, y int) int { return y*f.W + x }

// InBounds reports whether (x, y) addresses a sample.
func (f *Field) InBounds(x, y int) bool {
	return x >= 0 && x < f.W && y >= 0 && y < f.H
}

// At returns the sample at (x, y). Coordinates must be in bounds.
func (f *Field) At(x, y int) float64 { return f.data[y*f.W+x] }

// Set writes the sample at (x, y). Coordinates must be in bounds.
func (f *Field) Set(x, y int, v float64) { f.data[y*f.W+x] = v }

// Fill sets every sample to v.
func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// CopyFrom copies src into the field. Both fields must share dimensions.
func (f *Field) CopyFrom(src *Field) { copy(f.data, src.data) }

// Clone returns an independent copy of the field.
func (f *Field) Clone() *Field {
	out := &Field{W: f.W, H: f.H, data: make([]float64, len(f.data))}
	copy(out.data, f.data)
	return out
}

// ClampPoint limits a continuous position to [0, W-1] x [0, H-1]. NaN
// coordinates collapse to zero.
func (f *Field) ClampPoint(x, y float64) (float64, float64) {
	return clampAxis(x, f.W), clampAxis(y, f.H)
}

func clampAxis(v float64, n int) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	max := float64(n - 1)
	if v > max {
		return max
	}
	return v
}

// Bilinear samples the field at a continuous position using the four
// surrounding lattice points. The position is clamped into the field first.
func (f *Field) Bilinear(x, y float64) float64 {
	if len(f.data) == 0 {
		return 0
	}
	x, y = f.ClampPoint(x, y)
	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	if x1 >= f.W {
		x1 = f.W - 1
	}
	y1 := y0 + 1
	if y1 >= f.H {
		y1 = f.H - 1
	}
	tx := x - float64(x0)
	ty := y - float64(y0)

	a := f.data[y0*f.W+x0]
	b := f.data[y0*f.W+x1]
	c := f.data[y1*f.W+x0]
	d := f.data[y1*f.W+x1]

	top := a*(1-tx) + b*tx
	bottom := c*(1-tx) + d*tx
	if ty == 0 {
		return top
	}
	return top*(1-ty) + bottom*ty
}

// Nearest samples the lattice point closest to the clamped position.
func (f *Field) Nearest(x, y float64) float64 {
	if len(f.data) == 0 {
		return 0
	}
	x, y = f.ClampPoint(x, y)
	return f.data[int(math.Round(y))*f.W+int(math.Round(x))]
}
