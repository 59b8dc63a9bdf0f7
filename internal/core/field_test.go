package core

import (
	"math"
	"testing"
)

func TestFieldBilinearInterpolatesBetweenCells(t *testing.T) {
	f := NewField(2, 2)
	f.Set(0, 0, 0)
	f.Set(1, 0, 1)
	f.Set(0, 1, 2)
	f.Set(1, 1, 3)

	cases := []struct {
		x, y float64
		want float64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
		{0.5, 0, 0.5},
		{0, 0.5, 1},
		{0.5, 0.5, 1.5},
		{-3, -3, 0},
		{7, 7, 3},
	}
	for _, tc := range cases {
		if got := f.Bilinear(tc.x, tc.y); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Bilinear(%v,%v)=%v, expected %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestFieldBilinearExactOnLatticePoints(t *testing.T) {
	f := NewField(3, 3)
	for i := range f.Values() {
		f.Values()[i] = 0.1 * float64(i+1)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got, want := f.Bilinear(float64(x), float64(y)), f.At(x, y); got != want {
				t.Fatalf("lattice sample (%d,%d)=%v, expected exactly %v", x, y, got, want)
			}
		}
	}
}

func TestFieldClampPointHandlesNaN(t *testing.T) {
	f := NewField(4, 3)
	x, y := f.ClampPoint(math.NaN(), 10)
	if x != 0 || y != 2 {
		t.Fatalf("ClampPoint(NaN,10)=(%v,%v), expected (0,2)", x, y)
	}
	for i := range f.Values() {
		f.Values()[i] = float64(i)
	}
	if got := f.Nearest(3.9, 1.2); got != f.At(3, 1) {
		t.Fatalf("Nearest(3.9,1.2)=%v, expected %v", got, f.At(3, 1))
	}
	if got := f.Nearest(1.6, 0.4); got != f.At(2, 0) {
		t.Fatalf("Nearest(1.6,0.4)=%v, expected %v", got, f.At(2, 0))
	}
}

func TestNewFieldRejectsNonPositiveSize(t *testing.T) {
	if f := NewField(0, 5); f.Len() != 0 || f.W != 0 {
		t.Fatalf("expected empty field, got %dx%d len %d", f.W, f.H, f.Len())
	}
	if got := NewField(0, 0).Bilinear(1, 1); got != 0 {
		t.Fatalf("empty field sample = %v, expected 0", got)
	}
}

func TestFieldCloneIsIndependent(t *testing.T) {
	f := NewField(2, 1)
	f.Fill(1)
	c := f.Clone()
	c.Set(0, 0, 5)
	if f.At(0, 0) != 1 {
		t.Fatal("mutating the clone changed the original")
	}
}
