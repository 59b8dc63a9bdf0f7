// Package terrain produces normalized heightmaps for the erosion grid, either
// procedurally or from an image.
package terrain

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Octave is one layer of the noise sum: Frequency is in cycles per grid
// width and Amplitude its weight.
type Octave struct {
	Frequency float64
	Amplitude float64
}

// DefaultOctaves is a ridge-free fractal sum that reads as rolling hills at
// 128 cells and above.
var DefaultOctaves = []Octave{
	{Frequency: 1, Amplitude: 1},
	{Frequency: 2, Amplitude: 0.5},
	{Frequency: 4, Amplitude: 0.25},
	{Frequency: 8, Amplitude: 0.125},
	{Frequency: 16, Amplitude: 0.0625},
}

// Noise returns w*h row-major heights in [0, 1] summed from opensimplex
// octaves, each seeded from seed.
func Noise(w, h int, seed int64, octaves []Octave) []float64 {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(octaves) == 0 {
		octaves = DefaultOctaves
	}
	noises := make([]opensimplex.Noise, len(octaves))
	for i := range octaves {
		noises[i] = opensimplex.New(seed + int64(i))
	}
	span := float64(max(w, h))
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v float64
			for i, o := range octaves {
				fx := float64(x) / span * o.Frequency
				fy := float64(y) / span * o.Frequency
				v += noises[i].Eval2(fx, fy) * o.Amplitude
			}
			out[y*w+x] = v
		}
	}
	Normalize(out)
	return out
}

// Normalize rescales values in place to span [0, 1]. A constant input maps to
// 0.5. Non-finite samples are zeroed first.
func Normalize(values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = 0
			v = 0
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	for i, v := range values {
		if span == 0 {
			values[i] = 0.5
			continue
		}
		values[i] = (v - lo) / span
	}
}

// Flat returns w*h samples all set to level.
func Flat(w, h int, level float64) []float64 {
	if w <= 0 || h <= 0 {
		return nil
	}
	out := make([]float64, w*h)
	for i := range out {
		out[i] = level
	}
	return out
}
