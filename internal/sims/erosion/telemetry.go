package erosion

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stats summarises the grid after a tick.
type Stats struct {
	Terrain   float64
	Water     float64
	Sediment  float64
	MaxWater  float64
	MaxSpeed  float64
	WetCells  int
	MinHeight float64
	MaxHeight float64
}

// Mass is the material total that dissolution and deposition conserve.
func (s Stats) Mass() float64 { return s.Terrain + s.Sediment }

// Measure computes Stats for g.
func Measure(g *Grid) Stats {
	terrain := g.terrain.Values()
	water := g.water.Values()
	st := Stats{
		Terrain:   floats.Sum(terrain),
		Water:     floats.Sum(water),
		Sediment:  floats.Sum(g.sediment.Values()),
		MaxWater:  floats.Max(water),
		MinHeight: floats.Min(terrain),
		MaxHeight: floats.Max(terrain),
	}
	vx := g.velX.Values()
	vy := g.velY.Values()
	for i, d := range water {
		if d > 0 {
			st.WetCells++
		}
		if v := math.Hypot(vx[i], vy[i]); v > st.MaxSpeed {
			st.MaxSpeed = v
		}
	}
	return st
}
