package erosion

import (
	"math"
	"testing"

	"hydro-erosion/internal/core"
	"hydro-erosion/internal/terrain"

	"github.com/stretchr/testify/require"
)

func flatSim(t *testing.T, w, h int, level float64, mutate func(*Config)) *Simulation {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	if mutate != nil {
		mutate(&cfg)
	}
	sim, err := New(cfg, terrain.Flat(w, h, level))
	require.NoError(t, err)
	return sim
}

func noiseSim(t *testing.T, w, h int, seed int64, mutate func(*Config)) *Simulation {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	cfg.Seed = seed
	if mutate != nil {
		mutate(&cfg)
	}
	sim, err := New(cfg, terrain.Noise(w, h, seed, nil))
	require.NoError(t, err)
	return sim
}

// scrambleState fills water, sediment and prior flux with arbitrary values,
// including negative flux, to exercise the solver's clamps.
func scrambleState(g *Grid, seed int64) {
	rng := core.NewRNG(seed)
	for i := range g.water.Values() {
		g.water.Values()[i] = rng.FloatRange(0, 0.2)
		g.sediment.Values()[i] = rng.FloatRange(0, 0.01)
		g.fluxL.Values()[i] = rng.FloatRange(-1, 1)
		g.fluxT.Values()[i] = rng.FloatRange(-1, 1)
		g.fluxR.Values()[i] = rng.FloatRange(-1, 1)
		g.fluxB.Values()[i] = rng.FloatRange(-1, 1)
	}
}

func requireFinite(t *testing.T, g *Grid) {
	t.Helper()
	for li, layer := range g.layers() {
		for i, v := range layer.Values() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("layer %d cell %d is not finite: %v", li, i, v)
			}
		}
	}
}

func copyLayers(g *Grid) [][]float64 {
	out := make([][]float64, 0, 13)
	for _, layer := range g.layers() {
		out = append(out, append([]float64(nil), layer.Values()...))
	}
	return out
}
