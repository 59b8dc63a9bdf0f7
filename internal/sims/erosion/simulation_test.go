package erosion

import (
	"math"
	"testing"

	"hydro-erosion/internal/terrain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryWorldIsIdempotent(t *testing.T) {
	sim := noiseSim(t, 24, 18, 3, func(c *Config) { c.Workers = 3 })
	before := copyLayers(sim.Grid())
	for i := 0; i < 40; i++ {
		sim.Step(0.1, nil)
	}
	after := copyLayers(sim.Grid())
	// terrain, water and sediment layers.
	assert.Equal(t, before[0], after[0], "terrain changed")
	assert.Equal(t, before[2], after[2], "water changed")
	assert.Equal(t, before[5], after[5], "sediment changed")
	assert.Equal(t, 40, sim.Ticks())
}

func TestStepsConserveTerrainPlusSediment(t *testing.T) {
	sim := noiseSim(t, 24, 24, 9, func(c *Config) { c.Workers = 2 })
	src := []WaterSource{{X: 12, Y: 12, Radius: 3, Strength: 0.5}}
	start := Measure(sim.Grid())
	for i := 0; i < 25; i++ {
		sim.Step(0.02, src)
	}
	end := Measure(sim.Grid())
	requireFinite(t, sim.Grid())
	assert.Greater(t, end.Water, 0.0)
	assert.NotEqual(t, start.Terrain, end.Terrain, "no erosion happened")
	// transport resamples sediment, so the total drifts slightly
	assert.InDelta(t, start.Mass(), end.Mass(), 1e-3*start.Mass())
}

func TestSingleSourceOnFlatTerrain(t *testing.T) {
	sim := flatSim(t, 8, 8, 0.5, nil)
	src := []WaterSource{{X: 4, Y: 4, Radius: 2, Strength: 0.1}}
	sim.Step(0.1, src)
	g := sim.Grid()

	// Cells whose whole neighbourhood lies inside the disc keep their water.
	for _, c := range [][2]int{{4, 4}, {3, 4}, {5, 4}, {4, 3}, {4, 5}} {
		assert.Greater(t, g.WaterDepth().At(c[0], c[1]), 0.0, "cell %v should be wet", c)
	}

	// Rim cells push water outward and nothing back toward the centre.
	east := g.FluxAt(6, 4)
	assert.Greater(t, east.Right, 0.0)
	assert.Zero(t, east.Left)
	west := g.FluxAt(2, 4)
	assert.Greater(t, west.Left, 0.0)
	assert.Zero(t, west.Right)
	north := g.FluxAt(4, 6)
	assert.Greater(t, north.Top, 0.0)
	assert.Zero(t, north.Bottom)
	south := g.FluxAt(4, 2)
	assert.Greater(t, south.Bottom, 0.0)
	assert.Zero(t, south.Top)
	assert.Equal(t, Flux{}, g.FluxAt(4, 4))

	// Beyond one cell past the rim nothing arrived yet.
	for _, c := range [][2]int{{0, 0}, {7, 7}, {0, 7}, {7, 0}, {1, 1}, {0, 4}} {
		assert.Zero(t, g.WaterDepth().At(c[0], c[1]), "cell %v should be dry", c)
	}

	for i := 1; i < 10; i++ {
		sim.Step(0.1, src)
	}
	requireFinite(t, g)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			f := g.FluxAt(x, y)
			require.True(t, f.Left >= 0 && f.Top >= 0 && f.Right >= 0 && f.Bottom >= 0)
			require.GreaterOrEqual(t, g.WaterDepth().At(x, y), 0.0)
		}
	}
	assert.Greater(t, g.WaterDepth().At(4, 4), 0.0)
}

func TestEvaporationOnlyDecay(t *testing.T) {
	sim := flatSim(t, 8, 8, 0.5, func(c *Config) { c.Params.Evaporation = 0.1 })
	sim.Grid().WaterDepth().Fill(1)
	sim.Step(1, nil)
	for _, v := range sim.Grid().WaterDepth().Values() {
		require.InDelta(t, 0.9, v, 1e-12)
	}
}

func TestDeterminismAcrossRunsAndWorkers(t *testing.T) {
	sources := []WaterSource{
		{X: 8, Y: 20, Radius: 3, Strength: 0.2},
		{X: 25, Y: 6, Radius: 2, Strength: 0.15, TTL: 0.5},
	}
	run := func(workers int) [][]float64 {
		sim := noiseSim(t, 32, 28, 21, func(c *Config) {
			c.Workers = workers
			c.Params.Dissolving = 0.01
		})
		for i := 0; i < 30; i++ {
			sim.Step(0.02, sources)
		}
		requireFinite(t, sim.Grid())
		return copyLayers(sim.Grid())
	}
	baseline := run(1)
	assert.Equal(t, baseline, run(1))
	assert.Equal(t, baseline, run(4))
	assert.Equal(t, baseline, run(64))
}

func TestTinyGridsStayInBounds(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 6}, {6, 1}, {2, 2}, {3, 2}}
	sources := []WaterSource{
		{X: 0, Y: 0, Radius: 1, Strength: 1},
		{X: -5, Y: 9, Radius: 20, Strength: 0.5},
	}
	for _, size := range sizes {
		sim := noiseSim(t, size[0], size[1], 1, func(c *Config) { c.Workers = 4 })
		require.NotPanics(t, func() {
			for i := 0; i < 5; i++ {
				sim.Step(0.05, sources)
			}
		}, "size %v", size)
		requireFinite(t, sim.Grid())
	}
}

func TestExpiredSourcesDoNotInject(t *testing.T) {
	src := []WaterSource{{X: 1, Y: 1, Radius: 5, Strength: 1, TTL: 1, Age: 1}}

	withTTL := flatSim(t, 3, 3, 0, func(c *Config) { c.Features.SourceTTL = true })
	withTTL.Step(0.1, src)
	assert.Zero(t, withTTL.Grid().WaterDepth().At(1, 1))

	withoutTTL := flatSim(t, 3, 3, 0, func(c *Config) { c.Features.SourceTTL = false })
	withoutTTL.Step(0.1, src)
	assert.Greater(t, withoutTTL.Grid().WaterDepth().At(1, 1), 0.0)
}

func TestInjectionCutoff(t *testing.T) {
	sim := flatSim(t, 4, 4, 0.5, func(c *Config) {
		c.Features.InjectionCutoff = 0.25
		c.Params.Evaporation = 0
	})
	src := []WaterSource{{X: 1, Y: 1, Radius: 10, Strength: 1}}
	for i := 0; i < 3; i++ {
		sim.Step(0.1, src)
	}
	assert.InDelta(t, 0.3, sim.Grid().WaterDepth().At(2, 2), 1e-12)
	sim.Step(0.1, src)
	sim.Step(0.1, src)
	assert.InDelta(t, 0.3, sim.Grid().WaterDepth().At(2, 2), 1e-12)
	assert.InDelta(t, 0.5, sim.Elapsed(), 1e-12)
}

func TestStepTreatsBadDeltaAsZero(t *testing.T) {
	sim := flatSim(t, 5, 5, 0.2, nil)
	src := []WaterSource{{X: 2, Y: 2, Radius: 1, Strength: 1}}
	for _, dt := range []float64{math.NaN(), math.Inf(1), -1, 0} {
		sim.Step(dt, src)
	}
	assert.Zero(t, sim.Elapsed())
	assert.Equal(t, 4, sim.Ticks())
	for _, v := range sim.Grid().WaterDepth().Values() {
		require.Zero(t, v)
	}
}

func TestCheckpointRestore(t *testing.T) {
	sim := noiseSim(t, 12, 12, 5, nil)
	src := []WaterSource{{X: 6, Y: 6, Radius: 2, Strength: 0.3}}
	sim.Step(0.05, src)
	cp := sim.Checkpoint()
	want := copyLayers(sim.Grid())

	sim.Step(0.05, src)
	sim.Step(0.05, src)
	require.NoError(t, sim.Restore(cp))
	assert.Equal(t, want, copyLayers(sim.Grid()))
	assert.Equal(t, 1, sim.Ticks())

	other := noiseSim(t, 4, 4, 5, nil)
	assert.ErrorIs(t, other.Restore(cp), ErrDimensionMismatch)
}

func TestResetAndReseed(t *testing.T) {
	sim := noiseSim(t, 10, 10, 9, nil)
	initial := append([]float64(nil), sim.Grid().Terrain().Values()...)
	for i := 0; i < 5; i++ {
		sim.Step(0.05, []WaterSource{{X: 5, Y: 5, Radius: 3, Strength: 0.5}})
	}
	sim.Reset()
	assert.Equal(t, initial, sim.Grid().Terrain().Values())
	assert.Zero(t, sim.Ticks())
	assert.Zero(t, sim.Stats().Water)

	require.NoError(t, sim.Reseed(terrain.Flat(10, 10, 0.3)))
	assert.Equal(t, 0.3, sim.Grid().Terrain().At(7, 7))
	assert.ErrorIs(t, sim.Reseed(nil), ErrDimensionMismatch)
}

func TestTelemetryTracksTotals(t *testing.T) {
	sim := flatSim(t, 6, 6, 0.5, func(c *Config) { c.Features.Telemetry = true })
	sim.Step(0.1, []WaterSource{{X: 3, Y: 3, Radius: 1, Strength: 1}})
	st := sim.Stats()
	assert.InDelta(t, 18.0, st.Terrain, 1e-2)
	assert.Greater(t, st.Water, 0.0)
	assert.Greater(t, st.WetCells, 0)
	assert.LessOrEqual(t, st.MinHeight, 0.5)
	assert.InDelta(t, 0.5, st.MaxHeight, 1e-2)
	assert.InDelta(t, st.Terrain+st.Sediment, st.Mass(), 1e-12)
}

func TestSetParamsValidates(t *testing.T) {
	sim := flatSim(t, 4, 4, 0.5, nil)
	p := sim.Config().Params
	p.Gravity = math.NaN()
	assert.ErrorIs(t, sim.SetParams(p), ErrInvalidConfiguration)
	assert.Equal(t, 1.0, sim.Config().Params.Gravity)

	f := sim.Config().Features
	f.InjectionCutoff = -1
	assert.ErrorIs(t, sim.SetFeatures(f), ErrInvalidConfiguration)
}
