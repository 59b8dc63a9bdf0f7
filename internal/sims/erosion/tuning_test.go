package erosion

import (
	"context"
	"testing"

	"hydro-erosion/internal/terrain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepFixture() (Config, []float64, []WaterSource) {
	cfg := DefaultConfig()
	cfg.Width = 12
	cfg.Height = 12
	return cfg, terrain.Noise(12, 12, 2, nil), []WaterSource{{X: 6, Y: 6, Radius: 2, Strength: 0.5}}
}

func TestRunScenario(t *testing.T) {
	cfg, heights, sources := sweepFixture()
	res, err := RunScenario(cfg, heights, sources, 10, 0.05)
	require.NoError(t, err)
	assert.True(t, res.Stable)
	assert.Equal(t, 10, res.Steps)
	assert.Greater(t, res.Water, 0.0)
	assert.GreaterOrEqual(t, res.Eroded, res.MaxIncision)

	_, err = RunScenario(cfg, heights[:3], sources, 1, 0.05)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestParameterSweep(t *testing.T) {
	cfg, heights, sources := sweepFixture()
	records, err := ParameterSweep(context.Background(), cfg, heights, sources, DefaultSweepSpecs(), 5, 0.05, 4)
	require.NoError(t, err)
	require.Len(t, records, 27)

	labels := map[string]bool{}
	for i, rec := range records {
		labels[rec.Label] = true
		assert.True(t, rec.Result.Stable, rec.Label)
		if i > 0 {
			assert.GreaterOrEqual(t, records[i-1].Result.Eroded, rec.Result.Eroded)
		}
	}
	assert.Len(t, labels, 27)
	assert.True(t, labels["sediment_transport=2 dissolving=0.0005 deposition=0.005"])
}

func TestParameterSweepBaseline(t *testing.T) {
	cfg, heights, sources := sweepFixture()
	records, err := ParameterSweep(context.Background(), cfg, heights, sources, nil, 2, 0.05, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "baseline", records[0].Label)
	assert.Equal(t, cfg.Params, records[0].Params)
}

func TestParameterSweepHonoursCancellation(t *testing.T) {
	cfg, heights, sources := sweepFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParameterSweep(ctx, cfg, heights, sources, DefaultSweepSpecs(), 2, 0.05, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
