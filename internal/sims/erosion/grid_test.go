package erosion

import (
	"testing"

	"hydro-erosion/internal/terrain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridErrors(t *testing.T) {
	_, err := NewGrid(0, 4, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewGrid(4, 4, make([]float64, 15))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = New(DefaultConfig(), make([]float64, 3))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNewGridSeedsTerrainOnly(t *testing.T) {
	heights := terrain.Noise(6, 5, 3, nil)
	g, err := NewGrid(6, 5, heights)
	require.NoError(t, err)

	assert.Equal(t, heights, g.Terrain().Values())
	for _, layer := range g.layers()[1:] {
		for _, v := range layer.Values() {
			require.Zero(t, v)
		}
	}
	heights[0] = 42
	assert.NotEqual(t, 42.0, g.Terrain().At(0, 0), "grid must own its terrain copy")
}

func TestGridResetAndClone(t *testing.T) {
	g, err := NewGrid(4, 4, terrain.Flat(4, 4, 0.25))
	require.NoError(t, err)
	scrambleState(g, 1)

	clone := g.Clone()
	assert.Equal(t, copyLayers(g), copyLayers(clone))
	clone.WaterDepth().Set(0, 0, 9)
	assert.NotEqual(t, 9.0, g.WaterDepth().At(0, 0))

	require.NoError(t, g.Reset(terrain.Flat(4, 4, 0.75)))
	assert.Equal(t, 0.75, g.Terrain().At(3, 3))
	assert.Zero(t, g.WaterDepth().At(1, 1))
	assert.Equal(t, Flux{}, g.FluxAt(2, 2))

	assert.ErrorIs(t, g.Reset(make([]float64, 3)), ErrDimensionMismatch)
}
