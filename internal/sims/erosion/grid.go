package erosion

import (
	"fmt"

	"hydro-erosion/internal/core"
)

// Flux is the outgoing flow of one cell toward each axis neighbour.
// Top points to y+1 and Bottom to y-1.
type Flux struct {
	Left, Top, Right, Bottom float64
}

// Total returns the summed outflow.
func (f Flux) Total() float64 { return f.Left + f.Top + f.Right + f.Bottom }

// Grid owns every per-cell layer of the pipe model. The intermediate water
// layers and the staged sediment layer exist so each stage reads values that
// the previous stage finished for all cells.
type Grid struct {
	w, h int

	terrain     *core.Field
	terrainNext *core.Field

	water  *core.Field
	water1 *core.Field
	water2 *core.Field

	sediment       *core.Field
	sedimentStaged *core.Field

	fluxL *core.Field
	fluxT *core.Field
	fluxR *core.Field
	fluxB *core.Field

	velX *core.Field
	velY *core.Field
}

// NewGrid allocates a w x h grid and seeds the terrain from heights, which
// must hold exactly w*h row-major samples.
func NewGrid(w, h int, heights []float64) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: grid size %dx%d must be positive", ErrInvalidConfiguration, w, h)
	}
	if len(heights) != w*h {
		return nil, fmt.Errorf("%w: got %d samples for a %dx%d grid", ErrDimensionMismatch, len(heights), w, h)
	}
	g := &Grid{
		w:              w,
		h:              h,
		terrain:        core.NewField(w, h),
		terrainNext:    core.NewField(w, h),
		water:          core.NewField(w, h),
		water1:         core.NewField(w, h),
		water2:         core.NewField(w, h),
		sediment:       core.NewField(w, h),
		sedimentStaged: core.NewField(w, h),
		fluxL:          core.NewField(w, h),
		fluxT:          core.NewField(w, h),
		fluxR:          core.NewField(w, h),
		fluxB:          core.NewField(w, h),
		velX:           core.NewField(w, h),
		velY:           core.NewField(w, h),
	}
	copy(g.terrain.Values(), heights)
	return g, nil
}

// Reset reseeds the terrain from heights and zeroes every other layer.
func (g *Grid) Reset(heights []float64) error {
	if len(heights) != g.w*g.h {
		return fmt.Errorf("%w: got %d samples for a %dx%d grid", ErrDimensionMismatch, len(heights), g.w, g.h)
	}
	copy(g.terrain.Values(), heights)
	for _, f := range g.layers()[1:] {
		f.Fill(0)
	}
	return nil
}

// Clone returns a deep copy of the grid, suitable for rewinding.
func (g *Grid) Clone() *Grid {
	return &Grid{
		w:              g.w,
		h:              g.h,
		terrain:        g.terrain.Clone(),
		terrainNext:    g.terrainNext.Clone(),
		water:          g.water.Clone(),
		water1:         g.water1.Clone(),
		water2:         g.water2.Clone(),
		sediment:       g.sediment.Clone(),
		sedimentStaged: g.sedimentStaged.Clone(),
		fluxL:          g.fluxL.Clone(),
		fluxT:          g.fluxT.Clone(),
		fluxR:          g.fluxR.Clone(),
		fluxB:          g.fluxB.Clone(),
		velX:           g.velX.Clone(),
		velY:           g.velY.Clone(),
	}
}

// copyFrom overwrites every layer with src. Dimensions must match.
func (g *Grid) copyFrom(src *Grid) {
	dst := g.layers()
	for i, f := range src.layers() {
		dst[i].CopyFrom(f)
	}
}

func (g *Grid) layers() []*core.Field {
	return []*core.Field{
		g.terrain, g.terrainNext,
		g.water, g.water1, g.water2,
		g.sediment, g.sedimentStaged,
		g.fluxL, g.fluxT, g.fluxR, g.fluxB,
		g.velX, g.velY,
	}
}

// swapTerrain publishes the terrain written by the erosion stage.
func (g *Grid) swapTerrain() {
	g.terrain, g.terrainNext = g.terrainNext, g.terrain
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Size reports the grid dimensions.
func (g *Grid) Size() core.Size { return core.Size{W: g.w, H: g.h} }

// Terrain exposes the ground elevation layer.
func (g *Grid) Terrain() *core.Field { return g.terrain }

// WaterDepth exposes the committed water depth layer.
func (g *Grid) WaterDepth() *core.Field { return g.water }

// WaterDepthIntermediate1 exposes the post-injection water depth.
func (g *Grid) WaterDepthIntermediate1() *core.Field { return g.water1 }

// WaterDepthIntermediate2 exposes the post-flow water depth.
func (g *Grid) WaterDepthIntermediate2() *core.Field { return g.water2 }

// Sediment exposes the suspended sediment layer.
func (g *Grid) Sediment() *core.Field { return g.sediment }

// SedimentStaged exposes the post-erosion, pre-advection sediment layer.
func (g *Grid) SedimentStaged() *core.Field { return g.sedimentStaged }

// VelocityX exposes the x component of the velocity field.
func (g *Grid) VelocityX() *core.Field { return g.velX }

// VelocityY exposes the y component of the velocity field.
func (g *Grid) VelocityY() *core.Field { return g.velY }

// FluxAt returns the outgoing flux of cell (x, y).
func (g *Grid) FluxAt(x, y int) Flux {
	i := y*g.w + x
	return Flux{
		Left:   g.fluxL.Values()[i],
		Top:    g.fluxT.Values()[i],
		Right:  g.fluxR.Values()[i],
		Bottom: g.fluxB.Values()[i],
	}
}

// VelocityAt returns the velocity of cell (x, y).
func (g *Grid) VelocityAt(x, y int) (float64, float64) {
	i := y*g.w + x
	return g.velX.Values()[i], g.velY.Values()[i]
}
