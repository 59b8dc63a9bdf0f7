package erosion

import (
	"image/color"
	"math"
)

const (
	displayTerrainMask   = 0x0f
	displayWaterShift    = 4
	displayWaterMask     = 0x30
	displaySedimentShift = 6
	displaySedimentMask  = 0xc0

	terrainBands  = 16
	waterBands    = 4
	sedimentBands = 4

	// Depth and concentration that saturate the top display band.
	waterDisplayFull    = 0.05
	sedimentDisplayFull = 0.01
)

var erosionPalette = buildErosionPalette()

// Palette exposes the color palette used for rendering the erosion grid.
func (s *Session) Palette() []color.RGBA {
	return erosionPalette
}

// Palette returns the shared palette for display values produced by
// EncodeCells.
func Palette() []color.RGBA { return erosionPalette }

func buildErosionPalette() []color.RGBA {
	palette := make([]color.RGBA, 256)
	for i := range palette {
		terrainBand := i & displayTerrainMask
		waterBand := (i & displayWaterMask) >> displayWaterShift
		sedimentBand := (i & displaySedimentMask) >> displaySedimentShift
		palette[i] = toRGBA(paletteColorFor(terrainBand, waterBand, sedimentBand))
	}
	return palette
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func paletteColorFor(terrainBand, waterBand, sedimentBand int) color.NRGBA {
	t := float64(terrainBand) / float64(terrainBands-1)
	lowland := color.NRGBA{R: 64, G: 96, B: 48, A: 255}
	highland := color.NRGBA{R: 150, G: 128, B: 100, A: 255}
	peak := color.NRGBA{R: 230, G: 230, B: 235, A: 255}
	var base color.NRGBA
	if t < 0.6 {
		base = blendColors(lowland, highland, t/0.6)
	} else {
		base = blendColors(highland, peak, (t-0.6)/0.4)
	}
	if sedimentBand > 0 {
		silt := color.NRGBA{R: 170, G: 120, B: 60, A: 255}
		base = blendColors(base, silt, 0.2*float64(sedimentBand))
	}
	if waterBand > 0 {
		water := color.NRGBA{R: 40, G: 90, B: 200, A: 255}
		base = blendColors(base, water, 0.35+0.2*float64(waterBand))
	}
	return base
}

func blendColors(base, overlay color.NRGBA, overlayWeight float64) color.NRGBA {
	if overlayWeight <= 0 {
		return base
	}
	if overlayWeight >= 1 {
		return overlay
	}
	w := overlayWeight
	inv := 1 - w
	return color.NRGBA{
		R: uint8(float64(base.R)*inv + float64(overlay.R)*w + 0.5),
		G: uint8(float64(base.G)*inv + float64(overlay.G)*w + 0.5),
		B: uint8(float64(base.B)*inv + float64(overlay.B)*w + 0.5),
		A: uint8(float64(base.A)*inv + float64(overlay.A)*w + 0.5),
	}
}

// band maps v in [0, full] onto [0, n-1]; any positive value lands in band 1
// or above.
func band(v, full float64, n int) int {
	if !(v > 0) {
		return 0
	}
	b := int(math.Ceil(v / full * float64(n-1)))
	if b > n-1 {
		b = n - 1
	}
	return b
}

func encodeDisplayValue(height, water, sediment float64) uint8 {
	h := 0
	if height > 0 {
		h = int(math.Min(height, 1) * float64(terrainBands-1))
	}
	value := uint8(h) & displayTerrainMask
	value |= uint8(band(water, waterDisplayFull, waterBands)<<displayWaterShift) & displayWaterMask
	value |= uint8(band(sediment, sedimentDisplayFull, sedimentBands)<<displaySedimentShift) & displaySedimentMask
	return value
}

// EncodeCells writes one display value per cell of g into dst.
func EncodeCells(dst []uint8, g *Grid) {
	terrain := g.terrain.Values()
	water := g.water.Values()
	sediment := g.sediment.Values()
	n := min(len(dst), len(terrain))
	for i := 0; i < n; i++ {
		dst[i] = encodeDisplayValue(terrain[i], water[i], sediment[i])
	}
}

func (s *Session) rebuildDisplay() {
	EncodeCells(s.display, s.sim.Grid())
}
