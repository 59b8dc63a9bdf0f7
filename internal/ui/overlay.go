//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"hydro-erosion/internal/core"
	"hydro-erosion/internal/sims/erosion"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type layerProvider interface {
	WaterDepth() []float64
	Sediment() []float64
}

type velocityProvider interface {
	VelocityAt(x, y int) (float64, float64)
}

type sourceProvider interface {
	ActiveSources() []erosion.WaterSource
}

// Overlay draws optional debugging layers over the terrain. Keys 1-4 toggle
// water depth, sediment, velocity arrows and source discs.
type Overlay struct {
	sim   core.Sim
	scale int

	showWater    bool
	showSediment bool
	showFlow     bool
	showSources  bool

	maskImg *ebiten.Image
	maskBuf []byte
	pixel   *ebiten.Image

	samples      []flowSample
	sampleW      int
	sampleH      int
	sampleScale  int
	samplePixels float64
}

type flowSample struct {
	x, y   int
	sx, sy float64
}

// NewOverlay constructs an overlay for sim drawn at the given scale.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showSources: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles layers from the keyboard.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showWater = !o.showWater
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showSediment = !o.showSediment
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showFlow = !o.showFlow
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit4) {
		o.showSources = !o.showSources
	}
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	scale := max(o.scale, 1)

	if provider, ok := o.sim.(layerProvider); ok {
		if o.showWater {
			o.drawMask(screen, provider.WaterDepth(), 0.05, color.RGBA{R: 40, G: 120, B: 255}, size, scale)
		}
		if o.showSediment {
			o.drawMask(screen, provider.Sediment(), 0.01, color.RGBA{R: 230, G: 150, B: 40}, size, scale)
		}
	}
	if o.showFlow {
		if provider, ok := o.sim.(velocityProvider); ok {
			o.drawFlow(screen, provider, size, scale)
		}
	}
	if o.showSources {
		if provider, ok := o.sim.(sourceProvider); ok {
			o.drawSources(screen, provider.ActiveSources(), size, scale)
		}
	}
}

// drawMask tints cells by v/full, saturating at full.
func (o *Overlay) drawMask(screen *ebiten.Image, values []float64, full float64, tint color.RGBA, size core.Size, scale int) {
	total := size.W * size.H
	if len(values) != total {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, 4*total)
	}
	const maxAlpha = 200.0
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			intensity := clamp01(values[y*size.W+x] / full)
			base := ((size.H-1-y)*size.W + x) * 4
			a := intensity * maxAlpha / 255
			o.maskBuf[base+0] = uint8(float64(tint.R) * a)
			o.maskBuf[base+1] = uint8(float64(tint.G) * a)
			o.maskBuf[base+2] = uint8(float64(tint.B) * a)
			o.maskBuf[base+3] = uint8(a * 255)
		}
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.maskImg, op)
}

func (o *Overlay) drawFlow(screen *ebiten.Image, provider velocityProvider, size core.Size, scale int) {
	if !o.ensureSamples(size, scale) {
		return
	}
	const (
		calmThreshold = 1e-3
		fullSpeed     = 0.5
		headAngle     = math.Pi / 6
	)
	span := o.samplePixels
	for _, s := range o.samples {
		vx, vy := provider.VelocityAt(s.x, s.y)
		speed := math.Hypot(vx, vy)
		if speed < calmThreshold {
			continue
		}
		// +y is up in the grid and down on screen.
		nx := vx / speed
		ny := -vy / speed
		norm := clamp01(speed / fullSpeed)
		length := span * (0.3 + 0.5*math.Sqrt(norm))
		head := length * 0.35
		tipX := s.sx + nx*length*0.5
		tipY := s.sy + ny*length*0.5
		tailX := s.sx - nx*length*0.5
		tailY := s.sy - ny*length*0.5
		col := flowColor(norm)
		thickness := math.Max(1, float64(scale)*0.6)
		o.drawLine(screen, tailX, tailY, tipX, tipY, thickness, col)
		angle := math.Atan2(ny, nx)
		o.drawLine(screen, tipX, tipY, tipX-math.Cos(angle+headAngle)*head, tipY-math.Sin(angle+headAngle)*head, thickness, col)
		o.drawLine(screen, tipX, tipY, tipX-math.Cos(angle-headAngle)*head, tipY-math.Sin(angle-headAngle)*head, thickness, col)
	}
}

func (o *Overlay) drawSources(screen *ebiten.Image, sources []erosion.WaterSource, size core.Size, scale int) {
	const segments = 24
	col := color.RGBA{R: 120, G: 220, B: 255, A: 220}
	for _, src := range sources {
		cx := (float64(src.X) + 0.5) * float64(scale)
		cy := (float64(size.H-1-src.Y) + 0.5) * float64(scale)
		r := (float64(src.Radius) + 0.5) * float64(scale)
		for i := 0; i < segments; i++ {
			a0 := 2 * math.Pi * float64(i) / segments
			a1 := 2 * math.Pi * float64(i+1) / segments
			o.drawLine(screen, cx+r*math.Cos(a0), cy+r*math.Sin(a0), cx+r*math.Cos(a1), cy+r*math.Sin(a1), 1, col)
		}
	}
}

// ensureSamples caches an evenly spaced lattice of arrow anchors.
func (o *Overlay) ensureSamples(size core.Size, scale int) bool {
	if o.sampleW == size.W && o.sampleH == size.H && o.sampleScale == scale && len(o.samples) > 0 {
		return true
	}
	const (
		targetSamples = 400.0
		minSpacing    = 3
		maxSpacing    = 16
	)
	spacing := int(math.Sqrt(float64(size.W*size.H) / targetSamples))
	spacing = min(max(spacing, minSpacing), maxSpacing)

	o.samples = o.samples[:0]
	for y := spacing / 2; y < size.H; y += spacing {
		for x := spacing / 2; x < size.W; x += spacing {
			o.samples = append(o.samples, flowSample{
				x:  x,
				y:  y,
				sx: (float64(x) + 0.5) * float64(scale),
				sy: (float64(size.H-1-y) + 0.5) * float64(scale),
			})
		}
	}
	o.sampleW = size.W
	o.sampleH = size.H
	o.sampleScale = scale
	o.samplePixels = float64(spacing * scale)
	return len(o.samples) > 0
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func flowColor(t float64) color.RGBA {
	slow := color.RGBA{R: 90, G: 200, B: 255, A: 210}
	fast := color.RGBA{R: 255, G: 80, B: 60, A: 240}
	lerp := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5) }
	return color.RGBA{R: lerp(slow.R, fast.R), G: lerp(slow.G, fast.G), B: lerp(slow.B, fast.B), A: lerp(slow.A, fast.A)}
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
