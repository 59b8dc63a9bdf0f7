//go:build ebiten

package app

import (
	"image/color"
	"time"

	"hydro-erosion/internal/core"
	"hydro-erosion/internal/render"
	"hydro-erosion/internal/sims/erosion"
	"hydro-erosion/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

type providerSource interface {
	Provider() erosion.WaterSourceProvider
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	palette []color.RGBA

	dt       float64
	scale    int
	paused   bool
	tickOnce bool
	seed     int64

	// Disc dropped by a left click.
	clickRadius   int
	clickStrength float64
}

// New constructs a Game for sim using cfg's scale, tick rate and HUD width.
func New(sim core.Sim, cfg Config) *Game {
	size := sim.Size()
	g := &Game{
		sim:           sim,
		painter:       render.NewGridPainter(size.W, size.H),
		overlay:       ui.NewOverlay(sim, cfg.Scale),
		hud:           ui.NewHUD(sim, cfg.HUDWidth),
		dt:            cfg.DT(),
		scale:         max(cfg.Scale, 1),
		seed:          cfg.Seed,
		clickRadius:   max(1, min(size.W, size.H)/24),
		clickStrength: 0.1,
	}
	if p, ok := sim.(paletteProvider); ok {
		g.palette = p.Palette()
	}
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame input and advances the simulation by one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if m := g.sources(); m != nil {
			m.Clear()
		}
	}
	g.handleClicks()

	g.overlay.Update()
	g.hud.Update(g.viewWidth())

	if !g.paused || g.tickOnce {
		g.sim.Step(g.dt)
		g.tickOnce = false
	}
	return nil
}

// handleClicks adds a source under a left click and removes the nearest one
// under a right click.
func (g *Game) handleClicks() {
	m := g.sources()
	if m == nil {
		return
	}
	left := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	right := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	if !left && !right {
		return
	}
	x, y, ok := g.cellAt(ebiten.CursorPosition())
	if !ok {
		return
	}
	if left {
		m.Add(erosion.WaterSource{X: x, Y: y, Radius: g.clickRadius, Strength: g.clickStrength})
		return
	}
	m.RemoveNearest(x, y)
}

func (g *Game) sources() *erosion.SourceManager {
	p, ok := g.sim.(providerSource)
	if !ok {
		return nil
	}
	m, _ := p.Provider().(*erosion.SourceManager)
	return m
}

// cellAt maps a screen position onto the grid. Grid row 0 is at the bottom.
func (g *Game) cellAt(mx, my int) (int, int, bool) {
	size := g.sim.Size()
	x := mx / g.scale
	y := size.H - 1 - my/g.scale
	if mx < 0 || my < 0 || x >= size.W || y < 0 {
		return 0, 0, false
	}
	return x, y, true
}

func (g *Game) viewWidth() int { return g.sim.Size().W * g.scale }

// Draw renders the terrain, overlays and HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.viewWidth(), g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hud.Width(), s.H * g.scale
}
