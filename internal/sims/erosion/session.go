package erosion

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"hydro-erosion/internal/core"
	"hydro-erosion/internal/terrain"
)

// TerrainFunc produces w*h heights for a seed.
type TerrainFunc func(seed int64, w, h int) ([]float64, error)

// NoiseTerrain generates opensimplex hills.
func NoiseTerrain(seed int64, w, h int) ([]float64, error) {
	return terrain.Noise(w, h, seed, nil), nil
}

// sourceClock is implemented by providers that age their sources.
type sourceClock interface {
	Advance(dt float64)
}

// Session binds a Simulation to a source provider and a terrain generator so
// a host loop can drive it through core.Sim.
type Session struct {
	name     string
	sim      *Simulation
	provider WaterSourceProvider
	terrain  TerrainFunc
	seed     int64

	sources []WaterSource
	stepped []WaterSource
	seen    map[sourceKey]float64
	dirty   atomic.Bool
	polling bool
	cancel  func()

	display []uint8
}

// NewSession builds the simulation from cfg, seeding the terrain with
// terrainFn(cfg.Seed). A nil provider means no sources; a nil terrainFn
// uses NoiseTerrain.
func NewSession(name string, cfg Config, terrainFn TerrainFunc, provider WaterSourceProvider) (*Session, error) {
	if terrainFn == nil {
		terrainFn = NoiseTerrain
	}
	if provider == nil {
		provider = StaticSources(nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	heights, err := terrainFn(cfg.Seed, cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}
	sim, err := New(cfg, heights)
	if err != nil {
		return nil, err
	}
	s := &Session{
		name:     name,
		sim:      sim,
		provider: provider,
		terrain:  terrainFn,
		seed:     cfg.Seed,
		display:  make([]uint8, cfg.Width*cfg.Height),
	}
	if n, ok := provider.(ChangeNotifier); ok {
		s.cancel = n.Subscribe(func() { s.dirty.Store(true) })
	} else {
		s.polling = true
	}
	s.sources = provider.Sources()
	s.rebuildDisplay()
	return s, nil
}

// Name returns the simulation identifier.
func (s *Session) Name() string { return s.name }

// Size reports the grid dimensions.
func (s *Session) Size() core.Size { return s.sim.Grid().Size() }

// Cells exposes the current display buffer.
func (s *Session) Cells() []uint8 { return s.display }

// Simulation exposes the underlying simulation.
func (s *Session) Simulation() *Simulation { return s.sim }

// Provider exposes the source provider.
func (s *Session) Provider() WaterSourceProvider { return s.provider }

// ActiveSources returns the sources handed to the last step, before expired
// ones were filtered out.
func (s *Session) ActiveSources() []WaterSource { return s.stepped }

// Seed returns the seed the terrain was generated from.
func (s *Session) Seed() int64 { return s.seed }

// Reset regenerates the terrain. A zero seed restores the current terrain
// instead.
func (s *Session) Reset(seed int64) {
	s.seen = nil
	s.stepped = nil
	if seed == 0 || seed == s.seed {
		s.sim.Reset()
		s.rebuildDisplay()
		return
	}
	cfg := s.sim.Config()
	heights, err := s.terrain(seed, cfg.Width, cfg.Height)
	if err == nil {
		err = s.sim.Reseed(heights)
	}
	if err != nil {
		s.sim.Reset()
	} else {
		s.seed = seed
	}
	s.rebuildDisplay()
}

// Step advances the simulation by dt seconds. The source snapshot is
// re-read every tick from providers that cannot notify, and otherwise only
// when the provider reported a change. Sources are aged after
// the tick, so a source injects on every tick where its age is below TTL.
func (s *Session) Step(dt float64) {
	if s.polling || s.dirty.Swap(false) {
		s.sources = s.provider.Sources()
	}
	ttl := s.sim.Config().Features.SourceTTL
	clock, managed := s.provider.(sourceClock)
	active := s.sources
	if ttl && !managed {
		active = s.aged(s.sources)
	}
	s.stepped = active
	s.sim.Step(dt, active)
	if ttl && managed {
		clock.Advance(dt)
	}
	s.rebuildDisplay()
}

// sourceKey identifies a source from a provider that cannot age it.
type sourceKey struct {
	x, y, radius  int
	strength, ttl float64
}

// aged returns a copy of sources whose ages include the simulated time since
// the session first saw each of them.
func (s *Session) aged(sources []WaterSource) []WaterSource {
	now := s.sim.Elapsed()
	seen := make(map[sourceKey]float64, len(sources))
	out := make([]WaterSource, len(sources))
	for i, src := range sources {
		key := sourceKey{x: src.X, y: src.Y, radius: src.Radius, strength: src.Strength, ttl: src.TTL}
		first, ok := s.seen[key]
		if !ok {
			first = now
		}
		seen[key] = first
		src.Age += now - first
		out[i] = src
	}
	s.seen = seen
	return out
}

// Close detaches from the provider.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Terrain exposes the terrain heights.
func (s *Session) Terrain() []float64 { return s.sim.Grid().Terrain().Values() }

// WaterDepth exposes the committed water depth.
func (s *Session) WaterDepth() []float64 { return s.sim.Grid().WaterDepth().Values() }

// Sediment exposes the suspended sediment.
func (s *Session) Sediment() []float64 { return s.sim.Grid().Sediment().Values() }

// VelocityAt returns the flow velocity of cell (x, y).
func (s *Session) VelocityAt(x, y int) (float64, float64) {
	return s.sim.Grid().VelocityAt(x, y)
}

// Stats returns the telemetry captured after the last step.
func (s *Session) Stats() Stats { return s.sim.Stats() }

func defaultSources(cfg Config, opts map[string]string) []WaterSource {
	radius := max(1, min(cfg.Width, cfg.Height)/16)
	out := []WaterSource{{X: cfg.Width / 2, Y: cfg.Height / 2, Radius: radius, Strength: 0.1}}
	if v, ok := opts["rain"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out = append(out, ScatterSources(core.NewRNG(cfg.Seed), cfg.Width, cfg.Height, ScatterOptions{
				Count:       n,
				RadiusMin:   1,
				RadiusMax:   radius,
				StrengthMin: 0.02,
				StrengthMax: 0.08,
				TTL:         5,
			})...)
		}
	}
	return out
}

func init() {
	core.Register("erosion", func(opts map[string]string) (core.Sim, error) {
		cfg := FromMap(opts)
		return NewSession("erosion", cfg, NoiseTerrain, NewSourceManager(defaultSources(cfg, opts)...))
	})
	core.Register("erosion-nearest", func(opts map[string]string) (core.Sim, error) {
		cfg := FromMap(opts)
		cfg.Features.Transport = TransportNearest
		return NewSession("erosion-nearest", cfg, NoiseTerrain, NewSourceManager(defaultSources(cfg, opts)...))
	})
}

// StatusLines summarises the last tick for the HUD.
func (s *Session) StatusLines() []string {
	st := s.sim.Stats()
	lines := []string{
		fmt.Sprintf("t=%.2fs  ticks=%d", s.sim.Elapsed(), s.sim.Ticks()),
		fmt.Sprintf("sources=%d", len(s.stepped)),
	}
	if !s.sim.Config().Features.Telemetry {
		return append(lines, "telemetry off")
	}
	return append(lines,
		fmt.Sprintf("water=%.3f wet=%d", st.Water, st.WetCells),
		fmt.Sprintf("sediment=%.4f", st.Sediment),
		fmt.Sprintf("max v=%.3f d=%.3f", st.MaxSpeed, st.MaxWater),
		fmt.Sprintf("h=[%.3f, %.3f]", st.MinHeight, st.MaxHeight),
	)
}
