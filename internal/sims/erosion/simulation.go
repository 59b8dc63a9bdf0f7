package erosion

import (
	"fmt"
	"math"
)

// Simulation advances a Grid through the pipe-model stages.
type Simulation struct {
	cfg     Config
	grid    *Grid
	initial []float64

	ticks   int
	elapsed float64
	stats   Stats
}

// New validates cfg and allocates a simulation whose terrain is seeded from
// heights (row-major, cfg.Width*cfg.Height samples).
func New(cfg Config, heights []float64) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := NewGrid(cfg.Width, cfg.Height, heights)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		cfg:     cfg,
		grid:    grid,
		initial: append([]float64(nil), heights...),
	}
	s.stats = Measure(grid)
	return s, nil
}

// Config returns the active configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Grid exposes the simulation state.
func (s *Simulation) Grid() *Grid { return s.grid }

// Ticks returns the number of completed steps.
func (s *Simulation) Ticks() int { return s.ticks }

// Elapsed returns the simulated time accumulated over all steps.
func (s *Simulation) Elapsed() float64 { return s.elapsed }

// Stats returns the telemetry captured after the last step, or at
// construction when telemetry is disabled.
func (s *Simulation) Stats() Stats { return s.stats }

// SetParams swaps the physical tunables between ticks.
func (s *Simulation) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.cfg.Params = p
	return nil
}

// SetFeatures swaps the optional behaviour flags between ticks.
func (s *Simulation) SetFeatures(f Features) error {
	cfg := s.cfg
	cfg.Features = f
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg.Features = f
	return nil
}

// SetWorkers changes how many goroutines each stage uses.
func (s *Simulation) SetWorkers(n int) { s.cfg.Workers = n }

// Reset restores the initial heightmap and clears water and sediment.
func (s *Simulation) Reset() {
	_ = s.grid.Reset(s.initial)
	s.ticks = 0
	s.elapsed = 0
	s.stats = Measure(s.grid)
}

// Reseed replaces the initial heightmap and resets the simulation.
func (s *Simulation) Reseed(heights []float64) error {
	if len(heights) != s.cfg.Width*s.cfg.Height {
		return fmt.Errorf("%w: got %d samples for a %dx%d grid", ErrDimensionMismatch, len(heights), s.cfg.Width, s.cfg.Height)
	}
	s.initial = append(s.initial[:0], heights...)
	s.Reset()
	return nil
}

// Checkpoint captures the full state so a caller can rewind a tick.
func (s *Simulation) Checkpoint() Checkpoint {
	return Checkpoint{grid: s.grid.Clone(), ticks: s.ticks, elapsed: s.elapsed}
}

// Restore rewinds to a checkpoint taken from this simulation.
func (s *Simulation) Restore(cp Checkpoint) error {
	if cp.grid == nil || cp.grid.w != s.grid.w || cp.grid.h != s.grid.h {
		return fmt.Errorf("%w: checkpoint does not match grid", ErrDimensionMismatch)
	}
	s.grid.copyFrom(cp.grid)
	s.ticks = cp.ticks
	s.elapsed = cp.elapsed
	s.stats = Measure(s.grid)
	return nil
}

// Checkpoint is an opaque copy of a simulation's state.
type Checkpoint struct {
	grid    *Grid
	ticks   int
	elapsed float64
}

// Step advances the simulation by dt seconds with the given sources. The
// stages run in fixed order and each finishes every cell before the next
// starts. Negative or non-finite dt is treated as zero.
func (s *Simulation) Step(dt float64, sources []WaterSource) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		dt = 0
	}
	cutoff := s.cfg.Features.InjectionCutoff
	t := &tick{
		g:        s.grid,
		p:        s.cfg.Params,
		f:        s.cfg.Features,
		dt:       dt,
		sources:  activeSources(sources, s.cfg.Features),
		inflowOn: !(cutoff > 0 && s.elapsed >= cutoff),
	}

	rows, workers := s.grid.h, s.cfg.Workers
	runStage(rows, workers, t.inject)
	runStage(rows, workers, t.flux)
	runStage(rows, workers, t.water)
	runStage(rows, workers, t.velocity)
	runStage(rows, workers, t.erode)
	s.grid.swapTerrain()
	runStage(rows, workers, t.transport)
	runStage(rows, workers, t.evaporate)

	s.ticks++
	s.elapsed += dt
	if s.cfg.Features.Telemetry {
		s.stats = Measure(s.grid)
	}
}
