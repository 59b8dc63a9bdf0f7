package erosion

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// ScenarioResult captures telemetry from a deterministic run used for tuning.
type ScenarioResult struct {
	// Eroded sums the height lost by every cell that ended below its start.
	Eroded float64
	// Deposited sums the height gained by every cell that ended above its start.
	Deposited float64
	// MaxIncision is the deepest single-cell drop.
	MaxIncision float64
	// MassDrift is the change in terrain+sediment over the run.
	MassDrift float64
	// Water is the standing water left at the end.
	Water float64
	// Steps is the number of ticks executed.
	Steps int
	// Stable is false when any layer became non-finite.
	Stable bool
}

// RunScenario builds a fresh simulation, runs steps ticks of dt with the given
// sources and reports how much the terrain changed.
func RunScenario(cfg Config, heights []float64, sources []WaterSource, steps int, dt float64) (ScenarioResult, error) {
	sim, err := New(cfg, heights)
	if err != nil {
		return ScenarioResult{}, err
	}
	start := Measure(sim.Grid())
	for i := 0; i < steps; i++ {
		sim.Step(dt, sources)
	}
	end := Measure(sim.Grid())

	res := ScenarioResult{
		MassDrift: end.Mass() - start.Mass(),
		Water:     end.Water,
		Steps:     sim.Ticks(),
		Stable:    !math.IsNaN(end.Mass()) && !math.IsInf(end.Mass(), 0) && !math.IsNaN(end.Water),
	}
	for i, h := range sim.Grid().Terrain().Values() {
		delta := h - heights[i]
		switch {
		case delta < 0:
			res.Eroded -= delta
			res.MaxIncision = math.Max(res.MaxIncision, -delta)
		case delta > 0:
			res.Deposited += delta
		}
	}
	return res, nil
}

// SweepSpec names one tunable and the values a sweep tries for it.
type SweepSpec struct {
	Name   string
	Values []float64
	Set    func(p *Params, v float64)
}

// SweepRecord is one evaluated parameter combination.
type SweepRecord struct {
	Label  string
	Params Params
	Result ScenarioResult
}

// DefaultSweepSpecs explores the sediment constants around the defaults.
func DefaultSweepSpecs() []SweepSpec {
	return []SweepSpec{
		{
			Name:   "sediment_transport",
			Values: []float64{1, 2, 4},
			Set:    func(p *Params, v float64) { p.SedimentTransport = v },
		},
		{
			Name:   "dissolving",
			Values: []float64{0.0002, 0.0005, 0.001},
			Set:    func(p *Params, v float64) { p.Dissolving = v },
		},
		{
			Name:   "deposition",
			Values: []float64{0.002, 0.005, 0.01},
			Set:    func(p *Params, v float64) { p.Deposition = v },
		},
	}
}

// ParameterSweep evaluates every combination of the specs' values on top of
// base.Params, running up to workers scenarios at once. Records come back
// ordered by eroded volume, most first; unstable runs sort last.
func ParameterSweep(ctx context.Context, base Config, heights []float64, sources []WaterSource, specs []SweepSpec, steps int, dt float64, workers int) ([]SweepRecord, error) {
	if workers <= 0 {
		workers = 1
	}
	candidates := expandSpecs(base.Params, specs)
	records := make([]SweepRecord, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cand := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg := base
			cfg.Params = cand.params
			cfg.Workers = 1
			res, err := RunScenario(cfg, heights, sources, steps, dt)
			if err != nil {
				return fmt.Errorf("%s: %w", cand.label, err)
			}
			records[i] = SweepRecord{Label: cand.label, Params: cand.params, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Result, records[j].Result
		if a.Stable != b.Stable {
			return a.Stable
		}
		return a.Eroded > b.Eroded
	})
	return records, nil
}

type sweepCandidate struct {
	label  string
	params Params
}

func expandSpecs(base Params, specs []SweepSpec) []sweepCandidate {
	out := []sweepCandidate{{params: base}}
	for _, spec := range specs {
		if len(spec.Values) == 0 || spec.Set == nil {
			continue
		}
		next := make([]sweepCandidate, 0, len(out)*len(spec.Values))
		for _, c := range out {
			for _, v := range spec.Values {
				p := c.params
				spec.Set(&p, v)
				label := spec.Name + "=" + strconv.FormatFloat(v, 'g', -1, 64)
				if c.label != "" {
					label = c.label + " " + label
				}
				next = append(next, sweepCandidate{label: label, params: p})
			}
		}
		out = next
	}
	if len(out) == 1 && out[0].label == "" {
		out[0].label = "baseline"
	}
	return out
}
