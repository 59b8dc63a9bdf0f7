package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"hydro-erosion/internal/sims/erosion"
	"hydro-erosion/internal/terrain"
)

type kvList []string

func (l *kvList) String() string { return strings.Join(*l, ",") }

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	steps := flag.Int("steps", 300, "ticks to simulate per scenario")
	dt := flag.Float64("dt", 0.02, "simulated seconds per tick")
	workers := flag.Int("workers", runtime.NumCPU(), "scenarios evaluated in parallel")
	size := flag.Int("size", 96, "grid width and height")
	seed := flag.Int64("seed", 1337, "terrain seed")
	top := flag.Int("top", 5, "results to print")
	var overrides kvList
	flag.Var(&overrides, "set", "base option in key=value form (repeatable)")
	var axes kvList
	flag.Var(&axes, "sweep", "swept parameter as name=v1,v2,... (repeatable; defaults to Kc/Ks/Kd)")
	flag.Parse()

	opts := map[string]string{
		"size": strconv.Itoa(*size),
		"seed": strconv.FormatInt(*seed, 10),
	}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			log.Fatalf("override %q is not key=value", kv)
		}
		opts[key] = value
	}
	cfg := erosion.FromMap(opts)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	specs := erosion.DefaultSweepSpecs()
	if len(axes) > 0 {
		var err error
		if specs, err = parseSweeps(axes); err != nil {
			log.Fatal(err)
		}
	}

	heights := terrain.Noise(cfg.Width, cfg.Height, cfg.Seed, nil)
	r := max(1, cfg.Width/16)
	sources := []erosion.WaterSource{
		{X: cfg.Width / 4, Y: 3 * cfg.Height / 4, Radius: r, Strength: 0.2},
		{X: 3 * cfg.Width / 4, Y: cfg.Height / 4, Radius: r, Strength: 0.2},
	}

	combos := 1
	for _, s := range specs {
		combos *= max(1, len(s.Values))
	}
	fmt.Printf("Sweeping %d parameter sets (%d workers, %d steps, %dx%d)\n", combos, *workers, *steps, cfg.Width, cfg.Height)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	start := time.Now()
	records, err := erosion.ParameterSweep(ctx, cfg, heights, sources, specs, *steps, *dt, *workers)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\nTop %d results (elapsed %s):\n", min(*top, len(records)), time.Since(start).Round(time.Millisecond))
	for i := 0; i < len(records) && i < *top; i++ {
		printRecord(i+1, records[i])
	}
	unstable := 0
	for _, rec := range records {
		if !rec.Result.Stable {
			unstable++
		}
	}
	if unstable > 0 {
		fmt.Printf("\n%d combinations went non-finite\n", unstable)
	}
}

func printRecord(rank int, rec erosion.SweepRecord) {
	res := rec.Result
	fmt.Printf("%2d) eroded=%.4f deposited=%.4f incision=%.4f drift=%.2e water=%.3f stable=%v %s\n",
		rank, res.Eroded, res.Deposited, res.MaxIncision, res.MassDrift, res.Water, res.Stable, rec.Label)
}

// parseSweeps turns "name=v1,v2" flags into sweep specs.
func parseSweeps(axes []string) ([]erosion.SweepSpec, error) {
	specs := make([]erosion.SweepSpec, 0, len(axes))
	for _, axis := range axes {
		name, list, ok := strings.Cut(axis, "=")
		if !ok {
			return nil, fmt.Errorf("sweep %q is not name=v1,v2", axis)
		}
		set, ok := setters[name]
		if !ok {
			return nil, fmt.Errorf("sweep %q: unknown parameter %q", axis, name)
		}
		spec := erosion.SweepSpec{Name: name, Set: set}
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("sweep %q: %w", axis, err)
			}
			spec.Values = append(spec.Values, v)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

var setters = map[string]func(*erosion.Params, float64){
	"pipe_cross_section": func(p *erosion.Params, v float64) { p.PipeCrossSection = v },
	"gravity":            func(p *erosion.Params, v float64) { p.Gravity = v },
	"sediment_transport": func(p *erosion.Params, v float64) { p.SedimentTransport = v },
	"dissolving":         func(p *erosion.Params, v float64) { p.Dissolving = v },
	"deposition":         func(p *erosion.Params, v float64) { p.Deposition = v },
	"evaporation":        func(p *erosion.Params, v float64) { p.Evaporation = v },
	"min_alpha":          func(p *erosion.Params, v float64) { p.MinAlpha = v },
}
