package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"hydro-erosion/internal/core"
	"hydro-erosion/internal/render"
	"hydro-erosion/internal/sims/erosion"
	"hydro-erosion/internal/stream"
	"hydro-erosion/internal/terrain"
)

type kvList []string

func (l *kvList) String() string { return strings.Join(*l, ";") }

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

type options struct {
	size      int
	width     int
	height    int
	steps     int
	dt        float64
	seed      int64
	heightmap string
	workers   int
	rain      int
	telemetry bool
	logEvery  int
	png       string
	pngEvery  int
	serve     string
	tps       int
	sources   kvList
	overrides kvList
}

func main() {
	var o options
	flag.IntVar(&o.size, "size", 128, "grid width and height")
	flag.IntVar(&o.width, "w", 0, "grid width (overrides -size)")
	flag.IntVar(&o.height, "h", 0, "grid height (overrides -size)")
	flag.IntVar(&o.steps, "steps", 500, "ticks to simulate (0 runs until interrupted when serving)")
	flag.Float64Var(&o.dt, "dt", 0.02, "simulated seconds per tick")
	flag.Int64Var(&o.seed, "seed", 1337, "noise seed for the terrain")
	flag.StringVar(&o.heightmap, "heightmap", "", "PNG heightmap to load instead of noise")
	flag.IntVar(&o.workers, "workers", 1, "goroutines per stage")
	flag.IntVar(&o.rain, "rain", 0, "number of randomly scattered short-lived sources")
	flag.BoolVar(&o.telemetry, "telemetry", true, "collect per-tick totals")
	flag.IntVar(&o.logEvery, "log-every", 50, "log telemetry every N ticks (0 disables)")
	flag.StringVar(&o.png, "png", "", "write a PNG snapshot of the final state to this path")
	flag.IntVar(&o.pngEvery, "png-every", 0, "also write numbered snapshots every N ticks")
	flag.StringVar(&o.serve, "serve", "", "stream frames over websocket on this address, e.g. :8080")
	flag.IntVar(&o.tps, "tps", 30, "ticks per second when serving")
	flag.Var(&o.sources, "source", "water source x,y,radius,strength[,ttl] (repeatable)")
	flag.Var(&o.overrides, "set", "simulation option in key=value form (repeatable)")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatal(err)
	}
}

func run(o options) error {
	cfg, err := buildConfig(o)
	if err != nil {
		return err
	}
	sources := make([]erosion.WaterSource, 0, len(o.sources))
	for _, spec := range o.sources {
		src, err := parseSource(spec)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 && o.rain == 0 {
		sources = append(sources, erosion.WaterSource{
			X: cfg.Width / 2, Y: cfg.Height / 2,
			Radius: max(1, min(cfg.Width, cfg.Height)/16), Strength: 0.1,
		})
	}
	sources = append(sources, erosion.ScatterSources(core.NewRNG(cfg.Seed), cfg.Width, cfg.Height, erosion.ScatterOptions{
		Count:       o.rain,
		RadiusMin:   1,
		RadiusMax:   max(1, min(cfg.Width, cfg.Height)/24),
		StrengthMin: 0.02,
		StrengthMax: 0.1,
		TTL:         2,
	})...)

	manager := erosion.NewSourceManager(sources...)
	sess, err := erosion.NewSession("erosion", cfg, terrainFunc(o.heightmap), manager)
	if err != nil {
		return err
	}
	defer sess.Close()

	log.Printf("grid %dx%d, %d sources, dt=%g, workers=%d, head=%s, transport=%s",
		cfg.Width, cfg.Height, manager.Len(), o.dt, cfg.Workers, cfg.Features.Head, cfg.Features.Transport)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if o.serve != "" {
		err = serve(ctx, o, sess, manager)
	} else {
		err = runHeadless(ctx, o, sess)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	sim := sess.Simulation()
	logStats(sim)
	log.Printf("done: %d ticks, %.2fs simulated in %s", sim.Ticks(), sim.Elapsed(), time.Since(start).Round(time.Millisecond))

	if o.png != "" {
		if err := writeSnapshot(o.png, sess); err != nil {
			return err
		}
		log.Printf("wrote %s", o.png)
	}
	return nil
}

func buildConfig(o options) (erosion.Config, error) {
	opts := map[string]string{
		"size":      strconv.Itoa(o.size),
		"seed":      strconv.FormatInt(o.seed, 10),
		"workers":   strconv.Itoa(o.workers),
		"telemetry": strconv.FormatBool(o.telemetry),
	}
	if o.width > 0 {
		opts["w"] = strconv.Itoa(o.width)
	}
	if o.height > 0 {
		opts["h"] = strconv.Itoa(o.height)
	}
	for _, kv := range o.overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return erosion.Config{}, fmt.Errorf("override %q is not key=value", kv)
		}
		opts[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	cfg := erosion.FromMap(opts)
	return cfg, cfg.Validate()
}

// parseSource reads "x,y,radius,strength[,ttl]".
func parseSource(spec string) (erosion.WaterSource, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return erosion.WaterSource{}, fmt.Errorf("source %q: want x,y,radius,strength[,ttl]", spec)
	}
	var ints [3]int
	for i := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return erosion.WaterSource{}, fmt.Errorf("source %q: %w", spec, err)
		}
		ints[i] = v
	}
	strength, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return erosion.WaterSource{}, fmt.Errorf("source %q: %w", spec, err)
	}
	src := erosion.WaterSource{X: ints[0], Y: ints[1], Radius: ints[2], Strength: strength}
	if len(parts) == 5 {
		if src.TTL, err = strconv.ParseFloat(strings.TrimSpace(parts[4]), 64); err != nil {
			return erosion.WaterSource{}, fmt.Errorf("source %q: %w", spec, err)
		}
	}
	if err := src.Validate(); err != nil {
		return erosion.WaterSource{}, fmt.Errorf("source %q: %w", spec, err)
	}
	return src, nil
}

func terrainFunc(path string) erosion.TerrainFunc {
	if path == "" {
		return erosion.NoiseTerrain
	}
	return func(_ int64, w, h int) ([]float64, error) {
		return terrain.Load(path, w, h)
	}
}

func runHeadless(ctx context.Context, o options, sess *erosion.Session) error {
	for i := 0; i < o.steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := advance(o, sess); err != nil {
			return err
		}
	}
	return nil
}

// advance steps once and emits the periodic log line and snapshot.
func advance(o options, sess *erosion.Session) error {
	sess.Step(o.dt)
	sim := sess.Simulation()
	tick := sim.Ticks()
	if o.logEvery > 0 && tick%o.logEvery == 0 {
		logStats(sim)
	}
	if o.png != "" && o.pngEvery > 0 && tick%o.pngEvery == 0 {
		return writeSnapshot(numbered(o.png, tick), sess)
	}
	return nil
}

func serve(ctx context.Context, o options, sess *erosion.Session, manager *erosion.SourceManager) error {
	var paused atomic.Bool
	hub := stream.NewHub(func(msg stream.Message) {
		if msg.Type == stream.MsgPause {
			paused.Store(msg.Paused)
			return
		}
		if _, err := stream.ApplySourceMessage(manager, msg); err != nil {
			log.Println("stream:", err)
		}
	})
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: o.serve, Handler: mux}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Printf("streaming on ws://%s/ws", o.serve)
	defer func() {
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	clock := core.NewFixedStep(o.tps)
	ticker := time.NewTicker(clock.Step())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case <-ticker.C:
		}
		if paused.Load() {
			clock.Pending(0)
			continue
		}
		for n := clock.Pending(4); n > 0; n-- {
			if err := advance(o, sess); err != nil {
				return err
			}
		}
		sim := sess.Simulation()
		if err := hub.Broadcast(stream.NewFrame(sim, sess.ActiveSources())); err != nil {
			return err
		}
		if o.steps > 0 && sim.Ticks() >= o.steps {
			return nil
		}
	}
}

func logStats(sim *erosion.Simulation) {
	if !sim.Config().Features.Telemetry {
		return
	}
	st := sim.Stats()
	log.Printf("tick %d t=%.2fs water=%.4f wet=%d sediment=%.5f mass=%.4f maxSpeed=%.3f height=[%.4f, %.4f]",
		sim.Ticks(), sim.Elapsed(), st.Water, st.WetCells, st.Sediment, st.Mass(), st.MaxSpeed, st.MinHeight, st.MaxHeight)
}

func writeSnapshot(path string, sess *erosion.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	size := sess.Size()
	if err := render.WritePNG(f, sess.Cells(), sess.Palette(), size.W, size.H); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// numbered inserts the tick before the extension: out.png -> out_000100.png.
func numbered(path string, tick int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%06d%s", strings.TrimSuffix(path, ext), tick, ext)
}
