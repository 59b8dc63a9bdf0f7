package app

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Config holds the GUI host's command-line settings.
type Config struct {
	Sim       string
	Scale     int
	TPS       int
	TimeScale float64
	Seed      int64
	Size      int
	HUDWidth  int
	Overrides KVList
}

// NewConfig returns the defaults used by cmd/erosion.
func NewConfig() Config {
	return Config{
		Sim:       "erosion",
		Scale:     4,
		TPS:       60,
		TimeScale: 1,
		Seed:      1337,
		Size:      192,
		HUDWidth:  260,
	}
}

// Bind registers the config's flags on fs.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "screen pixels per cell")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Float64Var(&c.TimeScale, "timescale", c.TimeScale, "simulated seconds per wall-clock second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "terrain seed")
	fs.IntVar(&c.Size, "size", c.Size, "grid width and height")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "HUD panel width in pixels (0 hides it)")
	fs.Var(&c.Overrides, "set", "simulation option in key=value form (repeatable)")
}

// Options builds the factory option map. Explicit -set overrides win over the
// dedicated flags.
func (c Config) Options() (map[string]string, error) {
	opts := map[string]string{
		"size": strconv.Itoa(c.Size),
		"seed": strconv.FormatInt(c.Seed, 10),
	}
	for _, kv := range c.Overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("override %q is not key=value", kv)
		}
		opts[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return opts, nil
}

// DT returns the simulated seconds advanced per tick.
func (c Config) DT() float64 {
	if c.TPS <= 0 || !(c.TimeScale > 0) {
		return 0
	}
	return c.TimeScale / float64(c.TPS)
}

// KVList collects repeated key=value flags.
type KVList []string

func (l *KVList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

// Set appends one value.
func (l *KVList) Set(value string) error {
	*l = append(*l, value)
	return nil
}
