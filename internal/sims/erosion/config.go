package erosion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HeadMode selects how the flux solver measures the hydraulic head
// difference between a cell and its neighbour.
type HeadMode int

const (
	// HeadHydraulic compares terrain+water on both sides of the pipe.
	HeadHydraulic HeadMode = iota
	// HeadReference subtracts the neighbour's terrain height twice and ignores
	// its water.
	HeadReference
)

// TransportMode selects the sediment advection sampler.
type TransportMode int

const (
	// TransportBilinear interpolates the four cells around the traced point.
	TransportBilinear TransportMode = iota
	// TransportNearest reads the single closest cell.
	TransportNearest
)

func (m HeadMode) String() string {
	if m == HeadReference {
		return "reference"
	}
	return "hydraulic"
}

func (m TransportMode) String() string {
	if m == TransportNearest {
		return "nearest"
	}
	return "bilinear"
}

// ParseHeadMode converts a flag value into a HeadMode.
func ParseHeadMode(s string) (HeadMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hydraulic":
		return HeadHydraulic, nil
	case "reference":
		return HeadReference, nil
	}
	return HeadHydraulic, fmt.Errorf("%w: unknown head mode %q", ErrInvalidConfiguration, s)
}

// ParseTransportMode converts a flag value into a TransportMode.
func ParseTransportMode(s string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilinear":
		return TransportBilinear, nil
	case "nearest":
		return TransportNearest, nil
	}
	return TransportBilinear, fmt.Errorf("%w: unknown transport mode %q", ErrInvalidConfiguration, s)
}

// Params holds the physical tunables of the pipe model.
type Params struct {
	PipeCrossSection  float64
	Gravity           float64
	LengthPipe        float64
	SedimentTransport float64
	Dissolving        float64
	Deposition        float64
	Evaporation       float64
	// MinAlpha floors the slope factor when positive.
	MinAlpha float64
}

// Features toggles optional behaviour on top of the canonical model.
type Features struct {
	// Telemetry recomputes Stats after every tick.
	Telemetry bool
	// SourceTTL makes expired sources stop injecting water.
	SourceTTL bool
	// InjectionCutoff stops all injection once the simulated elapsed time
	// reaches it. Zero disables the cutoff.
	InjectionCutoff float64
	Head            HeadMode
	Transport       TransportMode
}

// Config controls the erosion simulation dimensions and tunables.
type Config struct {
	Width  int
	Height int

	Seed int64

	// Workers is the number of goroutines each stage fans out to. Values
	// below two run the single-threaded path.
	Workers int

	Params   Params
	Features Features
}

// DefaultParams returns the constants of the CPU reference engine.
func DefaultParams() Params {
	return Params{
		PipeCrossSection:  200,
		Gravity:           1,
		LengthPipe:        1,
		SedimentTransport: 2,
		Dissolving:        0.0005,
		Deposition:        0.005,
		Evaporation:       0.2,
		MinAlpha:          0,
	}
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:   128,
		Height:  128,
		Seed:    1337,
		Workers: 1,
		Params:  DefaultParams(),
		Features: Features{
			SourceTTL: true,
		},
	}
}

// Validate reports ErrInvalidConfiguration for unusable configurations.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: grid size %dx%d must be positive", ErrInvalidConfiguration, c.Width, c.Height)
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if !isFinite(c.Features.InjectionCutoff) || c.Features.InjectionCutoff < 0 {
		return fmt.Errorf("%w: injection cutoff %v", ErrInvalidConfiguration, c.Features.InjectionCutoff)
	}
	return nil
}

// Validate reports ErrInvalidConfiguration when any constant is non-finite,
// negative, or when the pipe length is not positive.
func (p Params) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"pipe_cross_section", p.PipeCrossSection},
		{"gravity", p.Gravity},
		{"length_pipe", p.LengthPipe},
		{"sediment_transport", p.SedimentTransport},
		{"dissolving", p.Dissolving},
		{"deposition", p.Deposition},
		{"evaporation", p.Evaporation},
		{"min_alpha", p.MinAlpha},
	}
	for _, n := range named {
		if !isFinite(n.value) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfiguration, n.name)
		}
		if n.value < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %v)", ErrInvalidConfiguration, n.name, n.value)
		}
	}
	if p.LengthPipe == 0 {
		return fmt.Errorf("%w: length_pipe must be positive", ErrInvalidConfiguration)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// "size" sets both dimensions; "w" and "h" override it per axis.
// Unparseable values keep their defaults; Validate catches the rest.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["size"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
			c.Height = parsed
		}
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}

	floats := map[string]*float64{
		"pipe_cross_section": &c.Params.PipeCrossSection,
		"gravity":            &c.Params.Gravity,
		"length_pipe":        &c.Params.LengthPipe,
		"sediment_transport": &c.Params.SedimentTransport,
		"dissolving":         &c.Params.Dissolving,
		"deposition":         &c.Params.Deposition,
		"evaporation":        &c.Params.Evaporation,
		"min_alpha":          &c.Params.MinAlpha,
		"injection_cutoff":   &c.Features.InjectionCutoff,
	}
	for key, dst := range floats {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = parsed
			}
		}
	}

	if v, ok := cfg["telemetry"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Features.Telemetry = parsed
		}
	}
	if v, ok := cfg["source_ttl"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Features.SourceTTL = parsed
		}
	}
	if v, ok := cfg["head"]; ok {
		if parsed, err := ParseHeadMode(v); err == nil {
			c.Features.Head = parsed
		}
	}
	if v, ok := cfg["transport"]; ok {
		if parsed, err := ParseTransportMode(v); err == nil {
			c.Features.Transport = parsed
		}
	}
	return c
}
