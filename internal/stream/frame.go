package stream

import (
	"hydro-erosion/internal/sims/erosion"
)

// Frame is the snapshot sent to clients after a tick. Layers are row-major
// and rounded to float32 to halve the payload.
type Frame struct {
	Type     string        `json:"type"`
	Tick     int           `json:"tick"`
	Elapsed  float64       `json:"elapsed"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Terrain  []float32     `json:"terrain"`
	Water    []float32     `json:"water"`
	Sediment []float32     `json:"sediment"`
	Sources  []Source      `json:"sources"`
	Stats    erosion.Stats `json:"stats"`
}

// Source is the wire form of a water source.
type Source struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Radius   int     `json:"radius"`
	Strength float64 `json:"strength"`
	TTL      float64 `json:"ttl,omitempty"`
	Age      float64 `json:"age,omitempty"`
}

// NewFrame captures sim and the sources used for its last tick.
func NewFrame(sim *erosion.Simulation, sources []erosion.WaterSource) Frame {
	g := sim.Grid()
	f := Frame{
		Type:     "frame",
		Tick:     sim.Ticks(),
		Elapsed:  sim.Elapsed(),
		Width:    g.Width(),
		Height:   g.Height(),
		Terrain:  toFloat32(g.Terrain().Values()),
		Water:    toFloat32(g.WaterDepth().Values()),
		Sediment: toFloat32(g.Sediment().Values()),
		Sources:  make([]Source, len(sources)),
		Stats:    erosion.Measure(g),
	}
	for i, s := range sources {
		f.Sources[i] = Source{X: s.X, Y: s.Y, Radius: s.Radius, Strength: s.Strength, TTL: s.TTL, Age: s.Age}
	}
	return f
}

func toFloat32(src []float64) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}
