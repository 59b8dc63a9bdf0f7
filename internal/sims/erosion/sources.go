package erosion

import (
	"fmt"
	"math"
	"sync"

	"hydro-erosion/internal/core"
)

// WaterSource adds Strength units of water depth per second to every cell
// within Radius of (X, Y). A positive TTL bounds the source's lifetime; Age
// is how long it has been active.
type WaterSource struct {
	X, Y     int
	Radius   int
	Strength float64
	TTL      float64
	Age      float64
}

// Covers reports whether cell (x, y) lies inside the source's disc.
func (s WaterSource) Covers(x, y int) bool {
	dx := x - s.X
	dy := y - s.Y
	return dx*dx+dy*dy <= s.Radius*s.Radius
}

// Expired reports whether the source has outlived its TTL.
func (s WaterSource) Expired() bool {
	return s.TTL > 0 && s.Age >= s.TTL
}

// Validate checks that the source has a radius of at least one cell and a
// finite, non-negative strength and TTL.
func (s WaterSource) Validate() error {
	switch {
	case s.Radius < 1:
		return fmt.Errorf("%w: source radius %d must be at least 1", ErrInvalidConfiguration, s.Radius)
	case !isFinite(s.Strength) || s.Strength < 0:
		return fmt.Errorf("%w: source strength %v", ErrInvalidConfiguration, s.Strength)
	case !isFinite(s.TTL) || s.TTL < 0:
		return fmt.Errorf("%w: source ttl %v", ErrInvalidConfiguration, s.TTL)
	}
	return nil
}

// WaterSourceProvider supplies the current set of water sources.
type WaterSourceProvider interface {
	Sources() []WaterSource
}

// ChangeNotifier lets a consumer learn when a provider's sources changed so it
// can refresh its snapshot on demand rather than every tick.
type ChangeNotifier interface {
	Subscribe(fn func()) (cancel func())
}

// StaticSources is a fixed provider.
type StaticSources []WaterSource

// Sources returns a copy of the fixed set.
func (s StaticSources) Sources() []WaterSource {
	return append([]WaterSource(nil), s...)
}

type managedSource struct {
	id  int
	src WaterSource
}

// SourceManager is a mutable, concurrency-safe provider that notifies
// subscribers whenever its set of sources changes.
type SourceManager struct {
	mu      sync.Mutex
	sources []managedSource
	nextID  int
	subs    map[int]func()
	nextSub int
}

// NewSourceManager returns a manager seeded with the given sources.
func NewSourceManager(initial ...WaterSource) *SourceManager {
	m := &SourceManager{subs: map[int]func(){}}
	for _, src := range initial {
		m.sources = append(m.sources, managedSource{id: m.nextID, src: src})
		m.nextID++
	}
	return m
}

// Sources returns a snapshot of the managed sources.
func (m *SourceManager) Sources() []WaterSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WaterSource, len(m.sources))
	for i, ms := range m.sources {
		out[i] = ms.src
	}
	return out
}

// Len returns the number of managed sources.
func (m *SourceManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}

// Subscribe registers fn to run after every change. The returned function
// removes the subscription.
func (m *SourceManager) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Add registers a source and returns its id.
func (m *SourceManager) Add(src WaterSource) int {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.sources = append(m.sources, managedSource{id: id, src: src})
	m.mu.Unlock()
	m.notify()
	return id
}

// Update replaces the source registered under id.
func (m *SourceManager) Update(id int, src WaterSource) bool {
	m.mu.Lock()
	found := false
	for i := range m.sources {
		if m.sources[i].id == id {
			m.sources[i].src = src
			found = true
			break
		}
	}
	m.mu.Unlock()
	if found {
		m.notify()
	}
	return found
}

// Remove drops the source registered under id.
func (m *SourceManager) Remove(id int) bool {
	m.mu.Lock()
	found := false
	for i := range m.sources {
		if m.sources[i].id == id {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			found = true
			break
		}
	}
	m.mu.Unlock()
	if found {
		m.notify()
	}
	return found
}

// RemoveNearest drops the source whose centre is closest to (x, y), provided
// (x, y) lies within its disc.
func (m *SourceManager) RemoveNearest(x, y int) bool {
	m.mu.Lock()
	best := -1
	bestDist := math.MaxInt
	for i, ms := range m.sources {
		if !ms.src.Covers(x, y) {
			continue
		}
		dx := x - ms.src.X
		dy := y - ms.src.Y
		if d := dx*dx + dy*dy; d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best >= 0 {
		m.sources = append(m.sources[:best], m.sources[best+1:]...)
	}
	m.mu.Unlock()
	if best >= 0 {
		m.notify()
	}
	return best >= 0
}

// Clear drops every source.
func (m *SourceManager) Clear() {
	m.mu.Lock()
	had := len(m.sources) > 0
	m.sources = m.sources[:0]
	m.mu.Unlock()
	if had {
		m.notify()
	}
}

// Advance ages every source by dt seconds and drops the ones whose TTL ran
// out. Subscribers are notified only when a source was dropped.
func (m *SourceManager) Advance(dt float64) {
	if !(dt > 0) {
		return
	}
	m.mu.Lock()
	kept := m.sources[:0]
	dropped := false
	for _, ms := range m.sources {
		ms.src.Age += dt
		if ms.src.Expired() {
			dropped = true
			continue
		}
		kept = append(kept, ms)
	}
	m.sources = kept
	m.mu.Unlock()
	if dropped {
		m.notify()
	}
}

func (m *SourceManager) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// ScatterOptions bounds randomly placed sources.
type ScatterOptions struct {
	Count       int
	RadiusMin   int
	RadiusMax   int
	StrengthMin float64
	StrengthMax float64
	TTL         float64
}

// ScatterSources places opts.Count sources uniformly over a w x h grid.
func ScatterSources(rng *core.RNG, w, h int, opts ScatterOptions) []WaterSource {
	if rng == nil || opts.Count <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	minR := opts.RadiusMin
	if minR < 1 {
		minR = 1
	}
	out := make([]WaterSource, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		out = append(out, WaterSource{
			X:        rng.IntN(w),
			Y:        rng.IntN(h),
			Radius:   rng.IntRange(minR, opts.RadiusMax),
			Strength: rng.FloatRange(opts.StrengthMin, opts.StrengthMax),
			TTL:      opts.TTL,
		})
	}
	return out
}
