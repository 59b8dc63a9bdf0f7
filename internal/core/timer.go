package core

import "time"

// FixedStep helps run simulation updates at a steady ticks-per-second rate.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the duration of one tick.
func (f *FixedStep) Step() time.Duration { return f.step }

// DT returns the duration of one tick in seconds, the unit simulations expect.
func (f *FixedStep) DT() float64 { return f.step.Seconds() }

// Pending reports how many whole ticks have accumulated since the last call
// and consumes them. At most maxTicks are returned so a stalled host does not
// hand the simulation a burst it cannot keep up with.
func (f *FixedStep) Pending(maxTicks int) int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	n := int(f.accumulator / f.step)
	if n <= 0 {
		return 0
	}
	f.accumulator -= time.Duration(n) * f.step
	if maxTicks > 0 && n > maxTicks {
		n = maxTicks
	}
	return n
}

// ShouldStep reports whether the simulation should advance by one tick.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}
