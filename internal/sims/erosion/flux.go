package erosion

import "math"

// flux updates every cell's outflow toward its four neighbours. A cell only
// writes its own flux and reads its own previous flux, so rows are
// independent.
func (t *tick) flux(y0, y1 int) {
	g := t.g
	w, h := g.w, g.h
	terrain := g.terrain.Values()
	d1 := g.water1.Values()
	fl := g.fluxL.Values()
	ft := g.fluxT.Values()
	fr := g.fluxR.Values()
	fb := g.fluxB.Values()
	coef := t.dt * t.p.PipeCrossSection * t.p.Gravity / t.p.LengthPipe

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			self := terrain[i] + d1[i]
			var left, top, right, bottom float64
			if x > 0 {
				left = outflow(fl[i], coef, t.head(self, i-1))
			}
			if x < w-1 {
				right = outflow(fr[i], coef, t.head(self, i+1))
			}
			if y < h-1 {
				top = outflow(ft[i], coef, t.head(self, i+w))
			}
			if y > 0 {
				bottom = outflow(fb[i], coef, t.head(self, i-w))
			}
			k := outflowScale(d1[i], left+top+right+bottom, t.dt, t.p.LengthPipe)
			fl[i] = k * left
			ft[i] = k * top
			fr[i] = k * right
			fb[i] = k * bottom
		}
	}
}

// head returns the height difference driving flow from a cell whose surface
// is at self toward neighbour n.
func (t *tick) head(self float64, n int) float64 {
	b := t.g.terrain.Values()[n]
	if t.f.Head == HeadReference {
		return self - b - b
	}
	return self - (b + t.g.water1.Values()[n])
}

// outflow accelerates the previous flux by the head difference and clamps the
// result to be non-negative. NaN and +Inf collapse to zero so the scale
// factor never multiplies an infinite flux.
func outflow(prior, coef, dh float64) float64 {
	v := prior + coef*dh
	if !(v > 0) || math.IsInf(v, 1) {
		return 0
	}
	return v
}

// outflowScale returns the factor k in [0,1] that keeps a cell from emitting
// more water in dt than it holds.
func outflowScale(depth, total, dt, lengthPipe float64) float64 {
	if !(total > 0) || !(dt > 0) {
		return 1
	}
	k := depth * lengthPipe / (total * dt)
	switch {
	case math.IsNaN(k):
		return 0
	case k > 1:
		return 1
	case k < 0:
		return 0
	}
	return k
}
