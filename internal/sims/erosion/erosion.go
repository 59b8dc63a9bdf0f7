package erosion

import "math"

// erode exchanges material between terrain and suspended sediment. It reads
// the committed terrain and writes the back-buffer, so neighbouring rows never
// observe a height changed in the same stage.
func (t *tick) erode(y0, y1 int) {
	g := t.g
	w := g.w
	terrain := g.terrain.Values()
	next := g.terrainNext.Values()
	sediment := g.sediment.Values()
	staged := g.sedimentStaged.Values()
	vx := g.velX.Values()
	vy := g.velY.Values()

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			speed := math.Hypot(vx[i], vy[i])
			capacity := t.p.SedimentTransport * math.Sin(t.slope(x, y)) * speed
			next[i], staged[i] = exchange(terrain[i], sediment[i], capacity, t.p.Dissolving*t.dt, t.p.Deposition*t.dt)
		}
	}
}

// exchange returns the new terrain height and sediment for a cell holding b
// ground and s sediment under the given capacity. Every unit leaving one
// side arrives on the other.
func exchange(b, s, capacity, maxDissolve, maxDeposit float64) (float64, float64) {
	if capacity > s {
		d := math.Min(maxDissolve, capacity-s)
		d = math.Min(d, math.Max(b, 0))
		if !(d > 0) {
			return b, s
		}
		return b - d, s + d
	}
	d := math.Min(maxDeposit, s-capacity)
	d = math.Min(d, s)
	if !(d > 0) {
		return b, s
	}
	return b + d, s - d
}

// slope returns the angle factor alpha derived from the terrain normal at
// (x, y). Border cells use a flat normal.
func (t *tick) slope(x, y int) float64 {
	g := t.g
	w, h := g.w, g.h
	var ny float64
	if x > 0 && x < w-1 && y > 0 && y < h-1 {
		b := g.terrain.Values()
		i := y*w + x
		nx := 2 * (b[i+1] - b[i-1])
		nz := 2 * (b[i-w] - b[i+w])
		ny = nz / math.Sqrt(nx*nx+nz*nz+16)
	}
	alpha := math.Cos(ny)
	if t.p.MinAlpha > 0 && alpha < t.p.MinAlpha {
		alpha = t.p.MinAlpha
	}
	return alpha
}
