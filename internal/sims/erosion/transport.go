package erosion

// transport pulls staged sediment along the velocity field: each cell traces
// back by v*dt (in grid lengths), clamps the point into the grid and samples
// the staged layer there.
func (t *tick) transport(y0, y1 int) {
	g := t.g
	w := g.w
	sediment := g.sediment.Values()
	staged := g.sedimentStaged
	vx := g.velX.Values()
	vy := g.velY.Values()
	sx := t.dt * float64(g.w)
	sy := t.dt * float64(g.h)
	nearest := t.f.Transport == TransportNearest

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			px := float64(x) - vx[i]*sx
			py := float64(y) - vy[i]*sy
			if nearest {
				sediment[i] = staged.Nearest(px, py)
			} else {
				sediment[i] = staged.Bilinear(px, py)
			}
		}
	}
}
