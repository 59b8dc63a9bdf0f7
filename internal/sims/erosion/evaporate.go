package erosion

// dryEpsilon is the depth below which water is treated as gone.
const dryEpsilon = 1e-4

// evaporate commits d2 scaled by the evaporation decay into the water layer.
func (t *tick) evaporate(y0, y1 int) {
	g := t.g
	w := g.w
	d2 := g.water2.Values()
	water := g.water.Values()
	decay := 1 - t.p.Evaporation*t.dt

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := d2[i] * decay
			if !(v >= dryEpsilon) {
				v = 0
			}
			water[i] = v
		}
	}
}
