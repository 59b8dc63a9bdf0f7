package erosion

// water integrates net flux into d2. Inflow from each neighbour is that
// neighbour's flux component pointing back at this cell.
func (t *tick) water(y0, y1 int) {
	g := t.g
	w, h := g.w, g.h
	d1 := g.water1.Values()
	d2 := g.water2.Values()
	fl := g.fluxL.Values()
	ft := g.fluxT.Values()
	fr := g.fluxR.Values()
	fb := g.fluxB.Values()

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			var in float64
			if x < w-1 {
				in += fl[i+1]
			}
			if x > 0 {
				in += fr[i-1]
			}
			if y < h-1 {
				in += fb[i+w]
			}
			if y > 0 {
				in += ft[i-w]
			}
			out := fl[i] + ft[i] + fr[i] + fb[i]
			v := d1[i] + t.dt*(in-out)/t.p.LengthPipe
			if !(v > 0) {
				v = 0
			}
			d2[i] = v
		}
	}
}
