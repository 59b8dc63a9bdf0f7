package erosion

// velocity derives (vx, vy) from the flux imbalance across each axis.
// Positive vx points to x+1, positive vy to y+1. Dry cells get zero velocity.
func (t *tick) velocity(y0, y1 int) {
	g := t.g
	w, h := g.w, g.h
	d1 := g.water1.Values()
	d2 := g.water2.Values()
	fl := g.fluxL.Values()
	ft := g.fluxT.Values()
	fr := g.fluxR.Values()
	fb := g.fluxB.Values()
	vx := g.velX.Values()
	vy := g.velY.Values()

	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if (d1[i]+d2[i])/2 == 0 {
				vx[i] = 0
				vy[i] = 0
				continue
			}
			var inL, inR, inB, inT float64
			if x > 0 {
				inL = fr[i-1]
			}
			if x < w-1 {
				inR = fl[i+1]
			}
			if y > 0 {
				inB = ft[i-w]
			}
			if y < h-1 {
				inT = fb[i+w]
			}
			vx[i] = (inL - fl[i] + fr[i] - inR) / 2
			vy[i] = (inB - fb[i] + ft[i] - inT) / 2
		}
	}
}
