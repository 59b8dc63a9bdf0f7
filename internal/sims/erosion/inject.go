package erosion

// inject writes d1 = d + dt*strength for every source covering the cell.
func (t *tick) inject(y0, y1 int) {
	w := t.g.w
	water := t.g.water.Values()
	d1 := t.g.water1.Values()
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := water[i]
			if t.inflowOn {
				for _, src := range t.sources {
					if src.Covers(x, y) {
						v += t.dt * src.Strength
					}
				}
			}
			if !(v > 0) {
				v = 0
			}
			d1[i] = v
		}
	}
}

// activeSources filters out the sources that must not inject this tick.
func activeSources(sources []WaterSource, f Features) []WaterSource {
	if !f.SourceTTL {
		return sources
	}
	out := sources[:0:0]
	for _, src := range sources {
		if src.Expired() {
			continue
		}
		out = append(out, src)
	}
	return out
}
