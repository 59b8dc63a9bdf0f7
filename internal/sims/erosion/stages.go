package erosion

import "golang.org/x/sync/errgroup"

// tick carries the inputs shared by every stage of one step.
type tick struct {
	g        *Grid
	p        Params
	f        Features
	dt       float64
	sources  []WaterSource
	inflowOn bool
}

// stage processes rows [y0, y1). A stage must only write cells in its rows and
// only read layers no stage of the same kind writes.
type stage func(y0, y1 int)

// runStage executes fn over every row, fanned out across workers, and returns
// once every row has finished.
func runStage(rows, workers int, fn stage) {
	if workers < 2 || rows < 2 {
		fn(0, rows)
		return
	}
	if workers > rows {
		workers = rows
	}
	band := (rows + workers - 1) / workers
	var g errgroup.Group
	for y0 := 0; y0 < rows; y0 += band {
		y1 := min(y0+band, rows)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
