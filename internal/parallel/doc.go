// Package parallel runs CPU filter passes across a fixed set of goroutines.
//
// The fallback renderer splits each blur pass into horizontal row bands and
// hands them to a WorkerPool:
//
//	pool := parallel.NewWorkerPool(0)
//	defer pool.Close()
//	pool.ForBands(height, func(y0, y1 int) { blurRows(y0, y1) })
package parallel
