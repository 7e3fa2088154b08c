// Package parallel splits index ranges across workers. Every loop handed to
// it must be safe under any interleaving of its chunks; field arithmetic is
// exact so chunked reductions produce the same result as a sequential run,
// which keeps parallelism a pure optimization.
package parallel

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var numWorkers atomic.Int64

func init() {
	numWorkers.Store(int64(runtime.NumCPU()))
}

// SetNumWorkers bounds the number of goroutines Execute may use. Any value
// below 2 makes Execute run its work inline, sequentially.
func SetNumWorkers(n int) {
	if n < 1 {
		n = 1
	}
	numWorkers.Store(int64(n))
}

// NumWorkers returns the current worker bound.
func NumWorkers() int {
	return int(numWorkers.Load())
}

// Execute processes work over [iStart, iEnd) split in contiguous chunks and
// waits for completion.
func Execute(iStart, iEnd int, work func(start, end int)) {
	n := NumWorkers()
	nbIterations := iEnd - iStart
	if n <= 1 || nbIterations <= 1 {
		if nbIterations > 0 {
			work(iStart, iEnd)
		}
		return
	}

	nbTasks := n
	nbIterationsPerTask := nbIterations / nbTasks
	if nbIterationsPerTask < 1 {
		nbIterationsPerTask = 1
		nbTasks = nbIterations
	}
	extra := nbIterations - nbTasks*nbIterationsPerTask

	var g errgroup.Group
	g.SetLimit(nbTasks)
	start := iStart
	for i := 0; i < nbTasks; i++ {
		end := start + nbIterationsPerTask
		if extra > 0 {
			end++
			extra--
		}
		chunkStart, chunkEnd := start, end
		g.Go(func() error {
			work(chunkStart, chunkEnd)
			return nil
		})
		start = end
	}
	_ = g.Wait()
}
