package executor

import (
	"sync"
)

// forkJoin splits [start, end) into up to nbWorkers contiguous chunks, runs
// work(lo, hi) on each chunk in its own goroutine and waits for all of them.
func forkJoin(start, end, nbWorkers int, work func(lo, hi int)) {
	nbIterations := end - start
	nbIterationsPerWorker := nbIterations / nbWorkers
	nbTasks := nbWorkers

	// more workers than iterations: one iteration per task
	if nbIterationsPerWorker < 1 {
		nbIterationsPerWorker = 1
		nbTasks = nbIterations
	}

	var wg sync.WaitGroup

	extraTasks := end - (start + nbTasks*nbIterationsPerWorker)
	extraTasksOffset := 0

	for i := 0; i < nbTasks; i++ {
		wg.Add(1)
		lo := start + i*nbIterationsPerWorker + extraTasksOffset
		hi := lo + nbIterationsPerWorker
		if extraTasks > 0 {
			hi++
			extraTasks--
			extraTasksOffset++
		}
		go func() {
			work(lo, hi)
			wg.Done()
		}()
	}

	wg.Wait()
}
