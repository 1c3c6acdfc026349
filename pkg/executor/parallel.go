package executor

import (
	"context"
	"sync"

	"github.com/devicelab-dev/pom-runner/pkg/core"
)

// workItem represents a test and its index in the selected test list.
type workItem struct {
	test  Test
	index int
}

// runQueue executes tests using a work queue pattern. All workers pull
// from the same queue until it is drained; results keep the input order.
func (r *Runner) runQueue(ctx context.Context, tests []Test) []core.TestResult {
	results := make([]core.TestResult, len(tests))
	if len(tests) == 0 {
		return results
	}

	workers := r.config.Workers
	if workers > len(tests) {
		workers = len(tests)
	}

	workQueue := make(chan workItem, len(tests))
	for i, tc := range tests {
		workQueue <- workItem{test: tc, index: i}
	}
	close(workQueue)

	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for item := range workQueue {
				result := r.executeTest(ctx, worker, item.index, item.test)

				resultsMu.Lock()
				results[item.index] = result
				resultsMu.Unlock()
			}
		}(w)
	}

	wg.Wait()
	return results
}
