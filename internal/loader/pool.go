package loader

import (
	"context"
	"sync"
)

// runPool runs fn(i) for i in [0, n) on up to workers goroutines. Jobs are
// handed out over an unbuffered channel, so nothing is queued beyond what
// the workers are processing. Once ctx is done no new job starts; runPool
// returns after in-flight jobs finish.
func runPool(ctx context.Context, workers, n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers = max(1, min(workers, n))

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fn(i)
			}
		}()
	}

feed:
	for i := range n {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}
