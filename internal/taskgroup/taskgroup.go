// Package taskgroup runs independent operations concurrently and hands their
// results back in input order once all of them have finished.
package taskgroup

import "sync"

// Result pairs an operation's value with its error.
type Result[R any] struct {
	Value R
	Err   error
}

// Run calls fn for every item and waits for all calls. At most concurrency
// calls run at once; concurrency < 1 starts one goroutine per item. Each call
// writes only its own slot, so results need no locking and keep input order.
func Run[T any, R any](items []T, concurrency int, fn func(int, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return nil
	}
	if concurrency < 1 || concurrency > len(items) {
		concurrency = len(items)
	}

	sem := make(chan struct{}, concurrency)
	results := make([]Result[R], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			v, err := fn(i, item)
			results[i] = Result[R]{Value: v, Err: err}
		}(i, item)
	}
	wg.Wait()
	return results
}
