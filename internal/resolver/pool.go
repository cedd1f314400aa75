package resolver

import "sync"

// FanOut runs fn once per item in items, capped at maxConcurrent
// goroutines in flight at a time, and collects the results in input
// order. Checkers use this to resolve a nameserver's glue addresses, probe
// DKIM selectors, or any other per-item lookup that must not open
// an unbounded number of sockets at once.
func FanOut[T, R any](items []T, maxConcurrent int, fn func(T) R) []R {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]R, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrent)

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = fn(item)
		}(i, item)
	}

	wg.Wait()
	return results
}
