// internal/common/database/health.go
package database

import (
	"context"
	"sync"
	"time"
)

// Checker is a dependency that can report its own reachability.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency concurrently, each bounded by timeout,
// and returns the failures keyed by name.
func CheckAll(ctx context.Context, timeout time.Duration, checkers ...Checker) map[string]error {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures = make(map[string]error)
	)
	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := c.Ping(cctx); err != nil {
				mu.Lock()
				failures[c.Name()] = err
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return failures
}
