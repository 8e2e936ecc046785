package storypdf

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/alnah/go-storypdf/internal/metrics"
)

// Page concurrency sizing constants.
const (
	// MinConcurrency ensures at least one page can render.
	MinConcurrency = 1

	// MaxConcurrency caps concurrent pages to limit browser memory.
	MaxConcurrency = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ResolveConcurrency determines the page concurrency ceiling.
// Priority: explicit value > GOMAXPROCS-based calculation.
func ResolveConcurrency(n int) int {
	if n > 0 {
		return n
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n = runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinConcurrency {
		return MinConcurrency
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}

// pageLimiter bounds the number of pages rendering at once.
// Waiting for a slot observes the caller's context.
type pageLimiter struct {
	sem     *semaphore.Weighted
	size    int
	backend string
}

func newPageLimiter(size int, backend string) *pageLimiter {
	return &pageLimiter{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    size,
		backend: backend,
	}
}

// acquire blocks until a slot is free and returns its release function.
func (l *pageLimiter) acquire(ctx context.Context) (release func(), err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	gauge := metrics.ActivePages.WithLabelValues(l.backend)
	gauge.Inc()
	return func() {
		gauge.Dec()
		l.sem.Release(1)
	}, nil
}
