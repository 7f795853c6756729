package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxInFlight caps simultaneous outstanding generation calls.
	DefaultMaxInFlight = 100

	// DefaultRequestsPerSecond caps the rate at which calls are issued.
	DefaultRequestsPerSecond = 100
)

// Gate combines the two limiters every client holds around its generation
// calls: a semaphore bounding in-flight requests and a token-bucket limiter
// bounding the issue rate. One Gate is shared by all callers of a client and
// is the sole backpressure mechanism protecting the upstream backend.
type Gate struct {
	sem    *semaphore.Weighted
	limit  *rate.Limiter
	smooth time.Duration
}

// NewGate builds a Gate. Non-positive arguments fall back to the defaults.
func NewGate(maxInFlight int64, perSecond float64) *Gate {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	if perSecond <= 0 {
		perSecond = DefaultRequestsPerSecond
	}
	return &Gate{
		sem:   semaphore.NewWeighted(maxInFlight),
		limit: rate.NewLimiter(rate.Limit(perSecond), 1),
		// Small post-release delay to smooth bursts.
		smooth: time.Duration(float64(time.Second) / perSecond),
	}
}

// Acquire blocks until a slot and a rate token are available, or ctx ends.
// The returned release func must be called exactly once when the guarded
// call finishes; it sleeps briefly before freeing the slot to keep bursts
// from hammering the upstream API.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire request slot: %w", err)
	}
	if err := g.limit.Wait(ctx); err != nil {
		g.sem.Release(1)
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return func() {
		time.Sleep(g.smooth)
		g.sem.Release(1)
	}, nil
}
