package api

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterPool manages per-model token bucket limiters. Limiters are
// keyed by baseURL:model so two configs pointing at the same endpoint share
// a budget.
type RateLimiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rates    map[string]int
}

// NewRateLimiterPool creates an empty pool.
func NewRateLimiterPool() *RateLimiterPool {
	return &RateLimiterPool{
		limiters: make(map[string]*rate.Limiter),
		rates:    make(map[string]int),
	}
}

// Wait blocks until the limiter for modelID allows the next request, creating
// the limiter on first use.
func (p *RateLimiterPool) Wait(ctx context.Context, modelID string, requestsPerMinute int) error {
	return p.getOrCreate(modelID, requestsPerMinute).Wait(ctx)
}

func (p *RateLimiterPool) getOrCreate(modelID string, requestsPerMinute int) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, ok := p.limiters[modelID]; ok {
		if prev := p.rates[modelID]; prev != requestsPerMinute {
			slog.Warn("rate limiter already exists with different rate, keeping existing",
				"model_id", modelID,
				"existing_rpm", prev,
				"requested_rpm", requestsPerMinute)
		}
		return limiter
	}

	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 5
	if burst < 5 {
		burst = 5
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	p.limiters[modelID] = limiter
	p.rates[modelID] = requestsPerMinute
	return limiter
}
