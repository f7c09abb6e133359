package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// waitPoll is how often a blocked caller rechecks the bucket.
const waitPoll = 100 * time.Millisecond

// rateLimiter paces oracle calls with a token bucket. The bucket starts
// full and a background ticker returns one token per interval, so a quiet
// period buys back up to one minute's quota.
type rateLimiter struct {
	mu     sync.Mutex
	tokens int
	burst  int
	stop   chan struct{}
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	rl := &rateLimiter{
		tokens: perMinute,
		burst:  perMinute,
		stop:   make(chan struct{}),
	}
	go rl.refill(time.Minute / time.Duration(perMinute))
	return rl
}

// wait takes a token, blocking until one frees up or ctx is done.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(waitPoll)
	defer ticker.Stop()

	for {
		if rl.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limit wait interrupted: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (rl *rateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.tokens == 0 {
		return false
	}
	rl.tokens--
	return true
}

func (rl *rateLimiter) refill(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if rl.tokens < rl.burst {
				rl.tokens++
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the refill goroutine. Pending wait calls keep draining
// whatever tokens remain.
func (rl *rateLimiter) Close() {
	close(rl.stop)
}
