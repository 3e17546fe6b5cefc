package security

import (
	"sync"
	"time"
)

const cleanupInterval = 30 * time.Minute

// RateLimiter tracks per-identity attempt timestamps in a sliding window
// plus a violation counter that outlives the window. All state is
// in-memory and process-lifetime; a restart forgets everything.
type RateLimiter struct {
	mu         sync.Mutex
	attempts   map[int64][]time.Time
	violations map[int64]int

	window time.Duration

	now         func() time.Time
	stopCleanup chan struct{}
}

func NewRateLimiter(window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts:    make(map[int64][]time.Time),
		violations:  make(map[int64]int),
		window:      window,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	close(rl.stopCleanup)
}

// RecordAttempt appends the current time to the identity's window.
func (rl *RateLimiter) RecordAttempt(id int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.attempts[id] = append(rl.attempts[id], rl.now())
}

// IsRateLimited prunes attempts older than the window, then reports
// whether the remaining count has reached maxAttempts.
func (rl *RateLimiter) IsRateLimited(id int64, maxAttempts int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.pruneLocked(id)
	return len(rl.attempts[id]) >= maxAttempts
}

// RetryAfter is how long until the oldest attempt still inside the
// window falls out of it. Zero when the window is empty.
func (rl *RateLimiter) RetryAfter(id int64) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.pruneLocked(id)
	ts := rl.attempts[id]
	if len(ts) == 0 {
		return 0
	}
	return rl.window - rl.now().Sub(ts[0])
}

// RegisterViolation bumps the identity's violation counter and reports
// the new count. Counter state is independent of the attempt window and
// persists until ResetViolations.
func (rl *RateLimiter) RegisterViolation(id int64) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.violations[id]++
	return rl.violations[id]
}

func (rl *RateLimiter) Violations(id int64) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.violations[id]
}

// ResetViolations forgives past violations; called after any successful
// gated action so an identity that eventually behaves is not banned for
// earlier mistakes.
func (rl *RateLimiter) ResetViolations(id int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.violations, id)
}

func (rl *RateLimiter) pruneLocked(id int64) {
	cutoff := rl.now().Add(-rl.window)
	ts := rl.attempts[id]
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(rl.attempts, id)
		return
	}
	rl.attempts[id] = kept
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup evicts identities whose windows emptied out and who carry no
// violations, so the maps stay bounded in a long-lived process.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.window)
	for id, ts := range rl.attempts {
		kept := ts[:0]
		for _, t := range ts {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(rl.attempts, id)
		} else {
			rl.attempts[id] = kept
		}
	}
	for id, n := range rl.violations {
		if n == 0 {
			delete(rl.violations, id)
		}
	}
}
