package security

import (
	"testing"
	"time"
)

// newTestLimiter returns a limiter with a controllable clock. Advancing
// the returned *time.Time moves the limiter's notion of now.
func newTestLimiter(t *testing.T, window time.Duration) (*RateLimiter, *time.Time) {
	t.Helper()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(window)
	t.Cleanup(rl.Stop)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestIsRateLimited_SlidingWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 15*time.Minute)
	const id = int64(42)

	for i := 0; i < 5; i++ {
		rl.RecordAttempt(id)
		*now = now.Add(time.Second)
	}

	if !rl.IsRateLimited(id, 5) {
		t.Fatal("5 attempts inside the window should be rate limited")
	}

	// Once the window elapses the old attempts are pruned.
	*now = now.Add(15 * time.Minute)
	if rl.IsRateLimited(id, 5) {
		t.Fatal("attempts outside the window should not count")
	}
}

func TestIsRateLimited_BelowThreshold(t *testing.T) {
	rl, _ := newTestLimiter(t, 15*time.Minute)
	const id = int64(7)

	for i := 0; i < 4; i++ {
		rl.RecordAttempt(id)
	}
	if rl.IsRateLimited(id, 5) {
		t.Fatal("4 of 5 attempts should not be rate limited")
	}
}

func TestRetryAfter(t *testing.T) {
	rl, now := newTestLimiter(t, 15*time.Minute)
	const id = int64(1)

	rl.RecordAttempt(id)
	*now = now.Add(5 * time.Minute)

	got := rl.RetryAfter(id)
	if got != 10*time.Minute {
		t.Errorf("RetryAfter = %v, want 10m", got)
	}

	if rl.RetryAfter(99) != 0 {
		t.Error("RetryAfter for unknown identity should be 0")
	}
}

func TestViolations_AccumulateAndReset(t *testing.T) {
	rl, _ := newTestLimiter(t, time.Minute)
	const id = int64(3)

	if n := rl.RegisterViolation(id); n != 1 {
		t.Fatalf("first violation = %d, want 1", n)
	}
	if n := rl.RegisterViolation(id); n != 2 {
		t.Fatalf("second violation = %d, want 2", n)
	}

	rl.ResetViolations(id)
	if n := rl.Violations(id); n != 0 {
		t.Fatalf("after reset violations = %d, want 0", n)
	}
}

func TestViolations_SurviveWindowPruning(t *testing.T) {
	rl, now := newTestLimiter(t, time.Minute)
	const id = int64(8)

	rl.RecordAttempt(id)
	rl.RegisterViolation(id)

	*now = now.Add(time.Hour)
	if rl.IsRateLimited(id, 1) {
		t.Fatal("window should have emptied")
	}
	if rl.Violations(id) != 1 {
		t.Fatal("violations are independent of the attempt window")
	}
}

func TestCleanup_EvictsIdleIdentities(t *testing.T) {
	rl, now := newTestLimiter(t, time.Minute)

	rl.RecordAttempt(1)          // will go idle
	rl.RecordAttempt(2)          // idle window but has a violation
	rl.RegisterViolation(2)

	*now = now.Add(time.Hour)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.attempts[1]; ok {
		t.Error("identity 1 should have been evicted")
	}
	if _, ok := rl.attempts[2]; ok {
		t.Error("identity 2's empty window should have been evicted")
	}
	if rl.violations[2] != 1 {
		t.Error("identity 2's violation count must survive cleanup")
	}
}
