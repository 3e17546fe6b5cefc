package security

import (
	"context"
	"testing"
	"time"
)

type fakeBans struct {
	banned   map[int64]string
	banCalls int
}

func newFakeBans() *fakeBans { return &fakeBans{banned: make(map[int64]string)} }

func (f *fakeBans) IsBanned(_ context.Context, id int64) bool {
	_, ok := f.banned[id]
	return ok
}

func (f *fakeBans) Ban(_ context.Context, id int64, reason string) (bool, error) {
	f.banCalls++
	if _, ok := f.banned[id]; ok {
		return false, nil
	}
	f.banned[id] = reason
	return true, nil
}

type fakeAdmins map[int64]bool

func (f fakeAdmins) IsAdmin(_ context.Context, id int64) bool { return f[id] }

func TestGate_AllowsAndResetsViolations(t *testing.T) {
	rl, _ := newTestLimiter(t, 15*time.Minute)
	g := NewGuard(rl, newFakeBans(), fakeAdmins{}, 5)
	const id = int64(10)

	rl.RegisterViolation(id)

	ran := false
	v := g.Gate(context.Background(), id, func(context.Context) bool {
		ran = true
		return true
	})

	if v.Decision != Allowed {
		t.Fatalf("decision = %v, want Allowed", v.Decision)
	}
	if !ran {
		t.Fatal("action should have run")
	}
	if rl.Violations(id) != 0 {
		t.Error("success should forgive prior violations")
	}
}

func TestGate_FailedActionKeepsViolations(t *testing.T) {
	rl, _ := newTestLimiter(t, 15*time.Minute)
	g := NewGuard(rl, newFakeBans(), fakeAdmins{}, 5)
	const id = int64(11)

	rl.RegisterViolation(id)
	g.Gate(context.Background(), id, func(context.Context) bool { return false })

	if rl.Violations(id) != 1 {
		t.Error("a failed action must not reset violations")
	}
}

func TestGate_BannedShortCircuitsBeforeRecording(t *testing.T) {
	rl, _ := newTestLimiter(t, 15*time.Minute)
	bans := newFakeBans()
	bans.banned[20] = "test"
	g := NewGuard(rl, bans, fakeAdmins{}, 5)

	ran := false
	v := g.Gate(context.Background(), 20, func(context.Context) bool {
		ran = true
		return true
	})

	if v.Decision != DeniedBanned {
		t.Fatalf("decision = %v, want DeniedBanned", v.Decision)
	}
	if ran {
		t.Error("action must not run for a banned identity")
	}

	rl.mu.Lock()
	attempts := len(rl.attempts[20])
	rl.mu.Unlock()
	if attempts != 0 {
		t.Error("no attempt should be recorded for a banned identity")
	}
}

// Two rate-limit violations ban the identity; the next attempt is
// rejected at the ban check.
func TestGate_EscalatesToBan(t *testing.T) {
	rl, _ := newTestLimiter(t, 15*time.Minute)
	bans := newFakeBans()
	g := NewGuard(rl, bans, fakeAdmins{}, 2)
	const id = int64(30)

	ctx := context.Background()
	action := func(context.Context) bool { return false }

	// First attempt fits the window.
	if v := g.Gate(ctx, id, action); v.Decision != Allowed {
		t.Fatalf("first attempt: decision = %v, want Allowed", v.Decision)
	}

	// Second attempt hits the limit: violation 1, denied with retry info.
	v := g.Gate(ctx, id, action)
	if v.Decision != DeniedRateLimited || v.JustBanned {
		t.Fatalf("second attempt: verdict = %+v, want plain rate limit denial", v)
	}
	if v.Violations != 1 {
		t.Errorf("second attempt violations = %d, want 1", v.Violations)
	}
	if v.RetryAfter <= 0 || v.RetryAfter > 15*time.Minute {
		t.Errorf("RetryAfter = %v, want within the window", v.RetryAfter)
	}

	// Third attempt: violation 2 crosses the threshold and bans.
	v = g.Gate(ctx, id, action)
	if !v.JustBanned {
		t.Fatalf("third attempt: verdict = %+v, want JustBanned", v)
	}
	if reason := bans.banned[id]; reason != "Rate limit exceeded 2 times" {
		t.Errorf("ban reason = %q", reason)
	}

	// Fourth attempt is stopped at the ban check, no attempt recorded.
	before := attemptsCount(rl, id)
	if v := g.Gate(ctx, id, action); v.Decision != DeniedBanned {
		t.Fatalf("fourth attempt: decision = %v, want DeniedBanned", v.Decision)
	}
	if attemptsCount(rl, id) != before {
		t.Error("banned attempt must not be recorded")
	}
}

func TestGate_AdminExemptFromEscalation(t *testing.T) {
	rl, _ := newTestLimiter(t, 15*time.Minute)
	bans := newFakeBans()
	g := NewGuard(rl, bans, fakeAdmins{40: true}, 1)

	ctx := context.Background()
	action := func(context.Context) bool { return false }

	for i := 0; i < 5; i++ {
		v := g.Gate(ctx, 40, action)
		if v.Decision != DeniedRateLimited {
			t.Fatalf("attempt %d: decision = %v, want DeniedRateLimited", i, v.Decision)
		}
		if v.JustBanned {
			t.Fatal("admins must never be banned by escalation")
		}
	}

	if bans.banCalls != 0 {
		t.Error("Ban must not be called for admins")
	}
	if rl.Violations(40) != 0 {
		t.Error("admin violations must not accumulate")
	}
}

func attemptsCount(rl *RateLimiter, id int64) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.attempts[id])
}
