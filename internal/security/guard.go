package security

import (
	"context"
	"fmt"
	"log"
	"time"
)

// banThreshold is how many rate-limit violations an identity gets before
// it is banned outright.
const banThreshold = 2

type BanStore interface {
	IsBanned(ctx context.Context, tgID int64) bool
	Ban(ctx context.Context, tgID int64, reason string) (bool, error)
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, tgID int64) bool
}

type Decision int

const (
	Allowed Decision = iota
	DeniedBanned
	DeniedRateLimited
)

// Verdict is what a gated action resolves to. For DeniedRateLimited,
// RetryAfter says when the window frees up, Violations is the running
// violation count and JustBanned whether this denial escalated to a ban.
type Verdict struct {
	Decision   Decision
	RetryAfter time.Duration
	Violations int
	JustBanned bool
}

// Guard runs the gated-action pipeline: ban check, attempt recording,
// rate-limit check with escalation, then the action itself. Checks are an
// ordered list; the first one to produce a verdict short-circuits.
type Guard struct {
	limiter *RateLimiter
	bans    BanStore
	admins  AdminChecker

	maxAttempts int
	checks      []func(ctx context.Context, id int64) *Verdict
}

func NewGuard(limiter *RateLimiter, bans BanStore, admins AdminChecker, maxAttempts int) *Guard {
	g := &Guard{
		limiter:     limiter,
		bans:        bans,
		admins:      admins,
		maxAttempts: maxAttempts,
	}
	g.checks = []func(ctx context.Context, id int64) *Verdict{
		g.checkBanned,
		g.recordAttempt,
		g.checkRateLimit,
	}
	return g
}

// Gate applies every check in order and, if all pass, invokes the
// action. An action returning true counts as success and forgives the
// identity's accumulated violations.
func (g *Guard) Gate(ctx context.Context, id int64, action func(ctx context.Context) bool) Verdict {
	for _, check := range g.checks {
		if v := check(ctx, id); v != nil {
			return *v
		}
	}
	if action(ctx) {
		g.limiter.ResetViolations(id)
	}
	return Verdict{Decision: Allowed}
}

// checkBanned rejects banned identities before anything else; no attempt
// is recorded for them.
func (g *Guard) checkBanned(ctx context.Context, id int64) *Verdict {
	if g.bans.IsBanned(ctx, id) {
		return &Verdict{Decision: DeniedBanned}
	}
	return nil
}

func (g *Guard) recordAttempt(_ context.Context, id int64) *Verdict {
	g.limiter.RecordAttempt(id)
	return nil
}

func (g *Guard) checkRateLimit(ctx context.Context, id int64) *Verdict {
	if !g.limiter.IsRateLimited(id, g.maxAttempts) {
		return nil
	}

	banned, violations := g.registerViolationAndMaybeBan(ctx, id)
	if banned {
		log.Printf("guard: banned %d after %d rate limit violations", id, violations)
		return &Verdict{Decision: DeniedRateLimited, Violations: violations, JustBanned: true}
	}

	log.Printf("guard: rate limit exceeded for %d (violations %d)", id, violations)
	return &Verdict{
		Decision:   DeniedRateLimited,
		RetryAfter: g.limiter.RetryAfter(id),
		Violations: violations,
	}
}

// registerViolationAndMaybeBan is the escalation path. Admins are exempt
// and do not accumulate violations.
func (g *Guard) registerViolationAndMaybeBan(ctx context.Context, id int64) (bool, int) {
	if g.admins.IsAdmin(ctx, id) {
		return false, 0
	}

	n := g.limiter.RegisterViolation(id)
	if n < banThreshold {
		return false, n
	}

	reason := fmt.Sprintf("Rate limit exceeded %d times", n)
	if _, err := g.bans.Ban(ctx, id, reason); err != nil {
		log.Printf("guard: ban %d failed: %v", id, err)
		return false, n
	}
	return true, n
}
