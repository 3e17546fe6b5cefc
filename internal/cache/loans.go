// Package cache holds the Redis-backed view cache for the active loans
// list. A cache failure is never fatal: misses and write errors are
// logged and the caller falls back to the store.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

const activeLoansKey = "cache:active_loans"

type LoanViews struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLoanViews(addr string, ttl time.Duration) *LoanViews {
	return &LoanViews{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (c *LoanViews) GetActive(ctx context.Context) ([]domain.LoanView, bool) {
	data, err := c.client.Get(ctx, activeLoansKey).Result()
	if err != nil {
		return nil, false
	}
	var views []domain.LoanView
	if err := json.Unmarshal([]byte(data), &views); err != nil {
		return nil, false
	}
	return views, true
}

func (c *LoanViews) SetActive(ctx context.Context, views []domain.LoanView) {
	data, err := json.Marshal(views)
	if err != nil {
		log.Printf("cache: marshal active loans: %v", err)
		return
	}
	if err := c.client.Set(ctx, activeLoansKey, data, c.ttl).Err(); err != nil {
		log.Printf("cache: write active loans: %v", err)
	}
}

// Invalidate drops the cached list; called after any loan mutation.
func (c *LoanViews) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, activeLoansKey).Err(); err != nil {
		log.Printf("cache: invalidate active loans: %v", err)
	}
}
