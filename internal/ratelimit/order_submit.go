package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harborworks/chandlery/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyOrderSubmitBuyer = "order:submit:buyer:%s"
	keyOrderSubmitLock  = "order:submit:lock:%s"

	orderSubmitLockTTL = 10 * time.Second
)

// OrderSubmitLimiter throttles order submissions per buyer. Disabled when
// ORDER_SUBMIT_RATE is unset; the quota guard still applies either way.
type OrderSubmitLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewOrderSubmitLimiter(cfg config.Config) (*OrderSubmitLimiter, error) {
	if cfg.OrderSubmitRate <= 0 {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("order submit rate limit requires REDIS_ADDR")
	}
	if cfg.OrderSubmitBurst <= 0 {
		return nil, errors.New("order submit burst must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &OrderSubmitLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.OrderSubmitRate,
		burst:   cfg.OrderSubmitBurst,
	}, nil
}

func (l *OrderSubmitLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowBuyer takes one submission token for the buyer. When the limiter
// is disabled every submission passes.
func (l *OrderSubmitLimiter) AllowBuyer(ctx context.Context, buyerID string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyOrderSubmitBuyer, strings.TrimSpace(buyerID)), l.rate, l.burst)
}

// TryLockBuyer serializes submissions for one buyer across instances.
func (l *OrderSubmitLimiter) TryLockBuyer(ctx context.Context, buyerID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	key := fmt.Sprintf(keyOrderSubmitLock, strings.TrimSpace(buyerID))
	return l.locker.TryLock(ctx, key, orderSubmitLockTTL)
}

func (l *OrderSubmitLimiter) ReleaseBuyer(ctx context.Context, buyerID, token string) error {
	if !l.Enabled() {
		return nil
	}
	key := fmt.Sprintf(keyOrderSubmitLock, strings.TrimSpace(buyerID))
	return l.locker.Release(ctx, key, token)
}
