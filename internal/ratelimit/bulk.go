package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/openorgs/orgd/internal/config"
)

const keyBulkOrg = "bulk:org:%s"

// BulkLimiter caps batch calls per organization. A nil limiter means
// rate limiting is disabled; every check then passes.
type BulkLimiter struct {
	enabled bool

	bucket *TokenBucket

	rate  float64
	burst int
}

func NewBulkLimiter(cfg config.Config) (*BulkLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.BulkRate <= 0 || limitCfg.BulkBurst <= 0 {
		return nil, errors.New("bulk rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &BulkLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    limitCfg.BulkRate,
		burst:   limitCfg.BulkBurst,
	}, nil
}

func (l *BulkLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *BulkLimiter) Allow(ctx context.Context, orgID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyBulkOrg, strings.TrimSpace(orgID)), l.rate, l.burst)
}
