package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/identity-systems/user-api/internal/core/domain"
)

const (
	defaultMaxAttempts = 5
	defaultCooldown    = time.Minute
)

// LoginLimiter throttles failed logins per account name, backed by a Redis
// counter with a cooldown TTL. Key format: login_attempts:<name>
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	cooldown    time.Duration
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
// Non-positive maxAttempts or cooldown fall back to defaults.
func NewLoginLimiter(client *redis.Client, maxAttempts int64, cooldown time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

func (l *LoginLimiter) key(name string) string {
	return "login_attempts:" + name
}

// Check returns domain.ErrTooManyAttempts while the account is in cooldown.
func (l *LoginLimiter) Check(ctx context.Context, name string) error {
	count, err := l.client.Get(ctx, l.key(name)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("login limiter check: %w", err)
	}
	if count >= l.maxAttempts {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts a failed attempt. The cooldown TTL starts with the
// first failure, so the counter clears itself.
func (l *LoginLimiter) RecordFailure(ctx context.Context, name string) error {
	count, err := l.client.Incr(ctx, l.key(name)).Result()
	if err != nil {
		return fmt.Errorf("login limiter incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, l.key(name), l.cooldown).Err(); err != nil {
			return fmt.Errorf("login limiter expire: %w", err)
		}
	}
	if count >= l.maxAttempts {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, name string) error {
	if err := l.client.Del(ctx, l.key(name)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}
