package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrAuthCacheUnavailable = errors.New("auth cache unavailable")

// AuthCache keeps short-lived auth state in Redis: login attempt counters for
// rate limiting and one-time password reset codes.
type AuthCache struct {
	rdb *redis.Client
}

func NewAuthCache(rdb *redis.Client) *AuthCache {
	return &AuthCache{
		rdb: rdb,
	}
}

func (c *AuthCache) Available() bool {
	return c != nil && c.rdb != nil
}

// IncrLoginAttempts bumps the per-email counter and returns the new value.
// The window TTL is set on the first attempt only.
func (c *AuthCache) IncrLoginAttempts(ctx context.Context, email string, window time.Duration) (int64, error) {
	if !c.Available() {
		return 0, ErrAuthCacheUnavailable
	}

	key := loginAttemptsKey(email)
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("rdb.Incr -> %w", err)
	}
	if count == 1 {
		if err = c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("rdb.Expire -> %w", err)
		}
	}

	return count, nil
}

func (c *AuthCache) ResetLoginAttempts(ctx context.Context, email string) error {
	if !c.Available() {
		return ErrAuthCacheUnavailable
	}

	if err := c.rdb.Del(ctx, loginAttemptsKey(email)).Err(); err != nil {
		return fmt.Errorf("rdb.Del -> %w", err)
	}

	return nil
}

func (c *AuthCache) StoreResetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	if !c.Available() {
		return ErrAuthCacheUnavailable
	}

	if err := c.rdb.Set(ctx, resetCodeKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("rdb.Set -> %w", err)
	}

	return nil
}

// GetResetCode returns "" when no code is pending for the email.
func (c *AuthCache) GetResetCode(ctx context.Context, email string) (string, error) {
	if !c.Available() {
		return "", ErrAuthCacheUnavailable
	}

	code, err := c.rdb.Get(ctx, resetCodeKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("rdb.Get -> %w", err)
	}

	return code, nil
}

func (c *AuthCache) DeleteResetCode(ctx context.Context, email string) error {
	if !c.Available() {
		return ErrAuthCacheUnavailable
	}

	if err := c.rdb.Del(ctx, resetCodeKey(email)).Err(); err != nil {
		return fmt.Errorf("rdb.Del -> %w", err)
	}

	return nil
}

func loginAttemptsKey(email string) string {
	return "auth:login_attempts:" + email
}

func resetCodeKey(email string) string {
	return "auth:reset_code:" + email
}
