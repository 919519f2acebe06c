package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// FetchRateLimiter applies a per-caller fixed window to the snapshot
// feed, the endpoint polling engines hammer. A limited caller gets a
// 429 with Retry-After, the signal that sends its poller into
// cooldown. When redis is unreachable the limiter fails open; polling
// degrades to unmetered rather than broken.
type FetchRateLimiter struct {
	redis    *persistence.Redis
	logger   *zap.Logger
	requests int
	window   time.Duration
}

// NewFetchRateLimiter constructs the limiter.
func NewFetchRateLimiter(redis *persistence.Redis, logger *zap.Logger, requests int, window time.Duration) *FetchRateLimiter {
	return &FetchRateLimiter{redis: redis, logger: logger, requests: requests, window: window}
}

// Handle enforces the window for the route it guards.
func (l *FetchRateLimiter) Handle(c *fiber.Ctx) error {
	if l.redis == nil || l.redis.Client == nil || l.requests <= 0 {
		return c.Next()
	}

	caller := c.IP()
	if principal, ok := auth.PrincipalFromContext(c); ok {
		caller = principal.User.ID
	}
	key := "ratelimit:fetch:" + caller

	ctx := c.UserContext()
	count, err := l.redis.Client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable; allowing request", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		if err := l.redis.Client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("rate limiter expire failed", zap.Error(err))
		}
	}

	if count > int64(l.requests) {
		ttl, err := l.redis.Client.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		c.Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
		return apperrors.NewTooManyRequests("snapshot feed poll limit exceeded", map[string]any{
			"retry_after_seconds": int(ttl.Seconds()),
		})
	}
	return c.Next()
}
