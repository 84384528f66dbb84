package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// CheckoutRateLimit is a fixed-window limiter for checkout routes, keyed by
// user id when authenticated and client IP otherwise.
func (r *RateLimiter) CheckoutRateLimit(max int, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		userAgent := e.Request.Header.Get("User-Agent")
		if r.isSuspiciousUserAgent(userAgent) {
			return apis.NewForbiddenError("Access denied", nil)
		}

		identifier := e.RealIP()
		if e.Auth != nil {
			identifier = fmt.Sprintf("user:%s", e.Auth.Id)
		}

		ctx := e.Request.Context()
		key := fmt.Sprintf("ratelimit:checkout:%s", identifier)

		count, err := r.redis.Incr(ctx, key).Result()
		if err != nil {
			// Fail open: a limiter outage must not block sales.
			return e.Next()
		}
		if count == 1 {
			r.redis.Expire(ctx, key, window)
		}

		if count > int64(max) {
			return apis.NewApiError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		}

		return e.Next()
	}
}

func (r *RateLimiter) isSuspiciousUserAgent(userAgent string) bool {
	if userAgent == "" {
		return true
	}

	suspicious := []string{"bot", "crawler", "spider", "scraper", "curl", "wget", "python-requests"}
	lowered := strings.ToLower(userAgent)
	for _, pattern := range suspicious {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
