package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"codMarket/pkg/logger"

	jsonres "codMarket/pkg/response"

	"github.com/labstack/echo/v4"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit throttles a route per user, or per client IP for anonymous
// callers. When the limiter errors the request is let through.
func RateLimit(limiter RateLimiter, scope string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}

			key := fmt.Sprintf("%s:ip:%s", scope, c.RealIP())
			if userID, ok := CurrentUserID(c); ok {
				key = fmt.Sprintf("%s:user:%d", scope, userID)
			}

			allowed, err := limiter.Allow(c.Request().Context(), key, limit, window)
			if err != nil {
				logger.Warn("Rate limiter unavailable", "scope", scope, "error", err)
				return next(c)
			}

			if !allowed {
				return c.JSON(http.StatusTooManyRequests, jsonres.Error(
					"TOO_MANY_REQUESTS", "Too many requests, try again later", nil,
				))
			}

			return next(c)
		}
	}
}
