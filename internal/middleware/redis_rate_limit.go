package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/cache"
	"github.com/YuriiKoshliak/contacts-api/internal/errors"
	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware creates a distributed fixed-window rate
// limiter using Redis, keyed by scope and client IP. It works across
// multiple instances.
func RedisRateLimitMiddleware(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			// No Redis configured: let the request through but say so
			logger.Log.Warn("Redis rate limiter unavailable, allowing request",
				zap.String("scope", scope),
			)
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s:%s", scope, clientIP)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		val, err := redisClient.GetInt(ctx, key)
		if err != nil && err.Error() != "redis: nil" {
			// On Redis error, reject the request rather than skip the limit
			logger.Log.Error("Rate limit check failed, rejecting request",
				zap.String("scope", scope),
				logger.WithIP(clientIP),
				zap.Error(err),
			)
			errors.ServiceUnavailable("service temporarily unavailable").Abort(c)
			return
		}

		if val >= int64(maxRequests) {
			metrics.Get().RateLimitExceededTotal.WithLabelValues(scope).Inc()
			logger.Log.Warn("Rate limit exceeded",
				zap.String("scope", scope),
				logger.WithIP(clientIP),
				zap.Int("max_requests", maxRequests),
				zap.Int64("current_requests", val),
			)
			errors.RateLimited(window.Seconds()).Abort(c)
			return
		}

		newVal, err := redisClient.IncrBy(ctx, key, 1)
		if err != nil {
			logger.Log.Error("Rate limit increment failed, rejecting request",
				zap.String("scope", scope),
				logger.WithIP(clientIP),
				zap.Error(err),
			)
			errors.ServiceUnavailable("service temporarily unavailable").Abort(c)
			return
		}

		// Start the window on the first request in it
		if newVal == 1 {
			if err := redisClient.Expire(ctx, key, window); err != nil {
				logger.Log.Warn("Failed to set rate limit expiration",
					zap.String("scope", scope),
					logger.WithIP(clientIP),
					zap.Error(err),
				)
			}
		}

		c.Next()
	}
}
