package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit caps requests per client IP per second, counted in Redis so
// the limit holds across replicas behind one load balancer. INCR comes
// first and the expiry is set only when it opens the window, so
// sub-limit traffic cannot keep a counter alive past its second.
func RateLimit(rdc *redis.Client, maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()

		count, err := rdc.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Fail open: the limiter must not take invite
			// creation down with Redis.
			zap.L().Warn("ratelimit.incr", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			rdc.Expire(c.Request.Context(), key, time.Second)
		}
		if count > int64(maxRequests) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
