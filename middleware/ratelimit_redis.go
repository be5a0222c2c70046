package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"taskdesk/taskdesk/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE.
// With no client it lets every request through.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to addr (host:port). An empty addr or a
// failed ping leaves the limiter disabled so the API stays available.
func NewRedisRateLimiter(addr, password string, db int) *RedisRateLimiter {
	if addr == "" {
		return &RedisRateLimiter{}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		client.Close()
		return &RedisRateLimiter{}
	}

	logger.Info("Redis rate limiter connected", "addr", addr)
	return &RedisRateLimiter{client: client}
}

func (l *RedisRateLimiter) Enabled() bool {
	return l != nil && l.client != nil
}

func (l *RedisRateLimiter) Close() {
	if l.Enabled() {
		l.client.Close()
	}
}

// Limit allows maxRequests per window per client IP and route.
// key format: rl:<window_seconds>:<route>:<ip>
func (l *RedisRateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() || maxRequests <= 0 {
			c.Next()
			return
		}

		endpoint := c.FullPath()
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + endpoint + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			// fail open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			l.client.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}
