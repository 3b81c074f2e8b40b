package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	redispkg "github.com/subculture-collective/adserve/pkg/redis"
)

var (
	// ipFallbackLimiter is the in-memory limiter used when Redis is unreachable.
	ipFallbackLimiter *InMemoryRateLimiter

	// rateLimitWhitelist bypasses rate limiting for trusted IPs (always includes localhost).
	// Populated once via InitRateLimitWhitelist at startup from config.RateLimitConfig.WhitelistIPs.
	rateLimitWhitelist   = make(map[string]bool)
	rateLimitWhitelistMu sync.RWMutex
)

// InitRateLimitWhitelist initializes the rate limit whitelist from configuration.
// Must be called once at application startup.
func InitRateLimitWhitelist(whitelistIPs string) {
	rateLimitWhitelistMu.Lock()
	defer rateLimitWhitelistMu.Unlock()

	rateLimitWhitelist = map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
	}

	if whitelistIPs != "" {
		for _, ip := range strings.Split(whitelistIPs, ",") {
			if trimmed := strings.TrimSpace(ip); trimmed != "" {
				rateLimitWhitelist[trimmed] = true
			}
		}
	}
}

func isIPWhitelisted(ip string) bool {
	rateLimitWhitelistMu.RLock()
	defer rateLimitWhitelistMu.RUnlock()
	return rateLimitWhitelist[ip]
}

// RateLimitMiddleware rate-limits requests per client IP using a sliding window
// counter in Redis, falling back to an in-memory limiter if Redis is unreachable.
// Used to guard the hot /ads read path and the /ads/{id}/click write path
// (spec.md §5: suspension points and per-request resource bounds), since advertiser
// identity is trusted input rather than an authenticated principal (spec.md §1 Non-goals).
func RateLimitMiddleware(redis *redispkg.Client, requests int, window time.Duration) gin.HandlerFunc {
	if ipFallbackLimiter == nil {
		ipFallbackLimiter = NewInMemoryRateLimiter(requests, window)
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if isIPWhitelisted(ip) {
			c.Header("X-RateLimit-Bypass", "whitelisted")
			c.Next()
			return
		}

		endpoint := c.Request.URL.Path
		key := fmt.Sprintf("ratelimit:%s:%s", endpoint, ip)
		ctx := c.Request.Context()

		now := time.Now()
		currentWindow := now.Unix() / int64(window.Seconds())
		previousWindow := currentWindow - 1

		currentKey := fmt.Sprintf("%s:%d", key, currentWindow)
		previousKey := fmt.Sprintf("%s:%d", key, previousWindow)

		pipe := redis.Pipeline()
		currentCmd := pipe.Get(ctx, currentKey)
		previousCmd := pipe.Get(ctx, previousKey)
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
			log.Printf("Redis pipeline failed for rate limiting, using in-memory fallback: %v", err)
			allowIfFallback(c, key, requests)
			return
		}

		currentCount := int64(0)
		if val, err := currentCmd.Result(); err == nil {
			if parsed, perr := strconv.ParseInt(val, 10, 64); perr != nil {
				log.Printf("Warning: failed to parse currentCount from Redis value '%s': err=%v", val, perr)
			} else {
				currentCount = parsed
			}
		}

		previousCount := int64(0)
		if val, err := previousCmd.Result(); err == nil {
			if parsed, perr := strconv.ParseInt(val, 10, 64); perr != nil {
				log.Printf("Warning: failed to parse previousCount from Redis value '%s': err=%v", val, perr)
			} else {
				previousCount = parsed
			}
		}

		elapsed := float64(now.Unix() % int64(window.Seconds()))
		windowSeconds := float64(window.Seconds())
		weight := (windowSeconds - elapsed) / windowSeconds
		weightedCount := int64(float64(previousCount)*weight) + currentCount

		if weightedCount >= int64(requests) {
			retryAfter := int(windowSeconds - elapsed)
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", requests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", now.Unix()+int64(retryAfter)))
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		count, err := redis.Increment(ctx, currentKey)
		if err != nil {
			log.Printf("Redis increment failed for rate limiting, using in-memory fallback: %v", err)
			allowIfFallback(c, key, requests)
			return
		}

		if count == 1 {
			_ = redis.Expire(ctx, currentKey, window*2)
		}

		remaining := int64(requests) - (weightedCount + 1)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", requests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", (currentWindow+1)*int64(window.Seconds())))

		c.Next()
	}
}

func allowIfFallback(c *gin.Context, key string, requests int) {
	allowed, remaining := ipFallbackLimiter.Allow(key)

	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", requests))
	c.Header("X-RateLimit-Fallback", "true")

	if !allowed {
		c.Header("X-RateLimit-Remaining", "0")
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded. Please try again later.",
		})
		c.Abort()
		return
	}

	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	c.Next()
}
