package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter. Each key gets
// limit requests per window; a background janitor drops idle keys.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	tokens  int
	resetAt time.Time
}

// NewRateLimiter starts a limiter allowing limit requests per window
// per key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if now.Sub(b.resetAt) > rl.window*2 {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes one token for key, reporting whether the request
// may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.resetAt) >= rl.window {
		rl.buckets[key] = &bucket{tokens: rl.limit - 1, resetAt: now}
		return true
	}
	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Remaining reports how many requests key has left in the current
// window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || time.Since(b.resetAt) >= rl.window {
		return rl.limit
	}
	return b.tokens
}

// RateLimit limits by client IP, prefixed with the owner ID when
// present so one owner cannot starve another behind a shared proxy.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	keyed := RateLimitByKey(limiter, func(c *gin.Context) string {
		key := c.ClientIP()
		if ownerID := c.GetHeader(OwnerIDHeader); ownerID != "" {
			key = ownerID + ":" + key
		}
		return key
	})

	return func(c *gin.Context) {
		keyed(c)
		if !c.IsAborted() {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		}
	}
}

// RateLimitByKey limits using a caller-supplied key extractor.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
	}
}
