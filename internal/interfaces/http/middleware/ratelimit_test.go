package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("client-a"), "request %d should be allowed", i+1)
	}
	assert.False(t, limiter.Allow("client-a"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)

	assert.True(t, limiter.Allow("client-a"))
	assert.True(t, limiter.Allow("client-a"))
	assert.False(t, limiter.Allow("client-a"))

	assert.True(t, limiter.Allow("client-b"))
	assert.True(t, limiter.Allow("client-b"))
}

func TestRateLimiter_WindowReset(t *testing.T) {
	limiter := NewRateLimiter(2, 50*time.Millisecond)

	assert.True(t, limiter.Allow("client-a"))
	assert.True(t, limiter.Allow("client-a"))
	assert.False(t, limiter.Allow("client-a"))

	time.Sleep(60 * time.Millisecond)

	assert.True(t, limiter.Allow("client-a"))
}

func TestRateLimiter_Remaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, limiter.Remaining("fresh"))

	limiter.Allow("fresh")
	limiter.Allow("fresh")
	assert.Equal(t, 3, limiter.Remaining("fresh"))
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func rateLimitedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func limitedGet(router *gin.Engine, ownerID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	if ownerID != "" {
		req.Header.Set(OwnerIDHeader, ownerID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_Returns429WhenExhausted(t *testing.T) {
	router := rateLimitedRouter(RateLimit(NewRateLimiter(2, time.Minute)))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, limitedGet(router, "").Code)
	}

	w := limitedGet(router, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_SetsHeaders(t *testing.T) {
	router := rateLimitedRouter(RateLimit(NewRateLimiter(5, time.Minute)))

	w := limitedGet(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_KeyedByOwner(t *testing.T) {
	router := rateLimitedRouter(RateLimit(NewRateLimiter(1, time.Minute)))

	assert.Equal(t, http.StatusOK, limitedGet(router, "owner-1").Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(router, "owner-1").Code)

	// A different owner behind the same IP keeps its own budget.
	assert.Equal(t, http.StatusOK, limitedGet(router, "owner-2").Code)
}

func TestRateLimitByKey(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	router := rateLimitedRouter(RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}))

	get := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
		req.Header.Set("X-User-ID", userID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("user-1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get("user-1").Code)
	assert.Equal(t, http.StatusOK, get("user-2").Code)
}
