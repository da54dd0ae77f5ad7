package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter implements per-client rate limiting for API endpoints
type RateLimiter struct {
	ipLimiters         map[string]*rate.Limiter
	webhookLimiters    map[string]*rate.Limiter
	ipMutex            sync.RWMutex
	webhookMutex       sync.RWMutex
	ipLimiterRate      rate.Limit
	webhookLimiterRate rate.Limit
	ipBurst            int
	webhookBurst       int
	cleanupTicker      *time.Ticker
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(ipRequestsPerSecond, webhookRequestsPerMinute float64, ipBurst, webhookBurst int) *RateLimiter {
	limiter := &RateLimiter{
		ipLimiters:         make(map[string]*rate.Limiter),
		webhookLimiters:    make(map[string]*rate.Limiter),
		ipLimiterRate:      rate.Limit(ipRequestsPerSecond),
		webhookLimiterRate: rate.Limit(webhookRequestsPerMinute / 60),
		ipBurst:            ipBurst,
		webhookBurst:       webhookBurst,
		cleanupTicker:      time.NewTicker(5 * time.Minute),
	}

	go limiter.cleanup()

	return limiter
}

// cleanup periodically drops idle limiters to prevent the maps from growing
// without bound
func (rl *RateLimiter) cleanup() {
	for range rl.cleanupTicker.C {
		rl.ipMutex.Lock()
		rl.ipLimiters = make(map[string]*rate.Limiter)
		rl.ipMutex.Unlock()

		rl.webhookMutex.Lock()
		rl.webhookLimiters = make(map[string]*rate.Limiter)
		rl.webhookMutex.Unlock()
	}
}

// Stop stops the rate limiter cleanup
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
}

func (rl *RateLimiter) getIPLimiter(ip string) *rate.Limiter {
	rl.ipMutex.RLock()
	limiter, exists := rl.ipLimiters[ip]
	rl.ipMutex.RUnlock()

	if !exists {
		rl.ipMutex.Lock()
		limiter = rate.NewLimiter(rl.ipLimiterRate, rl.ipBurst)
		rl.ipLimiters[ip] = limiter
		rl.ipMutex.Unlock()
	}

	return limiter
}

func (rl *RateLimiter) getWebhookLimiter(ip string) *rate.Limiter {
	rl.webhookMutex.RLock()
	limiter, exists := rl.webhookLimiters[ip]
	rl.webhookMutex.RUnlock()

	if !exists {
		rl.webhookMutex.Lock()
		limiter = rate.NewLimiter(rl.webhookLimiterRate, rl.webhookBurst)
		rl.webhookLimiters[ip] = limiter
		rl.webhookMutex.Unlock()
	}

	return limiter
}

// IPRateLimiterMiddleware limits requests based on client IP
func (rl *RateLimiter) IPRateLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getIPLimiter(c.ClientIP())

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// WebhookRateLimiterMiddleware limits webhook deliveries per source. The
// storefront retries aggressively on non-2xx responses, so the webhook budget
// is tighter than the general API budget.
func (rl *RateLimiter) WebhookRateLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getWebhookLimiter(c.ClientIP())

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many webhook deliveries, slow down",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
