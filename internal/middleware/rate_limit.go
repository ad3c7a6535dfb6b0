package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
}

// NewRateLimiter allows perSecond requests per IP with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// getLimiter returns the IP's limiter, dropping visitors idle for visitorTTL.
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, key)
		}
	}

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Limit is a Fiber middleware rejecting requests over the limit with 429.
func (rl *RateLimiter) Limit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.getLimiter(c.IP()).Allow() {
			return deny(c, fiber.StatusTooManyRequests, "TooManyRequests", "Too many requests. Please try again later.")
		}
		return c.Next()
	}
}
