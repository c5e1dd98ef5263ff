package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter throttles a route group by client IP. Rates use the
// ulule/limiter format, e.g. "10-M" for ten per minute.
type RateLimiter struct {
	mu       sync.Mutex
	store    limiter.Store
	limiters map[string]*limiter.Limiter
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		store:    memory.NewStore(),
		limiters: make(map[string]*limiter.Limiter),
	}
}

func (l *RateLimiter) limiter(rate string) *limiter.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[rate]; ok {
		return lim
	}
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		r = limiter.Rate{Period: time.Second, Limit: 10}
	}
	lim := limiter.New(l.store, r)
	l.limiters[rate] = lim
	return lim
}

// Limit returns a middleware enforcing the given rate on the route it wraps.
func (l *RateLimiter) Limit(rate string) gin.HandlerFunc {
	lim := l.limiter(rate)
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		lctx, err := lim.Get(c, key)
		if err != nil {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		if lctx.Reached {
			retry := int(time.Until(time.Unix(lctx.Reset, 0)).Seconds())
			if retry < 0 {
				retry = 0
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}
