package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	VisitorHeader = "X-Visitor-ID"
	visitorKey    = "visitor_id"
)

// Visitor identifies the browser behind a request. Unknown browsers get a fresh id,
// echoed back so the front end can keep it.
func Visitor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(VisitorHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(visitorKey, id)
		c.Header(VisitorHeader, id)
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}

// ipFactor widens the per-address bucket so visitors sharing a NAT do not starve each other.
const ipFactor = 4

// RateLimiter hands out one token bucket per visitor and a wider one per client
// address. The visitor id is chosen by the browser, so the address bucket is the
// one a caller cannot reset by rotating ids.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitorLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type visitorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 3
	}
	return &RateLimiter{
		limiters: make(map[string]*visitorLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

func (l *RateLimiter) allow(key string, factor int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}

	v, ok := l.limiters[key]
	if !ok {
		v = &visitorLimiter{limiter: rate.NewLimiter(l.limit*rate.Limit(factor), l.burst*factor)}
		l.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow("ip:"+c.ClientIP(), ipFactor) || !l.allow("visitor:"+visitorID(c), 1) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"dialog": gin.H{
					"icon":    "warning",
					"title":   "Trop de tentatives",
					"message": "Patientez une minute avant de réessayer.",
				},
			})
			return
		}
		c.Next()
	}
}
