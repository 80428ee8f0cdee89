package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bookfinder/recommender/internal/api/response"
)

// RateLimit returns middleware enforcing a per-client request budget using a
// token bucket. Clients are keyed by remote IP. Buckets idle longer than
// staleAfter are evicted to bound memory.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	limiter := newClientLimiter(perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientKey(r)) {
				response.RespondTooManyRequests(w, "Rate limit exceeded. Try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

const staleAfter = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket

	limit rate.Limit
	burst int
}

func newClientLimiter(perMinute int) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

func (c *clientLimiter) allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	bucket, ok := c.clients[key]
	if !ok {
		c.evictStale(now)

		bucket = &clientBucket{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = bucket
	}

	bucket.lastSeen = now

	return bucket.limiter.Allow()
}

// evictStale runs under c.mu, on the new-client path only.
func (c *clientLimiter) evictStale(now time.Time) {
	for key, bucket := range c.clients {
		if now.Sub(bucket.lastSeen) > staleAfter {
			delete(c.clients, key)
		}
	}
}

// clientKey identifies the caller for rate limiting. The remote IP is used;
// the port changes per connection and must not split one client into many buckets.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
