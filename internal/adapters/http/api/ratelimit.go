package api

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a client exceeds its request rate.
var ErrRateLimited = errors.New("rate limit exceeded")

// Rate limiter defaults.
const (
	defaultMaxClients = 10000
	clientIdleTimeout = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client address. Buckets of idle
// clients expire.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients *otter.Cache[string, *rate.Limiter]
}

// NewRateLimiter allows each client rps requests per second with bursts
// of up to burst requests.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit: rate.Limit(rps),
		burst: burst,
		clients: otter.Must(&otter.Options[string, *rate.Limiter]{
			MaximumSize:      defaultMaxClients,
			ExpiryCalculator: otter.ExpiryAccessing[string, *rate.Limiter](clientIdleTimeout),
		}),
	}
}

// Allow reports whether the client identified by key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	lim, ok := rl.clients.GetIfPresent(key)
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients.Set(key, lim)
	}
	rl.mu.Unlock()
	return lim.Allow()
}

// Clients returns the approximate number of tracked client buckets.
func (rl *RateLimiter) Clients() int {
	return rl.clients.EstimatedSize()
}

// Middleware rejects requests over the client's rate with 429.
func (rl *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientKey(r)) {
			writeError(w, r, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
