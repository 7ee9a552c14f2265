package api

import (
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	"github.com/foodgramapp/foodgram-server/internal/metrics"
	"github.com/foodgramapp/foodgram-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// rate: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	// 20 per minute = 20/60 = 0.333 rps
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// loginRateLimit is a huma middleware limiting login attempts per client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) loginRateLimit(ctx huma.Context, next func(huma.Context)) {
	r, _ := humachi.Unwrap(ctx)
	key := getClientIP(r)

	if !s.authRateLimiter.Allow(key) {
		metrics.RecordLogin("rate_limited")
		s.logger.Warn("login rate limit exceeded", "ip", key)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many login attempts, try again later") //nolint:errcheck // response already committed
		return
	}

	next(ctx)
}

// getClientIP extracts the client IP from the request. middleware.RealIP has
// already folded X-Forwarded-For and X-Real-IP into RemoteAddr.
func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
