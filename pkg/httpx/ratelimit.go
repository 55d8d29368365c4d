package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig allows RequestsPerWindow requests per Window with up to
// Burst at once. A non-positive RequestsPerWindow disables limiting.
type RateLimitConfig struct {
	RequestsPerWindow int           `mapstructure:"requests"`
	Window            time.Duration `mapstructure:"window"`
	Burst             int           `mapstructure:"burst"`
}

func (c RateLimitConfig) enabled() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0
}

// RateLimits groups the profiles the router applies per endpoint class.
type RateLimits struct {
	// Exchange covers credential exchanges, the brute force target.
	Exchange RateLimitConfig `mapstructure:"exchange"`
	// Token covers revocation and introspection.
	Token RateLimitConfig `mapstructure:"token"`
	// Public covers JWKS, CSRF and health endpoints.
	Public RateLimitConfig `mapstructure:"public"`
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		Exchange: RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10},
		Token:    RateLimitConfig{RequestsPerWindow: 60, Window: time.Minute, Burst: 20},
		Public:   RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000},
	}
}

// KeyExtractor picks the bucket a request is counted against.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor uses the first X-Forwarded-For hop, then X-Real-IP, then
// the peer address.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// AccountIDKeyExtractor uses the authenticated account, if any.
func AccountIDKeyExtractor(r *http.Request) string {
	return AccountIDFromContext(r.Context())
}

// HeaderKeyExtractor uses the value of a request header.
func HeaderKeyExtractor(name string) KeyExtractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(name))
	}
}

// QueryKeyExtractor uses a URL query parameter.
func QueryKeyExtractor(name string) KeyExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(name)
	}
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

const limiterSweepInterval = 5 * time.Minute

type rateLimiter struct {
	limiters sync.Map // string -> *rate.Limiter
	rate     rate.Limit
	burst    int

	mu        sync.Mutex
	lastSweep time.Time
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	rl.sweep()
	return actual.(*rate.Limiter)
}

// sweep drops limiters whose bucket has refilled, i.e. idle keys.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastSweep) < limiterSweepInterval {
		return
	}
	rl.lastSweep = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware limits requests per key. Requests without a key are
// let through.
func RateLimitMiddleware(cfg RateLimitConfig, key KeyExtractor) Middleware {
	if !cfg.enabled() {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerWindow
	}
	rl := &rateLimiter{
		rate:      rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			k := key(r)
			if k == "" {
				log.Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			l := rl.limiter(k)
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := l.Reserve()
			retryAfter := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			log.Warn("rate limit exceeded", "endpoint", r.URL.Path, "retry_after", retryAfter)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP limits by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByAccount limits by authenticated account, falling back to the
// client address.
func RateLimitByAccount(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", AccountIDKeyExtractor, IPKeyExtractor))
}

// RateLimitByIPAndQuery limits by client address and a query parameter, so
// each exchange source type gets its own bucket.
func RateLimitByIPAndQuery(cfg RateLimitConfig, param string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", IPKeyExtractor, QueryKeyExtractor(param)))
}
