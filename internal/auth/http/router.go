package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/exchange"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/csrfx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the dependencies of the HTTP surface.
type Config struct {
	Registry *exchange.Registry
	Verifier httpx.TokenVerifier
	Signing  *jwtx.Algorithm

	Store store.Store
	// TokenStore is checked by the readiness probe when token records live
	// outside Store.
	TokenStore Pinger

	// CSRF enables the CSRF endpoint and checks on exchanges when set.
	CSRF *csrfx.CSRF

	RateLimits httpx.RateLimits
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	Version string
	Logger  *slog.Logger
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg       Config
	startTime time.Time
}

func NewRouter(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := &Router{
		Mux:       http.NewServeMux(),
		cfg:       cfg,
		startTime: time.Now(),
	}
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(cfg.Logger),
	}
	return r
}

func (r *Router) ApplyRoutes() {
	r.registerExchange()
	r.registerTokens()
	r.registerCSRF()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerExchange() {
	limits := r.cfg.RateLimits

	// POST /exchange - strict limit per IP and source type (credential guessing)
	mws := []httpx.Middleware{httpx.RateLimitByIPAndQuery(limits.Exchange, "from")}
	if r.cfg.CSRF != nil {
		mws = append(mws, httpx.CSRFMiddleware(r.cfg.CSRF, httpx.HeaderKeyExtractor(ClientIDHeader)))
	}
	r.Mux.Handle("POST /v1/exchange", httpx.Chain(&ExchangeHandler{Registry: r.cfg.Registry}, mws...))

	// POST /exchange/revoke - moderate limit
	r.Mux.Handle("POST /v1/exchange/revoke",
		httpx.Chain(&RevokeHandler{Registry: r.cfg.Registry},
			httpx.RateLimitByIP(limits.Token),
		),
	)
}

func (r *Router) registerTokens() {
	// Introspection presents the token under test as the bearer credential,
	// so authn happens before the per-account limit.
	r.Mux.Handle("POST /v1/token/introspect",
		httpx.Chain(http.HandlerFunc(IntrospectHandler),
			httpx.AuthnMiddleware(r.cfg.Verifier),
			httpx.RateLimitByAccount(r.cfg.RateLimits.Token),
		),
	)
}

func (r *Router) registerCSRF() {
	if r.cfg.CSRF == nil {
		return
	}
	r.Mux.Handle("GET /v1/csrf",
		httpx.Chain(CSRFHandler(r.cfg.CSRF),
			httpx.RateLimitByIP(r.cfg.RateLimits.Public),
		),
	)
}

func (r *Router) registerSystem() {
	public := httpx.RateLimitByIP(r.cfg.RateLimits.Public)

	r.Mux.Handle("GET /.well-known/jwks.json", httpx.Chain(JWKSHandler(r.cfg.Signing), public))
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.cfg.Version))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.cfg.Version, r.cfg.Store, r.cfg.TokenStore, r.cfg.Signing))

	if r.cfg.Gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
}
