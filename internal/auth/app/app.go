package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/exchange"
	httpapi "github.com/AuthGuard/AuthGuard-sub001/internal/auth/http"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/service"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	redisstore "github.com/AuthGuard/AuthGuard-sub001/internal/auth/store/drivers/redis"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store/drivers/sqlite"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/csrfx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "dev"

// Application encapsulates the token service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     *sqlite.Store
	tokens *redisstore.TokenStore // nil unless tokenStore.driver is redis
	store  store.Store

	signing *jwtx.Algorithm
	sealer  *cryptox.Sealer
	hasher  cryptox.PasswordHasher

	// Services
	verifier     *service.TokenVerifier
	registry     *exchange.Registry
	issuer       *service.CredentialIssuer
	housekeeping *service.HousekeepingService
	prom         *prometheus.Registry

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized. The caller
// owns it and must call Shutdown (or Close when Run was never called).
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authguard",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
		}),
	}

	if err := app.initStores(); err != nil {
		return nil, err
	}
	if err := app.initCrypto(); err != nil {
		_ = app.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx)
}

// Serve starts housekeeping and the HTTP server and blocks until ctx ends or
// the server fails. Either way the application is shut down on return.
func (app *Application) Serve(ctx context.Context) error {
	app.housekeeping.Start(ctx)

	app.logger.Info("authguard starting", "addr", app.cfg.HTTP.Addr, "version", BuildVersion,
		"algorithm", app.signing.Name(), "token_store", app.cfg.TokenStore.Driver)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		app.housekeeping.Stop()
		_ = app.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// Shutdown drains the HTTP server, stops housekeeping and closes the stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authguard...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.HTTP.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.Close(); err != nil {
		app.logger.Error("error closing stores", "error", err)
		return err
	}

	app.logger.Info("authguard stopped")
	return nil
}

// Close releases the stores without touching the HTTP server.
func (app *Application) Close() error {
	var errs []error
	if app.tokens != nil {
		errs = append(errs, app.tokens.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Store is the store exchanges run against.
func (app *Application) Store() store.Store { return app.store }

// Issuer issues OTPs, passwordless tokens and TOTP enrollments.
func (app *Application) Issuer() *service.CredentialIssuer { return app.issuer }

// Hasher hashes passwords with the configured pepper.
func (app *Application) Hasher() cryptox.PasswordHasher { return app.hasher }

func (app *Application) initStores() error {
	db, err := sqlite.NewStore(sqliteDSN(app.cfg.Database.Path))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	app.db = db
	app.store = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	version, dirty, err := db.SchemaVersion()
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		_ = db.Close()
		return fmt.Errorf("database schema is dirty at version %d", version)
	}
	app.logger.Info("database migrations applied", "path", app.cfg.Database.Path, "schema_version", version)

	if app.cfg.TokenStore.Driver != TokenStoreRedis {
		return nil
	}

	rc := app.cfg.TokenStore.Redis
	ctx, cancel := context.WithTimeout(context.Background(), redisstore.DefaultDialTimeout)
	defer cancel()

	tokens, err := redisstore.Dial(ctx, redisstore.Config{
		Addr:      rc.Addr,
		Username:  rc.Username,
		Password:  rc.Password,
		DB:        rc.DB,
		KeyPrefix: rc.Prefix,
	})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect token store: %w", err)
	}
	app.tokens = tokens
	app.store = store.WithAccountTokens(db, tokens)
	app.logger.Info("token records stored in redis", "addr", rc.Addr)
	return nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
}

func (app *Application) initCrypto() error {
	signing, err := LoadSigning(app.cfg.JWT)
	if err != nil {
		return err
	}
	app.signing = signing

	sealer, ephemeral, err := LoadSealer(app.cfg.Keys)
	if err != nil {
		return fmt.Errorf("master key: %w", err)
	}
	if ephemeral {
		app.logger.Warn("no master key configured, enrolled TOTP keys will not survive a restart")
	}
	app.sealer = sealer

	if app.cfg.PepperFile != "" {
		pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
		if err != nil {
			return fmt.Errorf("password pepper: %w", err)
		}
		app.hasher = cryptox.PasswordHasher{Pepper: pepper}
	}
	return nil
}

func (app *Application) initServices() error {
	cfg := app.cfg
	tokens := app.store.AccountTokens()

	enc, err := LoadEncryption(cfg.JWT.Encryption)
	if err != nil {
		return err
	}
	encryption := service.NewEncryption(enc)

	gen := jwtx.NewGenerator(cfg.JWT.Issuer, app.signing)
	accessStrategy := cfg.AccessToken.Strategy()
	jti := &service.JTIProvider{
		Tokens:            tokens,
		TTL:               accessStrategy.TokenLife,
		ConsumeOnValidate: accessStrategy.ConsumeJTI,
	}

	access := &service.AccessTokenProvider{
		Generator:  gen,
		Encryption: encryption,
		JTI:        jti,
		Tokens:     tokens,
		Strategy:   accessStrategy,
	}
	id := &service.IDTokenProvider{Generator: gen, Encryption: encryption, Strategy: cfg.IDToken.Strategy()}

	deps := exchange.Dependencies{
		Store: app.store,

		Basic:             &service.BasicAuthenticator{Credentials: app.store.Credentials(), Accounts: app.store.Accounts(), Hasher: app.hasher},
		OTP:               &service.OTPVerifier{OTPs: app.store.OTPs()},
		TOTP:              &service.TOTPVerifier{Tokens: tokens, Keys: app.store.TOTPKeys(), Sealer: app.sealer},
		Passwordless:      &service.PasswordlessVerifier{Tokens: tokens},
		AuthorizationCode: &service.AuthorizationCodeVerifier{Tokens: tokens},

		Access:   access,
		ID:       id,
		OIDC:     &service.OIDCProvider{Access: access, ID: id},
		AuthCode: &service.AuthorizationCodeProvider{Tokens: tokens, Strategy: cfg.AuthorizationCode.Strategy()},
		APIKey:   &service.JWTAPIKeyProvider{Generator: gen, Strategy: cfg.APIKey.Strategy()},

		Refresh: cfg.Exchange.Refresh(),
	}

	registry, err := exchange.NewRegistry(deps.Providers(), exchange.Standard(deps)...)
	if err != nil {
		return fmt.Errorf("build exchange registry: %w", err)
	}

	app.prom = prometheus.NewRegistry()
	app.prom.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := exchange.NewMetrics(app.prom)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	registry.Instrument(metrics, nil)
	app.registry = registry

	app.verifier = &service.TokenVerifier{
		Verifier:   jwtx.NewVerifier(app.signing, cfg.JWT.Issuer),
		JTI:        jti,
		UseJTI:     accessStrategy.UseJTI,
		Encryption: encryption,
	}

	app.issuer = &service.CredentialIssuer{Store: app.store, Sealer: app.sealer, Issuer: cfg.JWT.Issuer}
	app.housekeeping = service.NewHousekeepingService(tokens, app.logger, cfg.Housekeeping.Interval)
	return nil
}

func (app *Application) initHTTP() {
	var csrf *csrfx.CSRF
	if app.cfg.CSRF.Key != "" {
		csrf = csrfx.New([]byte(app.cfg.CSRF.Key))
	}

	// A nil *TokenStore in the interface would look like a configured one.
	var tokenPinger httpapi.Pinger
	if app.tokens != nil {
		tokenPinger = app.tokens
	}

	router := httpapi.NewRouter(httpapi.Config{
		Registry:   app.registry,
		Verifier:   app.verifier,
		Signing:    app.signing,
		Store:      app.store,
		TokenStore: tokenPinger,
		CSRF:       csrf,
		RateLimits: app.cfg.RateLimits,
		Gatherer:   app.prom,
		Version:    BuildVersion,
		Logger:     app.logger,
	})
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       app.cfg.HTTP.ReadTimeout,
		WriteTimeout:      app.cfg.HTTP.WriteTimeout,
	}
}
