package exchange

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/service"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// RefreshConfig binds refresh tokens to the session that obtained them.
type RefreshConfig struct {
	// CheckOptions requires the client id, device id, user agent and
	// external session id of the request to match the stored session.
	CheckOptions bool
	// CheckRequestIP requires the request to come from the stored IP.
	CheckRequestIP bool
}

type refreshExchange struct {
	key      Key
	tokens   store.AccountTokenRepo
	accounts store.AccountRepo
	provider service.Provider
	cfg      RefreshConfig
	now      func() time.Time
}

// NewRefresh exchanges a refresh token for a new token of the provider's
// type. The refresh token is single use.
func NewRefresh(tokens store.AccountTokenRepo, accounts store.AccountRepo, provider service.Provider, cfg RefreshConfig) Exchange {
	return &refreshExchange{
		key:      Key{From: domain.TypeRefresh, To: provider.TokenType()},
		tokens:   tokens,
		accounts: accounts,
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (e *refreshExchange) Key() Key { return e.key }

func (e *refreshExchange) Exchange(ctx context.Context, req *domain.AuthRequest) (*domain.Token, error) {
	log := slogx.FromContext(ctx).With("refresh_fp", cryptox.FingerprintToken(req.Token))

	rec, err := e.tokens.GetByToken(ctx, req.Token)
	if errors.Is(err, store.ErrNotFound) || (err == nil && rec.Purpose != domain.PurposeRefreshToken) {
		return nil, domain.NewError(domain.CodeInvalidToken, "Invalid refresh token")
	}
	if err != nil {
		return nil, err
	}

	if rec.Expired(e.now()) {
		e.discard(ctx, log, req.Token)
		return nil, domain.NewError(domain.CodeExpiredToken, "Refresh token has expired").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}

	if e.cfg.CheckOptions && !sessionMatches(rec.Session, req) {
		log.Warn("refresh token presented from a different session", "account_id", rec.AccountID)
		return nil, domain.NewError(domain.CodeInvalidToken, "Refresh token options did not match").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}
	if e.cfg.CheckRequestIP && rec.Session.SourceIP != req.SourceIP {
		log.Warn("refresh token presented from a different address", "account_id", rec.AccountID)
		return nil, domain.NewError(domain.CodeInvalidToken, "Refresh token request IP did not match").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}

	account, err := e.accounts.GetByID(ctx, rec.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		e.discard(ctx, log, req.Token)
		return nil, domain.NewError(domain.CodeAccountDoesNotExist, "Account does not exist").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}
	if err != nil {
		return nil, err
	}

	// Only the caller that deletes the record may mint with it.
	consumed, err := e.tokens.DeleteByToken(ctx, req.Token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NewError(domain.CodeInvalidToken, "Refresh token was already used").
			ForEntity(domain.EntityAccount, rec.AccountID)
	}
	if err != nil {
		return nil, err
	}

	return e.provider.GenerateForAccount(ctx, account, consumed.Restrictions, consumed.Session.Options())
}

func (e *refreshExchange) discard(ctx context.Context, log *slog.Logger, token string) {
	if _, err := e.tokens.DeleteByToken(ctx, token); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn("failed to delete refresh token", "error", err)
	}
}

func sessionMatches(s domain.SessionInfo, req *domain.AuthRequest) bool {
	return s.ClientID == req.ClientID &&
		s.DeviceID == req.DeviceID &&
		s.UserAgent == req.UserAgent &&
		s.ExternalSessionID == req.ExternalSessionID
}
