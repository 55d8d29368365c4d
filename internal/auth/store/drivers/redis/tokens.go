// Package redis stores token records in Redis. Only token records live
// here; accounts and credentials stay on the relational store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/cryptox"
	goredis "github.com/redis/go-redis/v9"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// expiryGrace keeps a record readable for a while after it expires so
// callers can tell an expired token from an unknown one.
const expiryGrace = time.Minute

type Config struct {
	Addr     string
	Username string
	Password string
	DB       int

	// KeyPrefix namespaces every key, e.g. "authguard:".
	KeyPrefix string
}

// TokenStore implements store.AccountTokenRepo on Redis. Keys are the
// SHA-256 fingerprint of the token; values are JSON.
type TokenStore struct {
	client goredis.UniversalClient
	prefix string
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, cfg Config) (*TokenStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: address is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: connect: %w", err)
	}

	return New(client, cfg.KeyPrefix), nil
}

// New wraps an existing client. Useful for tests with miniredis.
func New(client goredis.UniversalClient, keyPrefix string) *TokenStore {
	return &TokenStore{client: client, prefix: keyPrefix}
}

func (s *TokenStore) Close() error { return s.client.Close() }

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

type storedToken struct {
	ID           string                    `json:"id"`
	AccountID    string                    `json:"accountId"`
	Purpose      domain.Purpose            `json:"purpose"`
	Restrictions *domain.TokenRestrictions `json:"restrictions,omitempty"`
	Session      *domain.SessionInfo       `json:"session,omitempty"`
	PKCE         *domain.PKCEChallenge     `json:"pkce,omitempty"`
	Email        string                    `json:"email,omitempty"`
	ExpiresAt    int64                     `json:"expiresAt,omitempty"`
	CreatedAt    int64                     `json:"createdAt"`
}

func (s *TokenStore) key(token string) string {
	return s.prefix + "token:" + cryptox.FingerprintToken(token)
}

func (s *TokenStore) Save(ctx context.Context, t *domain.AccountToken) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	st := storedToken{
		ID:           t.ID,
		AccountID:    t.AccountID,
		Purpose:      t.Purpose,
		Restrictions: t.Restrictions,
		PKCE:         t.PKCE,
		Email:        t.Email,
		CreatedAt:    t.CreatedAt.UnixMilli(),
	}
	if t.Session != (domain.SessionInfo{}) {
		session := t.Session
		st.Session = &session
	}

	var ttl time.Duration
	if !t.ExpiresAt.IsZero() {
		st.ExpiresAt = t.ExpiresAt.UnixMilli()
		ttl = max(time.Until(t.ExpiresAt), 0) + expiryGrace
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("redis: marshal token: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(t.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis: save token: %w", err)
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *TokenStore) GetByToken(ctx context.Context, token string) (*domain.AccountToken, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		return nil, mapNotFound(err)
	}
	return decode(token, data)
}

// DeleteByToken uses GETDEL, so Redis hands the value to exactly one caller.
func (s *TokenStore) DeleteByToken(ctx context.Context, token string) (*domain.AccountToken, error) {
	data, err := s.client.GetDel(ctx, s.key(token)).Bytes()
	if err != nil {
		return nil, mapNotFound(err)
	}
	return decode(token, data)
}

// DeleteExpired is a no-op: Redis evicts records through their TTL.
func (s *TokenStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, goredis.Nil) {
		return store.ErrNotFound
	}
	return fmt.Errorf("redis: %w", err)
}

func decode(token string, data []byte) (*domain.AccountToken, error) {
	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("redis: unmarshal token: %w", err)
	}

	t := &domain.AccountToken{
		ID:           st.ID,
		Token:        token,
		AccountID:    st.AccountID,
		Purpose:      st.Purpose,
		Restrictions: st.Restrictions,
		Email:        st.Email,
		CreatedAt:    time.UnixMilli(st.CreatedAt).UTC(),
	}
	if st.Session != nil {
		t.Session = *st.Session
	}
	if st.ExpiresAt != 0 {
		t.ExpiresAt = time.UnixMilli(st.ExpiresAt).UTC()
	}
	if st.PKCE != nil {
		pkce, err := domain.NewPKCEChallenge(st.PKCE.Challenge, st.PKCE.Method)
		if err != nil {
			return nil, fmt.Errorf("redis: decode pkce: %w", err)
		}
		t.PKCE = pkce
	}
	return t, nil
}
