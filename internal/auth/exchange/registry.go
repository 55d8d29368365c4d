package exchange

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/service"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// Registry maps (from, to) pairs to exchanges and token types to the
// providers that can revoke them. It is read-only once built and safe for
// concurrent use.
type Registry struct {
	exchanges map[Key]Exchange
	providers map[string]service.Provider

	metrics  *Metrics
	recorder AttemptRecorder
}

// NewRegistry fails when two exchanges share a pair or two providers share
// a token type.
func NewRegistry(providers []service.Provider, exchanges ...Exchange) (*Registry, error) {
	r := &Registry{
		exchanges: make(map[Key]Exchange, len(exchanges)),
		providers: make(map[string]service.Provider, len(providers)),
	}

	for _, p := range providers {
		t := p.TokenType()
		if _, dup := r.providers[t]; dup {
			return nil, fmt.Errorf("exchange: duplicate provider for token type %q", t)
		}
		r.providers[t] = p
	}

	for _, e := range exchanges {
		k := e.Key()
		if _, dup := r.exchanges[k]; dup {
			return nil, fmt.Errorf("exchange: duplicate exchange %s", k)
		}
		r.exchanges[k] = e
	}

	return r, nil
}

// Instrument attaches metrics and an attempt recorder. Either may be nil.
// Call it before the registry is shared.
func (r *Registry) Instrument(m *Metrics, rec AttemptRecorder) {
	r.metrics = m
	r.recorder = rec
}

// Exchange runs the exchange registered for (from, to).
func (r *Registry) Exchange(ctx context.Context, req *domain.AuthRequest, from, to string) (*domain.Token, error) {
	e, ok := r.exchanges[Key{From: from, To: to}]
	if !ok {
		err := domain.NewError(domain.CodeUnknownExchange, fmt.Sprintf("Unknown token exchange %s to %s", from, to))
		r.record(ctx, req, from, to, nil, err)
		return nil, err
	}

	tok, err := e.Exchange(ctx, req)
	if err == nil && tok == nil {
		err = domain.NewError(domain.CodeExchangeFailed, fmt.Sprintf("Exchange %s to %s produced no token", from, to))
	}
	r.record(ctx, req, from, to, tok, err)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// Supports reports whether an exchange is registered for (from, to).
func (r *Registry) Supports(from, to string) bool {
	_, ok := r.exchanges[Key{From: from, To: to}]
	return ok
}

// Keys lists the registered pairs ordered by source, then target.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.exchanges))
	for k := range r.exchanges {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return keys
}

// Delete revokes the token described by req through the provider of
// tokenType.
func (r *Registry) Delete(ctx context.Context, req *domain.AuthRequest, tokenType string) (*domain.Token, error) {
	p, ok := r.providers[tokenType]
	if !ok {
		return nil, domain.NewError(domain.CodeUnknownExchange, fmt.Sprintf("Unknown token type %s", tokenType))
	}

	tok, err := p.Delete(ctx, req)
	log := slogx.FromContext(ctx)
	if err != nil {
		log.Info("token revocation failed", "type", tokenType, "code", domain.CodeOf(err))
		return nil, err
	}
	log.Info("token revoked", "type", tokenType, "entity_id", tok.EntityID)
	return tok, nil
}

func (r *Registry) record(ctx context.Context, req *domain.AuthRequest, from, to string, tok *domain.Token, err error) {
	a := Attempt{
		From:     from,
		To:       to,
		SourceIP: req.SourceIP,
		ClientID: req.ClientID,
		Err:      err,
		At:       time.Now().UTC(),
	}
	if tok != nil {
		a.EntityID = tok.EntityID
	} else {
		var de *domain.Error
		if errors.As(err, &de) {
			a.EntityID = de.EntityID
		}
	}

	log := slogx.FromContext(ctx)
	if err != nil {
		log.Info("token exchange failed", "from", from, "to", to, "result", a.Result(), "entity_id", a.EntityID, "error", err)
	} else {
		log.Info("token exchange succeeded", "from", from, "to", to, "entity_id", a.EntityID)
	}

	r.metrics.observe(a)
	if r.recorder != nil {
		r.recorder.RecordAttempt(ctx, a)
	}
}
