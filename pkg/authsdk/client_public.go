package authsdk

import (
	"context"
	"net/http"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
)

// Live calls the liveness probe.
func (c *Client) Live(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// Ready calls the readiness probe. A degraded server answers 503, which is
// returned as an *APIError; the per dependency checks are lost in that case.
func (c *Client) Ready(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// JWKS fetches the public verification keys. HMAC deployments publish an
// empty set.
func (c *Client) JWKS(ctx context.Context) (jwtx.JWKS, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if err != nil {
		return jwtx.JWKS{}, err
	}

	var set JWKSResponse
	if err := decodeJSON(resp, &set, http.StatusOK); err != nil {
		return jwtx.JWKS{}, err
	}
	return jwtx.JWKS(set), nil
}
