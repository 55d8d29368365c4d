package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Exchange trades req, a credential of type from, for a token of type to.
func (c *Client) Exchange(ctx context.Context, from, to string, req ExchangeRequest) (*TokenResponse, error) {
	q := url.Values{"from": {from}, "to": {to}}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/exchange?"+q.Encode(), req, nil)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Revoke deletes the record behind token. tokenType names the type that
// issued it: "accessToken" for refresh tokens, "authorizationCode" for codes.
func (c *Client) Revoke(ctx context.Context, tokenType, token string) error {
	q := url.Values{"type": {tokenType}}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/exchange/revoke?"+q.Encode(), RevokeRequest{Token: token}, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Introspect verifies accessToken on the server and returns its claims.
func (c *Client) Introspect(ctx context.Context, accessToken string) (*IntrospectionResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/token/introspect", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return nil, err
	}

	var info IntrospectionResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchCSRFToken requests a CSRF token for ClientID and stores it on c.
func (c *Client) FetchCSRFToken(ctx context.Context) (*CSRFResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/csrf", nil, nil)
	if err != nil {
		return nil, err
	}

	var out CSRFResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	c.CSRFToken = out.Token
	return &out, nil
}
