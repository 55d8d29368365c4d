/*
Package authsdk is the wire contract and Go client of the AuthGuard token
exchange service.

The server exposes a single exchange endpoint: a credential of one type is
traded for a token of another. The source and target types are query
parameters and the credential travels in an ExchangeRequest body.

	client := authsdk.NewClient("https://auth.example.com", "web-app")

	// Only needed when the server has CSRF protection enabled.
	if _, err := client.FetchCSRFToken(ctx); err != nil {
		return err
	}

	tok, err := client.Exchange(ctx, "basic", "accessToken", authsdk.ExchangeRequest{
		Identifier: "alice",
		Password:   "secret",
	})

	// Rotate the refresh token.
	tok, err = client.Exchange(ctx, "refresh", "accessToken", authsdk.ExchangeRequest{
		Token: tok.RefreshToken,
	})

	// Log out.
	err = client.Revoke(ctx, "accessToken", tok.RefreshToken)

# Errors

Every non-2xx response decodes into an *APIError carrying the server's
error code, e.g. INVALID_TOKEN or UNKNOWN_EXCHANGE:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "EXPIRED_TOKEN" {
		// re-authenticate
	}

The same type is used by the server to write error responses.
*/
package authsdk
