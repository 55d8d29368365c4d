package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to an AuthGuard server. All calls are unauthenticated apart
// from Introspect, which presents the token it is given.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// ClientID is sent as X-Client-ID on every request. It is the identifier
	// CSRF tokens are bound to.
	ClientID string

	// CSRFToken, when set, is sent as X-CSRF-Token on state changing requests.
	CSRFToken string
}

// NewClient creates a client with a 10 second timeout.
func NewClient(baseURL, clientID string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		ClientID: clientID,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}
