package http

import (
	"net/http"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/csrfx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// CSRFHandler serves GET /v1/csrf. The token is bound to the ClientIDHeader
// value, which must then accompany the protected request.
func CSRFHandler(c *csrfx.CSRF) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(ClientIDHeader))
		if id == "" {
			authsdk.NewAPIError(http.StatusBadRequest, "invalid_request", ClientIDHeader+" header is required").WriteError(w)
			return
		}

		token, err := c.Generate(id)
		if err != nil {
			slogx.FromContext(r.Context()).Error("csrf token generation failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, authsdk.CSRFResponse{
			Token:     token,
			ExpiresIn: int(c.Period().Seconds()),
		})
	}
}
