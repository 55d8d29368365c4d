package http

import (
	"net/http"
	"strings"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/exchange"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
)

// RevokeHandler serves POST /v1/exchange/revoke?type=. It deletes the record
// behind a refresh token or authorization code and answers 204.
type RevokeHandler struct {
	Registry *exchange.Registry
}

func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenType := strings.TrimSpace(r.URL.Query().Get("type"))
	if tokenType == "" {
		authsdk.NewAPIError(http.StatusBadRequest, "invalid_request", "type is required").WriteError(w)
		return
	}

	var body authsdk.RevokeRequest
	if err := httpx.DecodeJSON(r, maxBodyBytes, &body); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}
	if strings.TrimSpace(body.Token) == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	req := &domain.AuthRequest{
		Token:     body.Token,
		SourceIP:  httpx.IPKeyExtractor(r),
		UserAgent: r.UserAgent(),
		ClientID:  strings.TrimSpace(r.Header.Get(ClientIDHeader)),
	}
	if _, err := h.Registry.Delete(r.Context(), req, tokenType); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
