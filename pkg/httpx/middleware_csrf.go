package httpx

import (
	"net/http"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// CSRFHeader carries the token issued by the CSRF endpoint.
const CSRFHeader = "X-CSRF-Token"

// CSRFValidator checks a token against the identifier it was issued for.
type CSRFValidator interface {
	IsValid(token, identifier string) bool
}

// CSRFMiddleware rejects state changing requests whose CSRFHeader does not
// validate for the identifier key extracts from the request. Safe methods
// pass through.
func CSRFMiddleware(v CSRFValidator, key KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			id := key(r)
			if id == "" || !v.IsValid(r.Header.Get(CSRFHeader), id) {
				slogx.FromContext(r.Context()).Warn("csrf check failed", "endpoint", r.URL.Path)
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":             "csrf_failed",
					"error_description": "Missing or invalid CSRF token",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
