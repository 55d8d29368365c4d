package http

import (
	"net/http"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

// ReadyzHandler reports 503 until the database, the token store and the
// signing key are all usable.
func ReadyzHandler(
	startTime time.Time,
	version string,
	db Pinger,
	tokens Pinger,
	signing *jwtx.Algorithm,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		checks := &authsdk.HealthChecks{Database: "ok", TokenStore: "ok", Signer: "ok"}
		healthy := true

		if err := db.Ping(ctx); err != nil {
			log.Warn("readiness: database ping failed", "err", err)
			checks.Database = "error"
			healthy = false
		}

		switch {
		case tokens == nil:
			checks.TokenStore = checks.Database
		default:
			if err := tokens.Ping(ctx); err != nil {
				log.Warn("readiness: token store ping failed", "err", err)
				checks.TokenStore = "error"
				healthy = false
			}
		}

		if signing == nil {
			checks.Signer = "error: no signing key"
			healthy = false
		}

		resp := authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		}
		status := http.StatusOK
		if !healthy {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, status, resp)
	}
}
