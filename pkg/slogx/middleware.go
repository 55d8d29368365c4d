package slogx

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/idx"
)

const (
	// RequestIDHeader is read from the request and echoed on the response.
	RequestIDHeader = "X-Request-ID"
	// ClientIDHeader names the calling client, if it identifies itself.
	ClientIDHeader = "X-Client-ID"
)

// HTTPMiddleware attaches a request logger to the context and writes one
// access log line per request. Server errors log at error level and client
// errors at warn. Query strings are never logged.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" || len(reqID) > 128 {
				reqID = idx.New().String()
			}
			rw.Header().Set(RequestIDHeader, reqID)

			attrs := []any{
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
			}
			if client := r.Header.Get(ClientIDHeader); client != "" {
				attrs = append(attrs, "client_id", client)
			}
			logger := base.With(attrs...)

			next.ServeHTTP(rw, r.WithContext(WithContext(r.Context(), logger)))

			level := slog.LevelInfo
			switch {
			case rw.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case rw.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http_request",
				"status", rw.status,
				"bytes", rw.written,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", remoteIP(r),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type responseWriter struct {
	http.ResponseWriter

	status  int
	written int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}
