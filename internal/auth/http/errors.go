package http

import (
	"errors"
	"net/http"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/authsdk"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/slogx"
)

var statusByCode = map[string]int{
	domain.CodeUnsupportedOperation:       http.StatusBadRequest,
	domain.CodeUnknownExchange:            http.StatusBadRequest,
	domain.CodeInvalidAuthorizationFormat: http.StatusBadRequest,
	domain.CodeExchangeFailed:             http.StatusBadRequest,

	domain.CodeInvalidToken:            http.StatusUnauthorized,
	domain.CodeExpiredToken:            http.StatusUnauthorized,
	domain.CodeGenericAuthFailure:      http.StatusUnauthorized,
	domain.CodePasswordsDoNotMatch:     http.StatusUnauthorized,
	domain.CodeCredentialsDoesNotExist: http.StatusUnauthorized,
	domain.CodeTOTPInvalid:             http.StatusUnauthorized,
	domain.CodeTOTPNoKey:               http.StatusUnauthorized,

	domain.CodeAccountInactive:     http.StatusForbidden,
	domain.CodeInactiveIdentifier:  http.StatusForbidden,
	domain.CodeAccountDoesNotExist: http.StatusNotFound,

	domain.CodeUnsupportedJWTAlgorithm: http.StatusInternalServerError,
	domain.CodeEncryptionNotSupported:  http.StatusInternalServerError,
	domain.CodeConfigurationError:      http.StatusInternalServerError,
}

// writeError writes err as an ErrorResponse. Coded domain errors keep their
// code and message; anything else is logged and hidden behind server_error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		slogx.FromContext(r.Context()).Error("request failed", "endpoint", r.URL.Path, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	status, ok := statusByCode[de.Code]
	if !ok {
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "endpoint", r.URL.Path, "code", de.Code, "err", err)
	}

	apiErr := &authsdk.APIError{
		StatusCode: status,
		ErrorResponse: authsdk.ErrorResponse{
			Code:       de.Code,
			Message:    de.Message,
			EntityType: string(de.EntityType),
			EntityID:   de.EntityID,
		},
	}
	apiErr.WriteError(w)
}
