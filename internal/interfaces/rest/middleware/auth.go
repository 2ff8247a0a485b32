package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/netip"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/auth"
	"github.com/blockgatepay/gateway/internal/domain"
	"github.com/blockgatepay/gateway/internal/interfaces/rest"
)

const apiKeyHeader = "X-Api-Key"

type contextKey string

const merchantContextKey contextKey = "merchant"

// MerchantFrom returns the authenticated merchant placed in the request
// context by Authenticate.
func MerchantFrom(ctx context.Context) (*domain.Merchant, bool) {
	merchant, ok := ctx.Value(merchantContextKey).(*domain.Merchant)
	return merchant, ok
}

// ClientIP extracts the caller address, without the port.
func ClientIP(r *http.Request) (netip.Addr, error) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return netip.ParseAddr(host)
}

// Authenticate guards merchant API routes. Every failure kind collapses into
// the same 401 body; the specific kind only reaches the log.
func Authenticate(authenticator *auth.Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP, err := ClientIP(r)
			if err != nil {
				logger.Warn("unparseable client address", "remote_addr", r.RemoteAddr)
				rest.WriteError(w, application.NewAuthenticationError(err), logger)
				return
			}

			merchant, err := authenticator.Authenticate(r.Context(), r.Header.Get(apiKeyHeader), clientIP)
			if err != nil {
				logAuthFailure(logger, err, clientIP)
				rest.WriteError(w, application.NewAuthenticationError(nil), logger)
				return
			}

			ctx := context.WithValue(r.Context(), merchantContextKey, merchant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logAuthFailure(logger *slog.Logger, err error, clientIP netip.Addr) {
	var kind string
	switch {
	case errors.Is(err, auth.ErrMalformedCredential):
		kind = "malformed_credential"
	case errors.Is(err, auth.ErrUnknownCredential):
		kind = "unknown_credential"
	case errors.Is(err, auth.ErrInactiveCredential):
		kind = "inactive_credential"
	case errors.Is(err, auth.ErrSecretMismatch):
		kind = "secret_mismatch"
	case errors.Is(err, auth.ErrIPNotAllowed):
		kind = "ip_not_allowed"
	default:
		kind = "store_error"
	}

	logger.Warn("authentication failed",
		"kind", kind,
		"client_ip", clientIP,
		"error", err,
	)
}
