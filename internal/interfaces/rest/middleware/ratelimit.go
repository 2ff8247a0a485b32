package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/interfaces/rest"
	"github.com/blockgatepay/gateway/internal/ratelimit"
)

// RateLimit bounds request rate per merchant and client IP. Must run after
// Authenticate so the merchant identity is available. Backend outages fail
// open: availability of legitimate traffic beats strictness of the limit.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			merchant, ok := MerchantFrom(r.Context())
			if !ok {
				rest.WriteError(w, application.NewAuthenticationError(nil), logger)
				return
			}

			clientIP, err := ClientIP(r)
			if err != nil {
				rest.WriteError(w, application.NewAuthenticationError(err), logger)
				return
			}

			key := ratelimit.Key(merchant.ID.String(), clientIP.String())
			if err := limiter.Allow(r.Context(), key, time.Now()); err != nil {
				if errors.Is(err, ratelimit.ErrLimitExceeded) {
					logger.Warn("rate limit exceeded",
						"merchant_id", merchant.ID,
						"client_ip", clientIP,
					)
					rest.WriteError(w, application.NewRateLimitError(), logger)
					return
				}

				logger.Error("rate limiter backend error", "error", err)
			}

			next.ServeHTTP(w, r)
		})
	}
}
