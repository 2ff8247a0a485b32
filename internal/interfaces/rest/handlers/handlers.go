// Package handlers wires the HTTP surface of the gateway.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"

	"github.com/blockgatepay/gateway/internal/application/services"
	"github.com/blockgatepay/gateway/internal/auth"
	"github.com/blockgatepay/gateway/internal/interfaces/rest/middleware"
	"github.com/blockgatepay/gateway/internal/ratelimit"
)

type Handlers struct {
	paymentService *services.PaymentService
	webhookService *services.WebhookService
	validate       *validator.Validate
	logger         *slog.Logger
}

func NewHandlers(
	paymentService *services.PaymentService,
	webhookService *services.WebhookService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		paymentService: paymentService,
		webhookService: webhookService,
		validate:       validator.New(),
		logger:         logger,
	}
}

// NewRouter builds the route tree. Merchant routes sit behind credential
// authentication and rate limiting; the processor webhook is public and
// trusts its signature alone.
func NewRouter(
	h *Handlers,
	authenticator *auth.Authenticator,
	limiter ratelimit.Limiter,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authenticator, logger))
			r.Use(middleware.RateLimit(limiter, logger))

			r.Post("/payments", h.CreatePayment)
			r.Get("/payments", h.ListPayments)
			r.Get("/payments/{id}", h.GetPayment)
		})

		r.Post("/webhooks/processor", h.ProcessorWebhook)
	})

	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}
