package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/application/services"
	"github.com/blockgatepay/gateway/internal/interfaces/rest"
	"github.com/blockgatepay/gateway/internal/interfaces/rest/middleware"
)

type createPaymentRequest struct {
	PriceAmount   decimal.Decimal `json:"price_amount" validate:"required"`
	PriceCurrency string          `json:"price_currency" validate:"required"`
	PayCurrency   string          `json:"pay_currency" validate:"required"`
}

func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	merchant, ok := middleware.MerchantFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewAuthenticationError(nil), h.logger)
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	view, err := h.paymentService.Create(r.Context(), merchant, services.CreatePaymentCommand{
		PriceAmount:   req.PriceAmount,
		PriceCurrency: req.PriceCurrency,
		PayCurrency:   req.PayCurrency,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	merchant, ok := middleware.MerchantFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewAuthenticationError(nil), h.logger)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, application.NewNotFoundError(), h.logger)
		return
	}

	view, err := h.paymentService.Get(r.Context(), merchant, id)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, view)
}

func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	merchant, ok := middleware.MerchantFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewAuthenticationError(nil), h.logger)
		return
	}

	limit := intQuery(r, "limit", 50)
	offset := intQuery(r, "offset", 0)

	views, err := h.paymentService.List(r.Context(), merchant, limit, offset)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, views)
}
