package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/domain"
)

// PaymentService is the façade over the external processor. Responses carry
// the brand-internal view only; processor identifiers stay inside.
type PaymentService struct {
	paymentRepo      application.PaymentRepository
	processor        application.ProcessorClient
	platformBaseURL  string
	processorTimeout time.Duration
	logger           *slog.Logger
}

func NewPaymentService(
	paymentRepo application.PaymentRepository,
	processor application.ProcessorClient,
	platformBaseURL string,
	processorTimeout time.Duration,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:      paymentRepo,
		processor:        processor,
		platformBaseURL:  strings.TrimRight(platformBaseURL, "/"),
		processorTimeout: processorTimeout,
		logger:           logger,
	}
}

type CreatePaymentCommand struct {
	PriceAmount   decimal.Decimal
	PriceCurrency string
	PayCurrency   string
}

// PaymentView is what merchants see. No external id, no processor metadata.
type PaymentView struct {
	ID            uuid.UUID        `json:"id"`
	PriceAmount   decimal.Decimal  `json:"price_amount"`
	PriceCurrency string           `json:"price_currency"`
	PayCurrency   string           `json:"pay_currency"`
	PayAddress    string           `json:"pay_address,omitempty"`
	PayAmount     *decimal.Decimal `json:"pay_amount,omitempty"`
	CheckoutURL   string           `json:"checkout_url"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
}

// Create validates the request, persists a CREATED record, then asks the
// processor for a pay address and quote. The record is kept for audit even
// when the processor call fails.
func (s *PaymentService) Create(ctx context.Context, merchant *domain.Merchant, cmd CreatePaymentCommand) (*PaymentView, error) {
	if err := validateCreate(cmd); err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	payment, err := domain.NewPayment(merchant.ID, cmd.PriceAmount, strings.ToUpper(cmd.PriceCurrency), strings.ToUpper(cmd.PayCurrency))
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, application.NewInternalError(err)
	}

	procCtx, cancel := context.WithTimeout(ctx, s.processorTimeout)
	defer cancel()

	resp, err := s.processor.CreatePayment(procCtx, application.ProcessorPaymentRequest{
		OrderID:       payment.ID.String(),
		PriceAmount:   payment.PriceAmount,
		PriceCurrency: payment.PriceCurrency,
		PayCurrency:   payment.PayCurrency,
		CallbackURL:   s.platformBaseURL + "/api/v1/webhooks/processor",
	})
	if err != nil {
		s.failPayment(ctx, payment, err)
		return nil, application.NewUpstreamError(err)
	}

	if err := payment.MarkPending(resp.PaymentID, resp.PayAddress, resp.PayAmount, resp.ExpiresAt); err != nil {
		return nil, application.NewInternalError(err)
	}

	applied, err := s.paymentRepo.UpdateStatusFrom(ctx, payment, domain.StatusCreated)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if !applied {
		// A webhook beat us to the row; serve whatever state won.
		stored, err := s.paymentRepo.FindByID(ctx, payment.ID)
		if err != nil {
			return nil, application.NewInternalError(err)
		}
		payment = stored
	}

	s.logger.Info("payment created",
		"payment_id", payment.ID,
		"merchant_id", merchant.ID,
		"price_amount", payment.PriceAmount,
		"price_currency", payment.PriceCurrency,
		"pay_currency", payment.PayCurrency,
	)

	return s.toView(payment), nil
}

// Get returns the brand view of a payment owned by the merchant. Payments of
// other merchants are indistinguishable from missing ones.
func (s *PaymentService) Get(ctx context.Context, merchant *domain.Merchant, id uuid.UUID) (*PaymentView, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, application.NewNotFoundError()
		}
		return nil, application.NewInternalError(err)
	}

	if payment.MerchantID != merchant.ID {
		return nil, application.NewNotFoundError()
	}

	return s.toView(payment), nil
}

// List returns the merchant's payments, newest first.
func (s *PaymentService) List(ctx context.Context, merchant *domain.Merchant, limit, offset int) ([]*PaymentView, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	payments, err := s.paymentRepo.FindByMerchant(ctx, merchant.ID, limit, offset)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	views := make([]*PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, s.toView(p))
	}
	return views, nil
}

func (s *PaymentService) failPayment(ctx context.Context, payment *domain.Payment, cause error) {
	if err := payment.Fail(); err != nil {
		s.logger.Error("cannot mark payment failed", "payment_id", payment.ID, "error", err)
		return
	}

	if _, err := s.paymentRepo.UpdateStatusFrom(ctx, payment, domain.StatusCreated); err != nil {
		s.logger.Error("failed to persist payment failure",
			"payment_id", payment.ID,
			"error", err,
		)
	}

	s.logger.Error("processor call failed",
		"payment_id", payment.ID,
		"error", cause,
	)
}

func (s *PaymentService) toView(p *domain.Payment) *PaymentView {
	view := &PaymentView{
		ID:            p.ID,
		PriceAmount:   p.PriceAmount,
		PriceCurrency: p.PriceCurrency,
		PayCurrency:   p.PayCurrency,
		CheckoutURL:   fmt.Sprintf("%s/checkout/%s", s.platformBaseURL, p.ID),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		ExpiresAt:     p.ExpiresAt,
	}

	if p.PayAddress != nil {
		view.PayAddress = *p.PayAddress
	}
	if p.PayAmount != nil {
		view.PayAmount = p.PayAmount
	}

	return view
}

func validateCreate(cmd CreatePaymentCommand) error {
	if !cmd.PriceAmount.IsPositive() {
		return domain.NewInvalidAmountError(cmd.PriceAmount)
	}
	if cmd.PriceCurrency == "" {
		return domain.NewMissingRequiredFieldError("price currency")
	}
	if !domain.IsSupportedFiat(cmd.PriceCurrency) {
		return domain.NewUnsupportedCurrencyError(cmd.PriceCurrency)
	}
	if cmd.PayCurrency == "" {
		return domain.NewMissingRequiredFieldError("pay currency")
	}
	if !domain.IsSupportedPayCurrency(cmd.PayCurrency) {
		return domain.NewUnsupportedCurrencyError(cmd.PayCurrency)
	}
	return nil
}
