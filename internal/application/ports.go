package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/blockgatepay/gateway/internal/domain"
)

// ProcessorClient is the port for the external payment processor.
type ProcessorClient interface {
	CreatePayment(ctx context.Context, req ProcessorPaymentRequest) (*ProcessorPaymentResponse, error)
	GetPayment(ctx context.Context, externalID string) (*ProcessorPaymentResponse, error)
}

// ProcessorPaymentRequest is the outbound create call. OrderID carries our
// internal payment id so callbacks can be correlated.
type ProcessorPaymentRequest struct {
	OrderID       string          `json:"order_id"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	PriceCurrency string          `json:"price_currency"`
	PayCurrency   string          `json:"pay_currency"`
	CallbackURL   string          `json:"ipn_callback_url"`
}

type ProcessorPaymentResponse struct {
	PaymentID  string          `json:"payment_id"`
	OrderID    string          `json:"order_id"`
	Status     string          `json:"payment_status"`
	PayAddress string          `json:"pay_address"`
	PayAmount  decimal.Decimal `json:"pay_amount"`
	ExpiresAt  time.Time       `json:"expiration_date"`
}

// PaymentRepository is the port for payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Payment, error)
	FindByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Payment, error)
	FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error)

	// Update persists the payment's current fields unconditionally.
	Update(ctx context.Context, payment *domain.Payment) error

	// UpdateStatusFrom applies payment's fields only if the stored status
	// still equals expected. It returns false when another writer advanced
	// the row first; callers treat that as a lost race, not an error.
	UpdateStatusFrom(ctx context.Context, payment *domain.Payment, expected domain.PaymentStatus) (bool, error)
}

// CredentialStore resolves API credentials to merchants.
type CredentialStore interface {
	FindByPublicID(ctx context.Context, publicID string) (*domain.APICredential, *domain.Merchant, error)
	TouchLastUsed(ctx context.Context, publicID string, at time.Time) error
}

// MerchantRepository reads merchant records. Merchants are onboarded out of
// band and read-only here.
type MerchantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
}

// NotificationRepository queues outbound merchant callbacks for at-least-once
// delivery.
type NotificationRepository interface {
	Enqueue(ctx context.Context, n *domain.Notification) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Notification, error)
	Update(ctx context.Context, n *domain.Notification) error
}

// NotificationSender performs one delivery attempt to a merchant callback URL.
type NotificationSender interface {
	Send(ctx context.Context, n *domain.Notification, signingSecret string) error
}
