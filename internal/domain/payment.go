// Package domain encodes the payment entity and its lifecycle rules.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	StatusCreated   PaymentStatus = "CREATED"
	StatusPending   PaymentStatus = "PENDING"
	StatusConfirmed PaymentStatus = "CONFIRMED"
	StatusExpired   PaymentStatus = "EXPIRED"
	StatusFailed    PaymentStatus = "FAILED"
)

// Payment is the brand-internal record of a crypto payment. ExternalID and
// friends come from the processor and must never leave the façade.
type Payment struct {
	ID         uuid.UUID
	MerchantID uuid.UUID

	PriceAmount   decimal.Decimal
	PriceCurrency string
	PayCurrency   string

	ExternalID *string
	PayAddress *string
	PayAmount  *decimal.Decimal

	Status PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt *time.Time
}

func NewPayment(merchantID uuid.UUID, amount decimal.Decimal, priceCurrency, payCurrency string) (*Payment, error) {
	if merchantID == uuid.Nil {
		return nil, NewMissingRequiredFieldError("merchant ID")
	}
	if !amount.IsPositive() {
		return nil, NewInvalidAmountError(amount)
	}
	if priceCurrency == "" {
		return nil, NewMissingRequiredFieldError("price currency")
	}
	if payCurrency == "" {
		return nil, NewMissingRequiredFieldError("pay currency")
	}

	now := time.Now().UTC()
	return &Payment{
		ID:            uuid.New(),
		MerchantID:    merchantID,
		PriceAmount:   amount,
		PriceCurrency: priceCurrency,
		PayCurrency:   payCurrency,
		Status:        StatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MarkPending records the processor's quote and moves the payment to PENDING.
func (p *Payment) MarkPending(externalID, payAddress string, payAmount decimal.Decimal, expiresAt time.Time) error {
	if err := p.transition(StatusPending); err != nil {
		return err
	}
	p.ExternalID = &externalID
	p.PayAddress = &payAddress
	p.PayAmount = &payAmount
	p.ExpiresAt = &expiresAt
	return nil
}

func (p *Payment) Confirm() error {
	return p.transition(StatusConfirmed)
}

func (p *Payment) Fail() error {
	return p.transition(StatusFailed)
}

func (p *Payment) MarkExpired() error {
	return p.transition(StatusExpired)
}

func (p *Payment) transition(target PaymentStatus) error {
	if err := p.CanTransitionTo(target); err != nil {
		return err
	}
	p.Status = target
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// CanTransitionTo validates a status change against the lifecycle:
//
//	CREATED → PENDING, FAILED
//	PENDING → CONFIRMED, EXPIRED, FAILED
//
// CONFIRMED, EXPIRED and FAILED are terminal.
func (p *Payment) CanTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case StatusCreated:
		return p.allow(target, StatusPending, StatusFailed)
	case StatusPending:
		return p.allow(target, StatusConfirmed, StatusExpired, StatusFailed)
	default:
		return NewInvalidTransitionError(p.Status, target)
	}
}

func (p *Payment) allow(target PaymentStatus, allowed ...PaymentStatus) error {
	for _, s := range allowed {
		if target == s {
			return nil
		}
	}
	return NewInvalidTransitionError(p.Status, target)
}

func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case StatusConfirmed, StatusExpired, StatusFailed:
		return true
	default:
		return false
	}
}
