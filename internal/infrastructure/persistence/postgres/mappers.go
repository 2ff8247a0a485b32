package postgres

import (
	"fmt"
	"net/netip"

	"github.com/shopspring/decimal"

	"github.com/blockgatepay/gateway/internal/domain"
)

func toPaymentModel(p *domain.Payment) PaymentModel {
	m := PaymentModel{
		ID:            p.ID,
		MerchantID:    p.MerchantID,
		PriceAmount:   p.PriceAmount.String(),
		PriceCurrency: p.PriceCurrency,
		PayCurrency:   p.PayCurrency,
		ExternalID:    p.ExternalID,
		PayAddress:    p.PayAddress,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		ExpiresAt:     p.ExpiresAt,
	}
	if p.PayAmount != nil {
		s := p.PayAmount.String()
		m.PayAmount = &s
	}
	return m
}

func toDomainPayment(m PaymentModel) (*domain.Payment, error) {
	priceAmount, err := decimal.NewFromString(m.PriceAmount)
	if err != nil {
		return nil, fmt.Errorf("parse price amount %q: %w", m.PriceAmount, err)
	}

	p := &domain.Payment{
		ID:            m.ID,
		MerchantID:    m.MerchantID,
		PriceAmount:   priceAmount,
		PriceCurrency: m.PriceCurrency,
		PayCurrency:   m.PayCurrency,
		ExternalID:    m.ExternalID,
		PayAddress:    m.PayAddress,
		Status:        domain.PaymentStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		ExpiresAt:     m.ExpiresAt,
	}

	if m.PayAmount != nil {
		payAmount, err := decimal.NewFromString(*m.PayAmount)
		if err != nil {
			return nil, fmt.Errorf("parse pay amount %q: %w", *m.PayAmount, err)
		}
		p.PayAmount = &payAmount
	}

	return p, nil
}

func toDomainMerchant(m MerchantModel) (*domain.Merchant, error) {
	allowlist := make([]netip.Prefix, 0, len(m.IPAllowlist))
	for _, cidr := range m.IPAllowlist {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("parse allowlist entry %q: %w", cidr, err)
		}
		allowlist = append(allowlist, prefix)
	}

	return &domain.Merchant{
		ID:             m.ID,
		Name:           m.Name,
		Status:         domain.MerchantStatus(m.Status),
		IPAllowlist:    allowlist,
		CallbackURL:    m.CallbackURL,
		CallbackSecret: m.CallbackSecret,
		CreatedAt:      m.CreatedAt,
	}, nil
}

func toDomainCredential(m CredentialModel) *domain.APICredential {
	return &domain.APICredential{
		PublicID:   m.PublicID,
		SecretHash: m.SecretHash,
		MerchantID: m.MerchantID,
		LastUsedAt: m.LastUsedAt,
		CreatedAt:  m.CreatedAt,
	}
}

func toNotificationModel(n *domain.Notification) NotificationModel {
	return NotificationModel{
		ID:          n.ID,
		PaymentID:   n.PaymentID,
		MerchantID:  n.MerchantID,
		URL:         n.URL,
		Payload:     n.Payload,
		Status:      string(n.Status),
		Attempts:    n.Attempts,
		NextRetryAt: n.NextRetryAt,
		LastError:   n.LastError,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toDomainNotification(m NotificationModel) *domain.Notification {
	return &domain.Notification{
		ID:          m.ID,
		PaymentID:   m.PaymentID,
		MerchantID:  m.MerchantID,
		URL:         m.URL,
		Payload:     m.Payload,
		Status:      domain.NotificationStatus(m.Status),
		Attempts:    m.Attempts,
		NextRetryAt: m.NextRetryAt,
		LastError:   m.LastError,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
