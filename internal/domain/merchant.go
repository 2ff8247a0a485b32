package domain

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// MerchantStatus represents the state of a merchant account.
type MerchantStatus string

const (
	MerchantActive    MerchantStatus = "ACTIVE"
	MerchantSuspended MerchantStatus = "SUSPENDED"
)

// Merchant is a business entity holding API credentials. Records are created
// at onboarding and read-only inside the gateway.
type Merchant struct {
	ID     uuid.UUID
	Name   string
	Status MerchantStatus

	// IPAllowlist restricts API access to the listed CIDR ranges when
	// non-empty. An empty list means no restriction.
	IPAllowlist []netip.Prefix

	CallbackURL    *string
	CallbackSecret *string

	CreatedAt time.Time
}

func (m *Merchant) IsActive() bool {
	return m.Status == MerchantActive
}

// AllowsIP reports whether addr is permitted by the merchant's allowlist.
func (m *Merchant) AllowsIP(addr netip.Addr) bool {
	if len(m.IPAllowlist) == 0 {
		return true
	}
	for _, prefix := range m.IPAllowlist {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// APICredential authenticates a merchant. The secret is stored only as a
// keyed hash; PublicID resolves to at most one credential.
type APICredential struct {
	PublicID   string
	SecretHash []byte
	MerchantID uuid.UUID
	LastUsedAt *time.Time
	CreatedAt  time.Time
}
