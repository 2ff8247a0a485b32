package postgres

import (
	"time"

	"github.com/google/uuid"
)

// Row models. Amounts travel as NUMERIC text and are converted to decimals
// in the mappers.
type PaymentModel struct {
	ID            uuid.UUID
	MerchantID    uuid.UUID
	PriceAmount   string
	PriceCurrency string
	PayCurrency   string
	ExternalID    *string
	PayAddress    *string
	PayAmount     *string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     *time.Time
}

type MerchantModel struct {
	ID             uuid.UUID
	Name           string
	Status         string
	IPAllowlist    []string
	CallbackURL    *string
	CallbackSecret *string
	CreatedAt      time.Time
}

type CredentialModel struct {
	PublicID   string
	SecretHash []byte
	MerchantID uuid.UUID
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

type NotificationModel struct {
	ID          uuid.UUID
	PaymentID   uuid.UUID
	MerchantID  uuid.UUID
	URL         string
	Payload     []byte
	Status      string
	Attempts    int
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
