package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/blockgatepay/gateway/internal/domain"
)

// MerchantRepository serves both credential resolution for the authenticator
// and merchant lookups for outbound notifications.
type MerchantRepository struct {
	db *DB
}

func NewMerchantRepository(db *DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// FindByPublicID resolves an API credential together with its merchant in
// one round trip.
func (r *MerchantRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.APICredential, *domain.Merchant, error) {
	query := `
		SELECT c.public_id, c.secret_hash, c.merchant_id, c.last_used_at, c.created_at,
		       m.id, m.name, m.status, m.ip_allowlist, m.callback_url, m.callback_secret, m.created_at
		FROM api_credentials c
		JOIN merchants m ON m.id = c.merchant_id
		WHERE c.public_id = $1
	`

	var c CredentialModel
	var m MerchantModel
	err := r.db.Pool.QueryRow(ctx, query, publicID).Scan(
		&c.PublicID, &c.SecretHash, &c.MerchantID, &c.LastUsedAt, &c.CreatedAt,
		&m.ID, &m.Name, &m.Status, &m.IPAllowlist, &m.CallbackURL, &m.CallbackSecret, &m.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrCredentialNotFound
		}
		return nil, nil, fmt.Errorf("failed to scan credential: %w", err)
	}

	merchant, err := toDomainMerchant(m)
	if err != nil {
		return nil, nil, err
	}

	return toDomainCredential(c), merchant, nil
}

func (r *MerchantRepository) TouchLastUsed(ctx context.Context, publicID string, at time.Time) error {
	query := `UPDATE api_credentials SET last_used_at = $1 WHERE public_id = $2`

	_, err := r.db.Pool.Exec(ctx, query, at, publicID)
	if err != nil {
		return fmt.Errorf("failed to update last_used_at: %w", err)
	}
	return nil
}

func (r *MerchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `
		SELECT id, name, status, ip_allowlist, callback_url, callback_secret, created_at
		FROM merchants
		WHERE id = $1
	`

	var m MerchantModel
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Status, &m.IPAllowlist, &m.CallbackURL, &m.CallbackSecret, &m.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("merchant %s not found", id)
		}
		return nil, fmt.Errorf("failed to scan merchant: %w", err)
	}

	return toDomainMerchant(m)
}
