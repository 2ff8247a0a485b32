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

const paymentColumns = `
	id, merchant_id, price_amount, price_currency, pay_currency,
	external_id, pay_address, pay_amount, status,
	created_at, updated_at, expires_at
`

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, merchant_id, price_amount, price_currency, pay_currency,
			external_id, pay_address, pay_amount, status,
			created_at, updated_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	m := toPaymentModel(payment)
	_, err := r.db.Pool.Exec(ctx, query,
		m.ID,
		m.MerchantID,
		m.PriceAmount,
		m.PriceCurrency,
		m.PayCurrency,
		m.ExternalID,
		m.PayAddress,
		m.PayAmount,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
		m.ExpiresAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	row := r.db.Pool.QueryRow(ctx, query, id)
	return scanPayment(row, id.String())
}

func (r *PaymentRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE external_id = $1`

	row := r.db.Pool.QueryRow(ctx, query, externalID)
	return scanPayment(row, externalID)
}

func (r *PaymentRepository) FindByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query payments by merchant: %w", err)
	}

	return collectPayments(rows)
}

// FindExpired returns PENDING payments whose expiry passed before cutoff.
func (r *PaymentRepository) FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'PENDING'
		  AND expires_at IS NOT NULL
		  AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired payments: %w", err)
	}

	return collectPayments(rows)
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET external_id = $1, pay_address = $2, pay_amount = $3,
			status = $4, updated_at = $5, expires_at = $6
		WHERE id = $7
	`

	m := toPaymentModel(payment)
	result, err := r.db.Pool.Exec(ctx, query,
		m.ExternalID,
		m.PayAddress,
		m.PayAmount,
		m.Status,
		m.UpdatedAt,
		m.ExpiresAt,
		m.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewPaymentNotFoundError(payment.ID.String())
	}

	return nil
}

// UpdateStatusFrom is the per-row compare-and-swap that serializes status
// transitions. The conditional WHERE means two concurrent webhook deliveries
// cannot both apply a transition; the loser sees applied=false.
func (r *PaymentRepository) UpdateStatusFrom(ctx context.Context, payment *domain.Payment, expected domain.PaymentStatus) (bool, error) {
	query := `
		UPDATE payments
		SET external_id = $1, pay_address = $2, pay_amount = $3,
			status = $4, updated_at = $5, expires_at = $6
		WHERE id = $7 AND status = $8
	`

	m := toPaymentModel(payment)
	result, err := r.db.Pool.Exec(ctx, query,
		m.ExternalID,
		m.PayAddress,
		m.PayAmount,
		m.Status,
		m.UpdatedAt,
		m.ExpiresAt,
		m.ID,
		string(expected),
	)

	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func collectPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		var m PaymentModel
		err := row.Scan(
			&m.ID, &m.MerchantID, &m.PriceAmount, &m.PriceCurrency, &m.PayCurrency,
			&m.ExternalID, &m.PayAddress, &m.PayAmount, &m.Status,
			&m.CreatedAt, &m.UpdatedAt, &m.ExpiresAt,
		)
		if err != nil {
			return nil, err
		}
		return toDomainPayment(m)
	})

	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}
	return results, nil
}

func scanPayment(row pgx.Row, id string) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.MerchantID, &m.PriceAmount, &m.PriceCurrency, &m.PayCurrency,
		&m.ExternalID, &m.PayAddress, &m.PayAmount, &m.Status,
		&m.CreatedAt, &m.UpdatedAt, &m.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPaymentNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainPayment(m)
}
