package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/blockgatepay/gateway/internal/domain"
)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Enqueue(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO merchant_notifications (
			id, payment_id, merchant_id, url, payload, status,
			attempts, next_retry_at, last_error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	m := toNotificationModel(n)
	_, err := r.db.Pool.Exec(ctx, query,
		m.ID,
		m.PaymentID,
		m.MerchantID,
		m.URL,
		m.Payload,
		m.Status,
		m.Attempts,
		m.NextRetryAt,
		m.LastError,
		m.CreatedAt,
		m.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	return nil
}

// FindDue returns pending notifications whose retry time has come.
func (r *NotificationRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, payment_id, merchant_id, url, payload, status,
		       attempts, next_retry_at, last_error, created_at, updated_at
		FROM merchant_notifications
		WHERE status = 'PENDING'
		  AND (next_retry_at IS NULL OR next_retry_at <= $1)
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query due notifications: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Notification, error) {
		var m NotificationModel
		err := row.Scan(
			&m.ID, &m.PaymentID, &m.MerchantID, &m.URL, &m.Payload, &m.Status,
			&m.Attempts, &m.NextRetryAt, &m.LastError, &m.CreatedAt, &m.UpdatedAt,
		)
		return toDomainNotification(m), err
	})

	if err != nil {
		return nil, fmt.Errorf("scan due notifications: %w", err)
	}
	return results, nil
}

func (r *NotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	query := `
		UPDATE merchant_notifications
		SET status = $1, attempts = $2, next_retry_at = $3,
			last_error = $4, updated_at = $5
		WHERE id = $6
	`

	m := toNotificationModel(n)
	result, err := r.db.Pool.Exec(ctx, query,
		m.Status,
		m.Attempts,
		m.NextRetryAt,
		m.LastError,
		m.UpdatedAt,
		m.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s not found", n.ID)
	}

	return nil
}
