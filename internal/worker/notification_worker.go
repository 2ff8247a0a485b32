package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/domain"
)

// NotificationWorker re-drives merchant callbacks that failed their first
// delivery attempt. Backoff doubles per attempt; after maxAttempts the
// notification is parked as FAILED for manual follow-up.
type NotificationWorker struct {
	notifications application.NotificationRepository
	merchantRepo  application.MerchantRepository
	sender        application.NotificationSender
	interval      time.Duration
	batchSize     int
	maxAttempts   int
	logger        *slog.Logger
}

func NewNotificationWorker(
	notifications application.NotificationRepository,
	merchantRepo application.MerchantRepository,
	sender application.NotificationSender,
	interval time.Duration,
	batchSize int,
	maxAttempts int,
	logger *slog.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		merchantRepo:  merchantRepo,
		sender:        sender,
		interval:      interval,
		batchSize:     batchSize,
		maxAttempts:   maxAttempts,
		logger:        logger,
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	w.logger.Info("notification worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopping")
			return
		case <-ticker.C:
			if err := w.processDue(ctx); err != nil {
				w.logger.Error("notification processing failed", "error", err)
			}
		}
	}
}

func (w *NotificationWorker) processDue(ctx context.Context) error {
	due, err := w.notifications.FindDue(ctx, time.Now().UTC(), w.batchSize)
	if err != nil {
		return fmt.Errorf("find due notifications: %w", err)
	}

	var delivered int
	for _, n := range due {
		if err := w.attempt(ctx, n); err != nil {
			w.logger.Warn("notification redelivery failed",
				"notification_id", n.ID,
				"payment_id", n.PaymentID,
				"attempt", n.Attempts,
				"error", err,
			)
		} else {
			delivered++
		}
	}

	if delivered > 0 {
		w.logger.Info("redelivered merchant notifications", "count", delivered)
	}

	return nil
}

func (w *NotificationWorker) attempt(ctx context.Context, n *domain.Notification) error {
	merchant, err := w.merchantRepo.FindByID(ctx, n.MerchantID)
	if err != nil {
		return fmt.Errorf("merchant lookup: %w", err)
	}
	if merchant.CallbackSecret == nil {
		n.MarkFailed("merchant has no callback secret")
		return w.notifications.Update(ctx, n)
	}

	sendErr := w.sender.Send(ctx, n, *merchant.CallbackSecret)
	if sendErr != nil {
		if n.Attempts+1 >= w.maxAttempts {
			n.MarkFailed(sendErr.Error())
		} else {
			n.ScheduleRetry(w.backoff(n.Attempts), sendErr.Error())
		}
		if err := w.notifications.Update(ctx, n); err != nil {
			return err
		}
		return sendErr
	}

	n.MarkDelivered()
	return w.notifications.Update(ctx, n)
}

func (w *NotificationWorker) backoff(attempts int) time.Duration {
	return time.Duration(1<<attempts) * time.Minute
}
