package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/domain"
)

// ExpirationWorker sweeps PENDING payments whose pay window elapsed without
// a confirming webhook. The conditional update keeps it from racing a
// late-arriving webhook delivery.
type ExpirationWorker struct {
	paymentRepo application.PaymentRepository
	interval    time.Duration
	batchSize   int
	logger      *slog.Logger
}

func NewExpirationWorker(
	paymentRepo application.PaymentRepository,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpirationWorker {
	return &ExpirationWorker{
		paymentRepo: paymentRepo,
		interval:    interval,
		batchSize:   batchSize,
		logger:      logger,
	}
}

func (w *ExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("expiration worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiration worker stopping")
			return
		case <-ticker.C:
			if err := w.expireOverdue(ctx); err != nil {
				w.logger.Error("expiration sweep failed", "error", err)
			}
		}
	}
}

func (w *ExpirationWorker) expireOverdue(ctx context.Context) error {
	overdue, err := w.paymentRepo.FindExpired(ctx, time.Now().UTC(), w.batchSize)
	if err != nil {
		return fmt.Errorf("find expired payments: %w", err)
	}

	var expired int
	for _, payment := range overdue {
		if err := payment.MarkExpired(); err != nil {
			w.logger.Error("cannot expire payment",
				"payment_id", payment.ID,
				"status", payment.Status,
				"error", err,
			)
			continue
		}

		applied, err := w.paymentRepo.UpdateStatusFrom(ctx, payment, domain.StatusPending)
		if err != nil {
			w.logger.Error("failed to persist expiry", "payment_id", payment.ID, "error", err)
			continue
		}
		if applied {
			expired++
		}
	}

	if expired > 0 {
		w.logger.Info("expired overdue payments", "count", expired)
	}

	return nil
}
