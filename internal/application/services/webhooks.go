package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/domain"
	"github.com/blockgatepay/gateway/internal/webhook"
)

// WebhookService consumes verified processor callbacks, advances payment
// state, and fans the change out to merchant callback URLs.
type WebhookService struct {
	verifier      *webhook.Verifier
	paymentRepo   application.PaymentRepository
	merchantRepo  application.MerchantRepository
	notifications application.NotificationRepository
	sender        application.NotificationSender
	notifyTimeout time.Duration
	logger        *slog.Logger
}

func NewWebhookService(
	verifier *webhook.Verifier,
	paymentRepo application.PaymentRepository,
	merchantRepo application.MerchantRepository,
	notifications application.NotificationRepository,
	sender application.NotificationSender,
	notifyTimeout time.Duration,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		verifier:      verifier,
		paymentRepo:   paymentRepo,
		merchantRepo:  merchantRepo,
		notifications: notifications,
		sender:        sender,
		notifyTimeout: notifyTimeout,
		logger:        logger,
	}
}

// HandleEvent verifies and applies one processor callback. Once the signature
// checks out and the status lands (or is a no-op against an advanced row),
// the error is nil so the processor stops redelivering.
func (s *WebhookService) HandleEvent(ctx context.Context, rawBody []byte, signature string) error {
	result := s.verifier.Verify(rawBody, signature)
	event, ok := result.Verified()
	if !ok {
		s.logger.Warn("unverified webhook event dropped", "reason", result.Reason())
		return application.NewSignatureError(errors.New(result.Reason()))
	}

	mapped, err := webhook.MapStatus(event.Status)
	if err != nil {
		s.logger.Error("webhook with unknown processor status",
			"external_id", event.PaymentID,
			"status", event.Status,
		)
		return application.NewInvalidStateError(err)
	}

	payment, err := s.findPayment(ctx, event)
	if err != nil {
		return err
	}

	applied, err := s.applyStatus(ctx, payment, mapped)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Info("webhook ignored",
			"payment_id", payment.ID,
			"current_status", payment.Status,
			"mapped_status", mapped,
		)
		return nil
	}

	s.logger.Info("payment status updated",
		"payment_id", payment.ID,
		"status", payment.Status,
	)

	s.notifyMerchant(ctx, payment)
	return nil
}

func (s *WebhookService) findPayment(ctx context.Context, event webhook.Event) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindByExternalID(ctx, event.PaymentID)
	if err == nil {
		return payment, nil
	}
	if !domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
		return nil, application.NewInternalError(err)
	}

	// The processor may call back before our create transaction stored its
	// id; fall back to the order id we handed it.
	internalID, parseErr := uuid.Parse(event.OrderID)
	if parseErr != nil {
		return nil, application.NewNotFoundError()
	}

	payment, err = s.paymentRepo.FindByID(ctx, internalID)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, application.NewNotFoundError()
		}
		return nil, application.NewInternalError(err)
	}
	return payment, nil
}

// applyStatus moves the payment forward monotonically. Terminal payments and
// repeated statuses are accepted no-ops. Returns whether a transition was
// actually persisted.
func (s *WebhookService) applyStatus(ctx context.Context, payment *domain.Payment, mapped domain.PaymentStatus) (bool, error) {
	if payment.IsTerminal() || payment.Status == mapped {
		return false, nil
	}

	// The CREATED→PENDING hop belongs to the façade, which has the
	// processor's quote in hand. A racing webhook just waits its turn.
	if mapped == domain.StatusPending {
		return false, nil
	}

	expected := payment.Status

	var err error
	switch mapped {
	case domain.StatusConfirmed:
		err = payment.Confirm()
	case domain.StatusExpired:
		err = payment.MarkExpired()
	case domain.StatusFailed:
		err = payment.Fail()
	default:
		err = payment.CanTransitionTo(mapped)
	}
	if err != nil {
		return false, application.NewInvalidStateError(err)
	}

	applied, err := s.paymentRepo.UpdateStatusFrom(ctx, payment, expected)
	if err != nil {
		return false, application.NewInternalError(err)
	}
	if !applied {
		// Lost the race against a concurrent delivery. The winner's state
		// stands; this delivery becomes a no-op.
		return false, nil
	}
	return true, nil
}

// merchantNotification is the payload delivered to merchant callback URLs.
type merchantNotification struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	Status        string    `json:"status"`
	PriceAmount   string    `json:"price_amount"`
	PriceCurrency string    `json:"price_currency"`
	PayCurrency   string    `json:"pay_currency"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// notifyMerchant enqueues the callback and makes one best-effort delivery
// attempt. Failures are left for the notification worker; nothing here can
// fail the webhook response.
func (s *WebhookService) notifyMerchant(ctx context.Context, payment *domain.Payment) {
	merchant, err := s.merchantRepo.FindByID(ctx, payment.MerchantID)
	if err != nil {
		s.logger.Error("merchant lookup for notification failed",
			"merchant_id", payment.MerchantID,
			"error", err,
		)
		return
	}

	if merchant.CallbackURL == nil || merchant.CallbackSecret == nil {
		return
	}

	payload, err := json.Marshal(merchantNotification{
		PaymentID:     payment.ID,
		Status:        string(payment.Status),
		PriceAmount:   payment.PriceAmount.String(),
		PriceCurrency: payment.PriceCurrency,
		PayCurrency:   payment.PayCurrency,
		UpdatedAt:     payment.UpdatedAt,
	})
	if err != nil {
		s.logger.Error("failed to marshal merchant notification", "error", err)
		return
	}

	notification := domain.NewNotification(payment.ID, merchant.ID, *merchant.CallbackURL, payload)
	if err := s.notifications.Enqueue(ctx, notification); err != nil {
		s.logger.Error("failed to enqueue merchant notification",
			"payment_id", payment.ID,
			"error", err,
		)
		return
	}

	go s.deliver(notification, *merchant.CallbackSecret)
}

func (s *WebhookService) deliver(notification *domain.Notification, secret string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
	defer cancel()

	if err := s.sender.Send(ctx, notification, secret); err != nil {
		s.logger.Warn("merchant notification delivery failed",
			"notification_id", notification.ID,
			"payment_id", notification.PaymentID,
			"attempt", notification.Attempts+1,
			"error", err,
		)
		notification.ScheduleRetry(time.Minute, err.Error())
	} else {
		notification.MarkDelivered()
	}

	if err := s.notifications.Update(ctx, notification); err != nil {
		s.logger.Error("failed to record notification attempt",
			"notification_id", notification.ID,
			"error", err,
		)
	}
}
