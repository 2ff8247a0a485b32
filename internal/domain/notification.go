package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus represents the delivery state of an outbound merchant
// callback.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "PENDING"
	NotificationDelivered NotificationStatus = "DELIVERED"
	NotificationFailed    NotificationStatus = "FAILED"
)

// Notification records one merchant-facing payment status callback and its
// delivery attempts. Delivery is at-least-once: the row stays PENDING until a
// 2xx response or the attempt cap is reached.
type Notification struct {
	ID         uuid.UUID
	PaymentID  uuid.UUID
	MerchantID uuid.UUID
	URL        string
	Payload    []byte

	Status      NotificationStatus
	Attempts    int
	NextRetryAt *time.Time
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewNotification(paymentID, merchantID uuid.UUID, url string, payload []byte) *Notification {
	now := time.Now().UTC()
	return &Notification{
		ID:         uuid.New(),
		PaymentID:  paymentID,
		MerchantID: merchantID,
		URL:        url,
		Payload:    payload,
		Status:     NotificationPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ScheduleRetry records a failed attempt and pushes the next one out by delay.
func (n *Notification) ScheduleRetry(delay time.Duration, lastError string) {
	n.Attempts++
	next := time.Now().UTC().Add(delay)
	n.NextRetryAt = &next
	n.LastError = &lastError
	n.UpdatedAt = time.Now().UTC()
}

func (n *Notification) MarkDelivered() {
	n.Attempts++
	n.Status = NotificationDelivered
	n.UpdatedAt = time.Now().UTC()
}

func (n *Notification) MarkFailed(lastError string) {
	n.Status = NotificationFailed
	n.LastError = &lastError
	n.UpdatedAt = time.Now().UTC()
}
