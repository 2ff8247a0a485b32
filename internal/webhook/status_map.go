package webhook

import (
	"github.com/blockgatepay/gateway/internal/domain"
)

// statusMap is the fixed, total mapping from the processor's status
// vocabulary to the internal lifecycle. Anything missing here is rejected
// rather than guessed at.
var statusMap = map[string]domain.PaymentStatus{
	"waiting":        domain.StatusPending,
	"confirming":     domain.StatusPending,
	"sending":        domain.StatusPending,
	"partially_paid": domain.StatusPending,
	"confirmed":      domain.StatusConfirmed,
	"finished":       domain.StatusConfirmed,
	"failed":         domain.StatusFailed,
	"refunded":       domain.StatusFailed,
	"expired":        domain.StatusExpired,
}

// MapStatus translates a processor status into the internal enum.
func MapStatus(external string) (domain.PaymentStatus, error) {
	mapped, ok := statusMap[external]
	if !ok {
		return "", domain.NewUnknownExternalStatusError(external)
	}
	return mapped, nil
}
