package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockgatepay/gateway/internal/domain"
)

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*domain.Notification
	findDueErr    error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*domain.Notification)}
}

func (f *fakeNotificationRepo) Enqueue(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *n
	f.notifications[n.ID] = &c
	return nil
}

func (f *fakeNotificationRepo) FindDue(_ context.Context, now time.Time, limit int) ([]*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findDueErr != nil {
		return nil, f.findDueErr
	}
	var due []*domain.Notification
	for _, n := range f.notifications {
		if n.Status != domain.NotificationPending {
			continue
		}
		if n.NextRetryAt == nil || !n.NextRetryAt.After(now) {
			c := *n
			due = append(due, &c)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (f *fakeNotificationRepo) Update(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *n
	f.notifications[n.ID] = &c
	return nil
}

func (f *fakeNotificationRepo) stored(id uuid.UUID) *domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil
	}
	c := *n
	return &c
}

type fakeMerchantRepo struct {
	merchants map[uuid.UUID]*domain.Merchant
}

func (f *fakeMerchantRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	m, ok := f.merchants[id]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return m, nil
}

type fakeSender struct {
	mu    sync.Mutex
	err   error
	sends int
}

func (f *fakeSender) Send(context.Context, *domain.Notification, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	return f.err
}

func (f *fakeSender) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (f *fakePaymentRepo) put(p *domain.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *p
	f.payments[p.ID] = &c
}

func (f *fakePaymentRepo) stored(id uuid.UUID) *domain.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func (f *fakePaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	f.put(p)
	return nil
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	if p := f.stored(id); p != nil {
		return p, nil
	}
	return nil, domain.NewPaymentNotFoundError(id.String())
}

func (f *fakePaymentRepo) FindByExternalID(_ context.Context, externalID string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ExternalID != nil && *p.ExternalID == externalID {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(externalID)
}

func (f *fakePaymentRepo) FindByMerchant(context.Context, uuid.UUID, int, int) ([]*domain.Payment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) FindExpired(_ context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var overdue []*domain.Payment
	for _, p := range f.payments {
		if p.Status == domain.StatusPending && p.ExpiresAt != nil && p.ExpiresAt.Before(cutoff) {
			c := *p
			overdue = append(overdue, &c)
		}
		if len(overdue) == limit {
			break
		}
	}
	return overdue, nil
}

func (f *fakePaymentRepo) Update(_ context.Context, p *domain.Payment) error {
	f.put(p)
	return nil
}

func (f *fakePaymentRepo) UpdateStatusFrom(_ context.Context, p *domain.Payment, expected domain.PaymentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.payments[p.ID]
	if !ok || stored.Status != expected {
		return false, nil
	}
	c := *p
	f.payments[p.ID] = &c
	return true, nil
}
