package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/domain"
)

// In-memory fakes for the application ports. The payment repository mirrors
// the production compare-and-swap semantics so race behaviour is testable.

type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment

	CreateFn           func(ctx context.Context, payment *domain.Payment) error
	UpdateStatusFromFn func(ctx context.Context, payment *domain.Payment, expected domain.PaymentStatus) (bool, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[uuid.UUID]*domain.Payment),
	}
}

func clonePayment(p *domain.Payment) *domain.Payment {
	c := *p
	return &c
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (m *MockPaymentRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.NewPaymentNotFoundError(id.String())
	}
	return clonePayment(p), nil
}

func (m *MockPaymentRepository) FindByExternalID(_ context.Context, externalID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.ExternalID != nil && *p.ExternalID == externalID {
			return clonePayment(p), nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(externalID)
}

func (m *MockPaymentRepository) FindByMerchant(_ context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var results []*domain.Payment
	for _, p := range m.payments {
		if p.MerchantID == merchantID {
			results = append(results, clonePayment(p))
		}
	}
	return results, nil
}

func (m *MockPaymentRepository) FindExpired(_ context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var results []*domain.Payment
	for _, p := range m.payments {
		if p.Status == domain.StatusPending && p.ExpiresAt != nil && p.ExpiresAt.Before(cutoff) {
			results = append(results, clonePayment(p))
		}
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func (m *MockPaymentRepository) Update(_ context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return domain.NewPaymentNotFoundError(payment.ID.String())
	}
	m.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (m *MockPaymentRepository) UpdateStatusFrom(ctx context.Context, payment *domain.Payment, expected domain.PaymentStatus) (bool, error) {
	if m.UpdateStatusFromFn != nil {
		return m.UpdateStatusFromFn(ctx, payment, expected)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.payments[payment.ID]
	if !ok || stored.Status != expected {
		return false, nil
	}
	m.payments[payment.ID] = clonePayment(payment)
	return true, nil
}

// Stored returns the repository's copy, bypassing the port.
func (m *MockPaymentRepository) Stored(id uuid.UUID) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil
	}
	return clonePayment(p)
}

func (m *MockPaymentRepository) AllPayments() []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*domain.Payment
	for _, p := range m.payments {
		all = append(all, clonePayment(p))
	}
	return all
}

func (m *MockPaymentRepository) Put(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = clonePayment(p)
}

type MockProcessorClient struct {
	mu    sync.Mutex
	calls int

	CreatePaymentFn func(ctx context.Context, req application.ProcessorPaymentRequest) (*application.ProcessorPaymentResponse, error)
	GetPaymentFn    func(ctx context.Context, externalID string) (*application.ProcessorPaymentResponse, error)
}

func (m *MockProcessorClient) CreatePayment(ctx context.Context, req application.ProcessorPaymentRequest) (*application.ProcessorPaymentResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.CreatePaymentFn(ctx, req)
}

func (m *MockProcessorClient) GetPayment(ctx context.Context, externalID string) (*application.ProcessorPaymentResponse, error) {
	return m.GetPaymentFn(ctx, externalID)
}

func (m *MockProcessorClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type MockMerchantRepository struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func NewMockMerchantRepository(merchants ...*domain.Merchant) *MockMerchantRepository {
	m := &MockMerchantRepository{merchants: make(map[uuid.UUID]*domain.Merchant)}
	for _, merchant := range merchants {
		m.merchants[merchant.ID] = merchant
	}
	return m
}

func (m *MockMerchantRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	merchant, ok := m.merchants[id]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return merchant, nil
}

type MockNotificationRepository struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*domain.Notification
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[uuid.UUID]*domain.Notification),
	}
}

func (m *MockNotificationRepository) Enqueue(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *n
	m.notifications[n.ID] = &c
	return nil
}

func (m *MockNotificationRepository) FindDue(_ context.Context, now time.Time, limit int) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*domain.Notification
	for _, n := range m.notifications {
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

func (m *MockNotificationRepository) Update(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *n
	m.notifications[n.ID] = &c
	return nil
}

func (m *MockNotificationRepository) All() []*domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*domain.Notification
	for _, n := range m.notifications {
		c := *n
		all = append(all, &c)
	}
	return all
}

type MockNotificationSender struct {
	mu        sync.Mutex
	Err       error
	Delivered chan *domain.Notification
}

func NewMockNotificationSender() *MockNotificationSender {
	return &MockNotificationSender{
		Delivered: make(chan *domain.Notification, 16),
	}
}

func (m *MockNotificationSender) Send(_ context.Context, n *domain.Notification, _ string) error {
	m.mu.Lock()
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.Delivered <- n
	return nil
}

func (m *MockNotificationSender) FailWith(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}
