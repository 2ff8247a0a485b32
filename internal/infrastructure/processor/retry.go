package processor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/config"
)

// RetryProcessorClient retries transient processor failures with exponential
// backoff and jitter. The caller's context still bounds the whole attempt.
type RetryProcessorClient struct {
	inner      application.ProcessorClient
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryProcessorClient(inner application.ProcessorClient, cfg config.RetryConfig) application.ProcessorClient {
	return &RetryProcessorClient{
		inner:      inner,
		baseDelay:  cfg.BaseDelay,
		maxRetries: cfg.MaxRetries,
	}
}

func (r *RetryProcessorClient) CreatePayment(ctx context.Context, req application.ProcessorPaymentRequest) (*application.ProcessorPaymentResponse, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*application.ProcessorPaymentResponse, error) {
			return r.inner.CreatePayment(ctx, req)
		},
	)
}

func (r *RetryProcessorClient) GetPayment(ctx context.Context, externalID string) (*application.ProcessorPaymentResponse, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*application.ProcessorPaymentResponse, error) {
			return r.inner.GetPayment(ctx, externalID)
		},
	)
}

// Generic retry helper
func retry[T any](r *RetryProcessorClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Client errors (4xx) are final; server errors and timeouts get another shot.
func isRetryable(err error) bool {
	var procErr *ProcessorError
	if errors.As(err, &procErr) {
		return procErr.StatusCode >= 500
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryProcessorClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
