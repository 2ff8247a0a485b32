// Package notify delivers signed payment status callbacks to merchant
// servers.
package notify

import (
	"bytes"
	"context"
	"crypto/sha512"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/domain"
	"github.com/blockgatepay/gateway/internal/webhook"
)

// HTTPSender posts the notification payload to the merchant's callback URL,
// signed with the merchant's callback secret so they can verify us the same
// way we verify the processor.
type HTTPSender struct {
	httpClient *http.Client
}

func NewHTTPSender(timeout time.Duration) application.NotificationSender {
	return &HTTPSender{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPSender) Send(ctx context.Context, n *domain.Notification, signingSecret string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(n.Payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Bgp-Signature", webhook.Sign([]byte(signingSecret), sha512.New, n.Payload))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("merchant endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
