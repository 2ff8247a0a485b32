package webhook_test

import (
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockgatepay/gateway/internal/domain"
	"github.com/blockgatepay/gateway/internal/webhook"
)

const testSecret = "whsec_test_0123456789"

func signedBody(t *testing.T, body []byte) string {
	t.Helper()
	return webhook.Sign([]byte(testSecret), sha512.New, body)
}

func TestVerifier_Verify(t *testing.T) {
	verifier, err := webhook.NewVerifier(testSecret, "sha512")
	require.NoError(t, err)

	body := []byte(`{"payment_id":"np-42","order_id":"7b0f0b2e-0000-0000-0000-000000000001","payment_status":"confirmed","pay_amount":"0.0015"}`)

	t.Run("valid signature verifies and decodes", func(t *testing.T) {
		result := verifier.Verify(body, signedBody(t, body))

		event, ok := result.Verified()
		require.True(t, ok)
		assert.Equal(t, "np-42", event.PaymentID)
		assert.Equal(t, "confirmed", event.Status)
	})

	t.Run("verification is deterministic", func(t *testing.T) {
		sig := signedBody(t, body)
		for i := 0; i < 3; i++ {
			_, ok := verifier.Verify(body, sig).Verified()
			assert.True(t, ok)
		}
	})

	t.Run("any single bit flip in the body invalidates the signature", func(t *testing.T) {
		sig := signedBody(t, body)

		for i := range body {
			for bit := 0; bit < 8; bit++ {
				flipped := make([]byte, len(body))
				copy(flipped, body)
				flipped[i] ^= 1 << bit

				_, ok := verifier.Verify(flipped, sig).Verified()
				if ok {
					t.Fatalf("flipping bit %d of byte %d still verified", bit, i)
				}
			}
		}
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		otherSig := webhook.Sign([]byte("whsec_other"), sha512.New, body)

		result := verifier.Verify(body, otherSig)
		_, ok := result.Verified()
		assert.False(t, ok)
		assert.Equal(t, "signature mismatch", result.Reason())
	})

	t.Run("non-hex signature fails", func(t *testing.T) {
		result := verifier.Verify(body, "not-hex!")
		_, ok := result.Verified()
		assert.False(t, ok)
	})

	t.Run("valid signature over malformed json fails", func(t *testing.T) {
		junk := []byte(`{"payment_id":`)
		result := verifier.Verify(junk, signedBody(t, junk))
		_, ok := result.Verified()
		assert.False(t, ok)
	})

	t.Run("sha256 verifier accepts sha256 signatures", func(t *testing.T) {
		v256, err := webhook.NewVerifier(testSecret, "sha256")
		require.NoError(t, err)

		// A sha512 signature must not verify against a sha256 verifier.
		_, ok := v256.Verify(body, signedBody(t, body)).Verified()
		assert.False(t, ok)
	})

	t.Run("unsupported algorithm is rejected at construction", func(t *testing.T) {
		_, err := webhook.NewVerifier(testSecret, "md5")
		assert.Error(t, err)
	})
}

func TestMapStatus(t *testing.T) {
	cases := map[string]domain.PaymentStatus{
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

	for external, expected := range cases {
		mapped, err := webhook.MapStatus(external)
		require.NoError(t, err, external)
		assert.Equal(t, expected, mapped, external)
	}

	t.Run("unknown status is rejected, not guessed", func(t *testing.T) {
		_, err := webhook.MapStatus("on_hold")
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeUnknownExternalStatus))
	})
}
