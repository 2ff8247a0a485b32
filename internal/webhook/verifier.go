// Package webhook authenticates inbound processor callbacks and translates
// their status vocabulary into the internal payment lifecycle.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"

	"github.com/shopspring/decimal"
)

// Event is a processor status callback, decoded only after its signature has
// been verified.
type Event struct {
	PaymentID    string          `json:"payment_id"`
	OrderID      string          `json:"order_id"`
	Status       string          `json:"payment_status"`
	PayAmount    decimal.Decimal `json:"pay_amount"`
	ActuallyPaid decimal.Decimal `json:"actually_paid"`
}

// Result is the outcome of signature verification. The event payload is
// reachable only through the verified arm, so unverified bodies cannot be
// processed by accident.
type Result struct {
	event  Event
	ok     bool
	reason string
}

// Verified returns the decoded event and true when the signature checked out.
func (r Result) Verified() (Event, bool) {
	return r.event, r.ok
}

// Reason describes why verification failed. For logs only, never responses.
func (r Result) Reason() string {
	return r.reason
}

// Verifier checks processor callback signatures. The hash algorithm comes
// from configuration so a processor-side change does not require a rebuild.
type Verifier struct {
	secret  []byte
	newHash func() hash.Hash
}

func NewVerifier(secret, algorithm string) (*Verifier, error) {
	var newHash func() hash.Hash
	switch algorithm {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	default:
		return nil, fmt.Errorf("unsupported signature algorithm %q", algorithm)
	}

	return &Verifier{
		secret:  []byte(secret),
		newHash: newHash,
	}, nil
}

// Verify computes the expected HMAC over the exact raw body bytes and
// compares it with the delivered hex signature in constant time.
func (v *Verifier) Verify(rawBody []byte, signature string) Result {
	delivered, err := hex.DecodeString(signature)
	if err != nil {
		return Result{reason: "signature is not valid hex"}
	}

	mac := hmac.New(v.newHash, v.secret)
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	if !hmac.Equal(expected, delivered) {
		return Result{reason: "signature mismatch"}
	}

	var event Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return Result{reason: fmt.Sprintf("malformed payload: %v", err)}
	}

	return Result{event: event, ok: true}
}

// Sign produces the hex HMAC for a payload. Used to sign outbound merchant
// notifications with the merchant's callback secret, and by tests.
func Sign(secret []byte, newHash func() hash.Hash, payload []byte) string {
	mac := hmac.New(newHash, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
