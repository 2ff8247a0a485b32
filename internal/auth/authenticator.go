// Package auth implements merchant API-key authentication.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/blockgatepay/gateway/internal/application"
	"github.com/blockgatepay/gateway/internal/domain"
)

// Distinct failure kinds, for internal logging only. Callers must collapse
// all of them into one uniform response so credentials cannot be enumerated.
var (
	ErrMalformedCredential = errors.New("malformed credential")
	ErrUnknownCredential   = errors.New("unknown credential")
	ErrInactiveCredential  = errors.New("inactive credential")
	ErrSecretMismatch      = errors.New("secret mismatch")
	ErrIPNotAllowed        = errors.New("ip not allowed")
)

type Authenticator struct {
	store  application.CredentialStore
	pepper []byte
	logger *slog.Logger
}

func NewAuthenticator(store application.CredentialStore, pepper string, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		store:  store,
		pepper: []byte(pepper),
		logger: logger,
	}
}

// HashSecret derives the stored form of a credential secret: HMAC-SHA-256
// under the process-wide pepper. Plaintext secrets never hit storage or logs.
func HashSecret(pepper []byte, secret string) []byte {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}

// Authenticate resolves a "publicId:secret" header value to a merchant.
// On success it schedules a last-used update that neither blocks nor fails
// the authentication result.
func (a *Authenticator) Authenticate(ctx context.Context, credential string, clientIP netip.Addr) (*domain.Merchant, error) {
	publicID, secret, ok := strings.Cut(credential, ":")
	if !ok || publicID == "" || secret == "" {
		return nil, ErrMalformedCredential
	}

	cred, merchant, err := a.store.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			return nil, ErrUnknownCredential
		}
		return nil, err
	}

	if !merchant.IsActive() {
		return nil, ErrInactiveCredential
	}

	presented := HashSecret(a.pepper, secret)
	if subtle.ConstantTimeCompare(presented, cred.SecretHash) != 1 {
		return nil, ErrSecretMismatch
	}

	if !merchant.AllowsIP(clientIP) {
		return nil, ErrIPNotAllowed
	}

	go a.touchLastUsed(publicID)

	return merchant, nil
}

func (a *Authenticator) touchLastUsed(publicID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.store.TouchLastUsed(ctx, publicID, time.Now().UTC()); err != nil {
		a.logger.Warn("failed to update credential last-used timestamp",
			"public_id", publicID,
			"error", err,
		)
	}
}
