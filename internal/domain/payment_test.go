package domain_test

import (
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockgatepay/gateway/internal/domain"
)

func TestNewPayment(t *testing.T) {
	merchantID := uuid.New()

	t.Run("creates payment successfully", func(t *testing.T) {
		payment, err := domain.NewPayment(merchantID, decimal.NewFromInt(100), "USD", "BTC")

		require.NoError(t, err)
		assert.Equal(t, merchantID, payment.MerchantID)
		assert.True(t, payment.PriceAmount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "USD", payment.PriceCurrency)
		assert.Equal(t, "BTC", payment.PayCurrency)
		assert.Equal(t, domain.StatusCreated, payment.Status)
		assert.NotZero(t, payment.CreatedAt)
		assert.Nil(t, payment.ExternalID)
	})

	t.Run("rejects nil merchant", func(t *testing.T) {
		_, err := domain.NewPayment(uuid.Nil, decimal.NewFromInt(100), "USD", "BTC")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "merchant ID is required")
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := domain.NewPayment(merchantID, decimal.Zero, "USD", "BTC")
		assert.Error(t, err)

		_, err = domain.NewPayment(merchantID, decimal.NewFromInt(-5), "USD", "BTC")
		assert.Error(t, err)
	})

	t.Run("rejects missing currencies", func(t *testing.T) {
		_, err := domain.NewPayment(merchantID, decimal.NewFromInt(100), "", "BTC")
		assert.Error(t, err)

		_, err = domain.NewPayment(merchantID, decimal.NewFromInt(100), "USD", "")
		assert.Error(t, err)
	})
}

func TestPayment_MarkPending(t *testing.T) {
	payment, err := domain.NewPayment(uuid.New(), decimal.NewFromInt(100), "USD", "BTC")
	require.NoError(t, err)

	expiry := time.Now().Add(20 * time.Minute)
	err = payment.MarkPending("np-123", "bc1qaddress", decimal.RequireFromString("0.0015"), expiry)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, payment.Status)
	assert.Equal(t, "np-123", *payment.ExternalID)
	assert.Equal(t, "bc1qaddress", *payment.PayAddress)
	assert.True(t, payment.PayAmount.Equal(decimal.RequireFromString("0.0015")))
	assert.WithinDuration(t, expiry, *payment.ExpiresAt, time.Second)
}

func TestPayment_Transitions(t *testing.T) {
	newPending := func(t *testing.T) *domain.Payment {
		p, err := domain.NewPayment(uuid.New(), decimal.NewFromInt(100), "USD", "BTC")
		require.NoError(t, err)
		require.NoError(t, p.MarkPending("np-1", "addr", decimal.NewFromInt(1), time.Now().Add(time.Hour)))
		return p
	}

	t.Run("pending can confirm, expire or fail", func(t *testing.T) {
		require.NoError(t, newPending(t).Confirm())
		require.NoError(t, newPending(t).MarkExpired())
		require.NoError(t, newPending(t).Fail())
	})

	t.Run("created can fail directly", func(t *testing.T) {
		p, err := domain.NewPayment(uuid.New(), decimal.NewFromInt(100), "USD", "BTC")
		require.NoError(t, err)
		require.NoError(t, p.Fail())
		assert.Equal(t, domain.StatusFailed, p.Status)
	})

	t.Run("created cannot confirm without pending", func(t *testing.T) {
		p, err := domain.NewPayment(uuid.New(), decimal.NewFromInt(100), "USD", "BTC")
		require.NoError(t, err)

		err = p.Confirm()
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
		assert.Equal(t, domain.StatusCreated, p.Status)
	})

	t.Run("terminal states allow nothing further", func(t *testing.T) {
		for _, terminal := range []func(*domain.Payment) error{
			(*domain.Payment).Confirm,
			(*domain.Payment).MarkExpired,
			(*domain.Payment).Fail,
		} {
			p := newPending(t)
			require.NoError(t, terminal(p))
			assert.True(t, p.IsTerminal())

			assert.Error(t, p.Confirm())
			assert.Error(t, p.MarkExpired())
			assert.Error(t, p.Fail())
		}
	})
}

func TestMerchant_AllowsIP(t *testing.T) {
	t.Run("empty allowlist allows everything", func(t *testing.T) {
		m := &domain.Merchant{ID: uuid.New(), Status: domain.MerchantActive}
		assert.True(t, m.AllowsIP(mustAddr(t, "203.0.113.9")))
	})

	t.Run("allowlist restricts to listed ranges", func(t *testing.T) {
		m := &domain.Merchant{
			ID:          uuid.New(),
			Status:      domain.MerchantActive,
			IPAllowlist: mustPrefixes(t, "10.0.0.0/8", "203.0.113.0/24"),
		}

		assert.True(t, m.AllowsIP(mustAddr(t, "10.42.1.7")))
		assert.True(t, m.AllowsIP(mustAddr(t, "203.0.113.200")))
		assert.False(t, m.AllowsIP(mustAddr(t, "198.51.100.1")))
	})
}

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	addr, err := netip.ParseAddr(s)
	require.NoError(t, err)
	return addr
}

func mustPrefixes(t *testing.T, cidrs ...string) []netip.Prefix {
	t.Helper()
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		prefix, err := netip.ParsePrefix(cidr)
		require.NoError(t, err)
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

func TestSupportedCurrencies(t *testing.T) {
	assert.True(t, domain.IsSupportedFiat("usd"))
	assert.True(t, domain.IsSupportedFiat("EUR"))
	assert.False(t, domain.IsSupportedFiat("XYZ"))

	assert.True(t, domain.IsSupportedPayCurrency("btc"))
	assert.True(t, domain.IsSupportedPayCurrency("USDT"))
	assert.False(t, domain.IsSupportedPayCurrency("SHELL"))
}
