package domain

import "strings"

// Supported currency codes. Fiat is what merchants price in, pay currencies
// are what the processor settles in.
var (
	supportedFiat = map[string]struct{}{
		"USD": {}, "EUR": {}, "GBP": {}, "CAD": {}, "AUD": {}, "JPY": {},
	}

	supportedPayCurrencies = map[string]struct{}{
		"BTC": {}, "ETH": {}, "LTC": {}, "XMR": {}, "USDT": {}, "USDC": {},
		"SOL": {}, "DOGE": {},
	}
)

func IsSupportedFiat(code string) bool {
	_, ok := supportedFiat[strings.ToUpper(code)]
	return ok
}

func IsSupportedPayCurrency(code string) bool {
	_, ok := supportedPayCurrencies[strings.ToUpper(code)]
	return ok
}
