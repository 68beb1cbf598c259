package model

// Currency is the single enumeration of currencies the ledger supports. Every
// place that stores or checks a currency goes through this type; the database
// enforces the same set with a CHECK constraint.
type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyEUR  Currency = "EUR"
	CurrencyUSDT Currency = "USDT"
	CurrencyBRL  Currency = "BRL"
)

// SupportedCurrencies lists every currency an account may be denominated in,
// in provisioning order.
var SupportedCurrencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyUSDT, CurrencyBRL}

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyUSDT, CurrencyBRL:
		return true
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}
