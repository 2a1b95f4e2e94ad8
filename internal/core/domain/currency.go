package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency.
// Precision is the number of decimal places amounts in this currency
// round to; it is immutable once any posted line item references the
// currency.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int32  `json:"precision"`    // Decimal places (e.g., 2)
	AuditFields
}

// ExchangeRate holds the conversion rate between two currencies for an
// entity, effective from a given date. Multiple rates per pair are
// allowed; the active rate for a date is the latest one with
// EffectiveDate <= that date.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"` // Primary Key (UUID)
	EntityID         string          `json:"entityID"`       // FK -> entities
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"` // 1 from = Rate * to
	EffectiveDate    time.Time       `json:"effectiveDate"`
	AuditFields
}
