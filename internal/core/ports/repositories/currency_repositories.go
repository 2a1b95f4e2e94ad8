package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
)

// CurrencyRepository defines persistence operations for currencies.
type CurrencyRepository interface {
	// SaveCurrency persists a new currency.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// FindCurrencyByCode retrieves a currency by its code.
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all known currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// UpdateCurrency updates a currency's display fields and precision.
	UpdateCurrency(ctx context.Context, currency domain.Currency) error

	// IsCurrencyReferenced reports whether any posted line item uses the
	// currency. Referenced currencies are immutable.
	IsCurrencyReferenced(ctx context.Context, code string) (bool, error)
}

// ExchangeRateRepository defines persistence operations for exchange rates.
type ExchangeRateRepository interface {
	// SaveExchangeRate persists a new exchange rate.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// FindRateByID retrieves an exchange rate by its ID.
	FindRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// FindRatesForPair retrieves every stored rate for a currency pair
	// within an entity, in storage order (callers must not assume the
	// result is sorted).
	FindRatesForPair(ctx context.Context, entityID, fromCode, toCode string) ([]domain.ExchangeRate, error)

	// FindRateByPairAndDate retrieves the rate with an exact effective
	// date, used to enforce the one-rate-per-pair-per-date constraint.
	FindRateByPairAndDate(ctx context.Context, entityID, fromCode, toCode string, effectiveDate time.Time) (*domain.ExchangeRate, error)

	// ListRates retrieves all rates for an entity.
	ListRates(ctx context.Context, entityID string) ([]domain.ExchangeRate, error)
}
