package services

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/finledger/finledger/internal/dto"
	"github.com/shopspring/decimal"
)

// RateSvcFacade defines the currency and rate resolver operations.
type RateSvcFacade interface {
	// CreateExchangeRate stores a new rate for a pair and effective date.
	CreateExchangeRate(ctx context.Context, entityID string, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)

	// ListRates retrieves all rates for an entity.
	ListRates(ctx context.Context, entityID string) ([]domain.ExchangeRate, error)

	// GetRate resolves the rate from one currency to another as of a
	// date: the latest stored rate with effectiveDate <= date, falling
	// back to single-hop triangulation through the entity's basis
	// currency. Fails with a rate-not-found error when neither exists.
	GetRate(ctx context.Context, entityID, fromCode, toCode string, date time.Time) (decimal.Decimal, error)

	// Convert converts an amount between currencies as of a date,
	// rounding half-even to the target currency's declared precision.
	Convert(ctx context.Context, entityID string, amount decimal.Decimal, fromCode, toCode string, date time.Time) (decimal.Decimal, error)
}
