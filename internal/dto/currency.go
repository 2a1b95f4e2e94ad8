package dto

import (
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest is the request body for registering a currency.
type CreateCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,len=3"`
	Symbol       string `json:"symbol" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Precision    int32  `json:"precision" binding:"gte=0,lte=8"`
}

// UpdateCurrencyRequest is the request body for editing a currency.
// Nil fields are left unchanged.
type UpdateCurrencyRequest struct {
	Symbol    *string `json:"symbol,omitempty"`
	Name      *string `json:"name,omitempty"`
	Precision *int32  `json:"precision,omitempty" binding:"omitempty,gte=0,lte=8"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int32  `json:"precision"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse.
func ToCurrencyResponse(c *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode: c.CurrencyCode,
		Symbol:       c.Symbol,
		Name:         c.Name,
		Precision:    c.Precision,
	}
}

// CreateExchangeRateRequest is the request body for storing a rate.
type CreateExchangeRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,len=3"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,len=3"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	EffectiveDate    time.Time       `json:"effectiveDate" binding:"required"`
}

// ExchangeRateResponse defines the data returned for an exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	EntityID         string          `json:"entityID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	EffectiveDate    time.Time       `json:"effectiveDate"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate.
func ToExchangeRateResponse(r *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   r.ExchangeRateID,
		EntityID:         r.EntityID,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		Rate:             r.Rate,
		EffectiveDate:    r.EffectiveDate,
	}
}

// ConvertResponse is the result of a currency conversion query.
type ConvertResponse struct {
	Amount           decimal.Decimal `json:"amount"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Converted        decimal.Decimal `json:"converted"`
	Date             time.Time       `json:"date"`
}
