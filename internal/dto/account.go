package dto

import (
	"github.com/finledger/finledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the request body for creating an account.
type CreateAccountRequest struct {
	Name         string `json:"name" binding:"required"`
	AccountType  string `json:"accountType" binding:"required"`
	CurrencyCode string `json:"currencyCode" binding:"required,len=3"`
	Description  string `json:"description"`
}

// UpdateAccountRequest is the request body for updating an account.
// Nil fields are left unchanged.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID    string          `json:"accountID"`
	EntityID     string          `json:"entityID"`
	Name         string          `json:"name"`
	AccountType  string          `json:"accountType"`
	Category     string          `json:"category"`
	CurrencyCode string          `json:"currencyCode"`
	Description  string          `json:"description"`
	IsActive     bool            `json:"isActive"`
	Balance      decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    a.AccountID,
		EntityID:     a.EntityID,
		Name:         a.Name,
		AccountType:  string(a.AccountType),
		Category:     string(a.AccountType.Category()),
		CurrencyCode: a.CurrencyCode,
		Description:  a.Description,
		IsActive:     a.IsActive,
		Balance:      a.Balance,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
