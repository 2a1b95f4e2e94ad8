package dto

import (
	"github.com/finledger/finledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest is the request body for storing a budget figure.
type CreateBudgetRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	PeriodID  string          `json:"periodID" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// UpdateBudgetRequest is the request body for updating a budget.
// Nil fields are left unchanged.
type UpdateBudgetRequest struct {
	Name   *string          `json:"name,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID  string          `json:"budgetID"`
	EntityID  string          `json:"entityID"`
	AccountID string          `json:"accountID"`
	PeriodID  string          `json:"periodID"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ToBudgetResponse converts a domain.Budget.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:  b.BudgetID,
		EntityID:  b.EntityID,
		AccountID: b.AccountID,
		PeriodID:  b.PeriodID,
		Name:      b.Name,
		Amount:    b.Amount,
	}
}

// ToBudgetResponses converts a slice of domain budgets.
func ToBudgetResponses(budgets []domain.Budget) []BudgetResponse {
	responses := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		responses[i] = ToBudgetResponse(&budgets[i])
	}
	return responses
}
