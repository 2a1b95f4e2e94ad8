package repositories

import (
	"context"

	"github.com/finledger/finledger/internal/core/domain"
)

// BudgetRepository defines persistence operations for budgets.
type BudgetRepository interface {
	// SaveBudget persists a new budget figure.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// FindBudgetByID retrieves a budget by its unique identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgetsByPeriod retrieves all budgets for an entity and period.
	ListBudgetsByPeriod(ctx context.Context, entityID, periodID string) ([]domain.Budget, error)

	// UpdateBudget updates a budget's amount and name.
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// DeleteBudget removes a budget figure. Budgets are targets, not
	// ledger data, so hard deletion is allowed.
	DeleteBudget(ctx context.Context, budgetID string) error
}
