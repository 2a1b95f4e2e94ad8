package services

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/finledger/finledger/internal/dto"
)

// StatementSvcFacade defines one query per statement type. All queries
// aggregate POSTED transactions only and convert amounts to the entity
// basis currency.
type StatementSvcFacade interface {
	// TrialBalance sums converted balances by account as of a date.
	TrialBalance(ctx context.Context, entityID string, asOf time.Time) (*domain.TrialBalanceReport, error)

	// IncomeStatement computes income minus expenses over a window.
	IncomeStatement(ctx context.Context, entityID string, from, to time.Time) (*domain.IncomeStatementReport, error)

	// BalanceSheet reports assets, liabilities and equity as of a date,
	// with a computed retained earnings line.
	BalanceSheet(ctx context.Context, entityID string, asOf time.Time) (*domain.BalanceSheetReport, error)

	// EquityStatement reconciles equity accounts over a window.
	EquityStatement(ctx context.Context, entityID string, from, to time.Time) (*domain.EquityStatementReport, error)

	// CashflowStatement reclassifies cash movements over a window into
	// Operating, Investing and Financing activities.
	CashflowStatement(ctx context.Context, entityID string, from, to time.Time) (*domain.CashflowStatementReport, error)

	// AgingSchedule buckets open receivable (Asset) or payable
	// (Liability) amounts by days overdue as of a date.
	AgingSchedule(ctx context.Context, entityID string, category domain.AccountCategory, asOf time.Time) (*domain.AgingScheduleReport, error)
}

// BudgetSvcFacade defines budget management and variance reporting.
type BudgetSvcFacade interface {
	// CreateBudget stores a target figure for an account and period.
	CreateBudget(ctx context.Context, entityID string, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error)

	// ListBudgets retrieves budgets for an entity and period.
	ListBudgets(ctx context.Context, entityID, periodID string) ([]domain.Budget, error)

	// UpdateBudget updates a budget's name and amount.
	UpdateBudget(ctx context.Context, entityID, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error)

	// DeleteBudget removes a budget figure.
	DeleteBudget(ctx context.Context, entityID, budgetID string, userID string) error

	// VarianceReport compares each budget row against actuals for the
	// period: variance = actual - budgeted; a zero budget yields a nil
	// percentage, never NaN or infinity.
	VarianceReport(ctx context.Context, entityID, periodID string) (*domain.BudgetVarianceReport, error)
}
