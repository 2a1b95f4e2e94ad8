package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/shopspring/decimal"
)

const variancePercentPrecision = 2

type budgetService struct {
	budgetRepo    portsrepo.BudgetRepository
	periodRepo    portsrepo.PeriodRepository
	accountRepo   portsrepo.AccountRepositoryFacade
	entityRepo    portsrepo.EntityRepository
	reportingRepo portsrepo.ReportingRepository
	rateSvc       portssvc.RateSvcFacade
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(
	budgetRepo portsrepo.BudgetRepository,
	periodRepo portsrepo.PeriodRepository,
	accountRepo portsrepo.AccountRepositoryFacade,
	entityRepo portsrepo.EntityRepository,
	reportingRepo portsrepo.ReportingRepository,
	rateSvc portssvc.RateSvcFacade,
) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo:    budgetRepo,
		periodRepo:    periodRepo,
		accountRepo:   accountRepo,
		entityRepo:    entityRepo,
		reportingRepo: reportingRepo,
		rateSvc:       rateSvc,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// CreateBudget stores a target figure for an account and period.
func (s *budgetService) CreateBudget(ctx context.Context, entityID string, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.IsNegative() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidAmount, apperrors.CategoryValidation,
			fmt.Sprintf("budget amount must not be negative, got %s", req.Amount), apperrors.ErrValidation)
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, req.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", req.PeriodID, err)
	}
	if period.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", req.AccountID, err)
	}
	if account.EntityID != entityID {
		return nil, apperrors.Wrap(apperrors.CodeCrossEntity, apperrors.CategoryAccount,
			fmt.Sprintf("account %s does not belong to entity %s", req.AccountID, entityID), apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		BudgetID:  uuid.NewString(),
		EntityID:  entityID,
		AccountID: req.AccountID,
		PeriodID:  req.PeriodID,
		Name:      req.Name,
		Amount:    req.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID), slog.String("account_id", req.AccountID))
	return &budget, nil
}

// ListBudgets retrieves budgets for an entity and period.
func (s *budgetService) ListBudgets(ctx context.Context, entityID, periodID string) ([]domain.Budget, error) {
	budgets, err := s.budgetRepo.ListBudgetsByPeriod(ctx, entityID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

func (s *budgetService) loadScoped(ctx context.Context, entityID, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	if budget.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}
	return budget, nil
}

// UpdateBudget updates a budget's name and amount.
func (s *budgetService) UpdateBudget(ctx context.Context, entityID, budgetID string, req dto.UpdateBudgetRequest, userID string) (*domain.Budget, error) {
	budget, err := s.loadScoped(ctx, entityID, budgetID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		budget.Name = *req.Name
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, apperrors.Wrap(apperrors.CodeInvalidAmount, apperrors.CategoryValidation,
				fmt.Sprintf("budget amount must not be negative, got %s", req.Amount), apperrors.ErrValidation)
		}
		budget.Amount = *req.Amount
	}
	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = userID

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return budget, nil
}

// DeleteBudget removes a budget figure. Budgets are planning data, not
// ledger data, so hard deletion is fine.
func (s *budgetService) DeleteBudget(ctx context.Context, entityID, budgetID string, userID string) error {
	if _, err := s.loadScoped(ctx, entityID, budgetID); err != nil {
		return err
	}
	if err := s.budgetRepo.DeleteBudget(ctx, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}

// VarianceReport compares each budget row against actual net activity
// over the period window. Variance is actual minus budgeted; a zero
// budget yields a nil percentage rather than NaN or infinity.
func (s *budgetService) VarianceReport(ctx context.Context, entityID, periodID string) (*domain.BudgetVarianceReport, error) {
	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if period.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}

	budgets, err := s.budgetRepo.ListBudgetsByPeriod(ctx, entityID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	activity, err := s.reportingRepo.GetAccountActivity(ctx, entityID, period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load account activity: %w", err)
	}
	actualByAccount := make(map[string]decimal.Decimal, len(activity))
	accountByID := make(map[string]domain.Account, len(activity))
	for _, ab := range activity {
		converted := ab.Balance
		if ab.Account.CurrencyCode != entity.BaseCurrencyCode {
			converted, err = s.rateSvc.Convert(ctx, entityID, ab.Balance, ab.Account.CurrencyCode, entity.BaseCurrencyCode, period.EndDate)
			if err != nil {
				return nil, fmt.Errorf("failed to convert activity of account %s: %w", ab.Account.AccountID, err)
			}
		}
		actualByAccount[ab.Account.AccountID] = converted
		accountByID[ab.Account.AccountID] = ab.Account
	}

	report := &domain.BudgetVarianceReport{
		EntityID:     entityID,
		PeriodID:     periodID,
		CurrencyCode: entity.BaseCurrencyCode,
	}
	summaries := make(map[domain.AccountCategory]*domain.BudgetCategorySummary)
	for _, budget := range budgets {
		account := accountByID[budget.AccountID]
		actual := actualByAccount[budget.AccountID]
		variance := actual.Sub(budget.Amount)
		category := account.AccountType.Category()

		row := domain.BudgetVarianceRow{
			BudgetID:    budget.BudgetID,
			BudgetName:  budget.Name,
			AccountID:   budget.AccountID,
			AccountName: account.Name,
			Budgeted:    budget.Amount,
			Actual:      actual,
			Variance:    variance,
		}
		if budget.Amount.IsZero() {
			row.ErrorCode = apperrors.CodeDivisionByZero
		} else {
			pct := variance.Div(budget.Amount).Mul(decimal.NewFromInt(100)).Round(variancePercentPrecision)
			row.VariancePercentage = &pct
		}
		// Spending under budget is favorable; earning over budget is.
		if category == domain.Expense {
			row.Favorable = !variance.IsPositive()
		} else {
			row.Favorable = !variance.IsNegative()
		}
		report.Rows = append(report.Rows, row)

		summary, ok := summaries[category]
		if !ok {
			summary = &domain.BudgetCategorySummary{Category: category}
			summaries[category] = summary
		}
		summary.Budgeted = summary.Budgeted.Add(budget.Amount)
		summary.Actual = summary.Actual.Add(actual)
		summary.Variance = summary.Variance.Add(variance)

		report.TotalBudgeted = report.TotalBudgeted.Add(budget.Amount)
		report.TotalActual = report.TotalActual.Add(actual)
		report.TotalVariance = report.TotalVariance.Add(variance)
	}
	for _, category := range []domain.AccountCategory{domain.Asset, domain.Liability, domain.Equity, domain.Income, domain.Expense} {
		if summary, ok := summaries[category]; ok {
			report.CategorySummaries = append(report.CategorySummaries, *summary)
		}
	}
	return report, nil
}
