package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepository {
	return &PgxBudgetRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

const budgetColumns = `budget_id, entity_id, account_id, period_id, name, amount, created_at, created_by, last_updated_at, last_updated_by`

func scanBudget(row pgx.Row) (domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(
		&b.BudgetID,
		&b.EntityID,
		&b.AccountID,
		&b.PeriodID,
		&b.Name,
		&b.Amount,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	return b, err
}

func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		budget.BudgetID,
		budget.EntityID,
		budget.AccountID,
		budget.PeriodID,
		budget.Name,
		budget.Amount,
		budget.CreatedAt,
		budget.CreatedBy,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save budget %s: %w", budget.BudgetID, err)
	}
	return nil
}

func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1;`
	budget, err := scanBudget(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	return &budget, nil
}

func (r *PgxBudgetRepository) ListBudgetsByPeriod(ctx context.Context, entityID, periodID string) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE entity_id = $1 AND period_id = $2
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query, entityID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets for period %s: %w", periodID, err)
	}
	defer rows.Close()

	budgets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Budget, error) {
		return scanBudget(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan budgets for period %s: %w", periodID, err)
	}
	return budgets, nil
}

func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		UPDATE budgets
		SET name = $2, amount = $3, last_updated_at = $4, last_updated_by = $5
		WHERE budget_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		budget.BudgetID, budget.Name, budget.Amount, budget.LastUpdatedAt, budget.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", budget.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM budgets WHERE budget_id = $1;`, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", budgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
