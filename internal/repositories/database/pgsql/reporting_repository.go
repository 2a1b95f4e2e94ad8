package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxReportingRepository serves the read side of statement aggregation.
// All queries replay posted line items instead of touching the cached
// balance column, so reports stay correct even if the cache drifts.
type PgxReportingRepository struct {
	BaseRepository

	txnRepo *PgxTransactionRepository
}

func newPgxReportingRepository(pool *pgxpool.Pool, txnRepo *PgxTransactionRepository) portsrepo.ReportingRepository {
	return &PgxReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
		txnRepo:        txnRepo,
	}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

const accountBalanceQuery = `
	SELECT
		a.account_id, a.entity_id, a.name, a.account_type, a.currency_code, a.description,
		a.is_active, a.balance, a.created_at, a.created_by, a.last_updated_at, a.last_updated_by,
		COALESCE(SUM(CASE WHEN li.side = 'DEBIT' THEN li.amount ELSE 0 END), 0) AS debits,
		COALESCE(SUM(CASE WHEN li.side = 'CREDIT' THEN li.amount ELSE 0 END), 0) AS credits
	FROM accounts a
	LEFT JOIN line_items li ON li.account_id = a.account_id
	LEFT JOIN transactions t ON t.transaction_id = li.transaction_id
		AND t.status IN ('POSTED', 'REVERSED')
		AND t.transaction_date >= $2 AND t.transaction_date <= $3
	WHERE a.entity_id = $1
	GROUP BY a.account_id
	ORDER BY a.name;
`

// never is a lower bound that excludes nothing.
var never = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)

func (r *PgxReportingRepository) GetAccountBalances(ctx context.Context, entityID string, asOf time.Time) ([]domain.AccountBalance, error) {
	return r.aggregateBalances(ctx, entityID, never, asOf)
}

func (r *PgxReportingRepository) GetAccountActivity(ctx context.Context, entityID string, from, to time.Time) ([]domain.AccountBalance, error) {
	return r.aggregateBalances(ctx, entityID, from, to)
}

func (r *PgxReportingRepository) aggregateBalances(ctx context.Context, entityID string, from, to time.Time) ([]domain.AccountBalance, error) {
	rows, err := r.Pool.Query(ctx, accountBalanceQuery, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balances for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	var balances []domain.AccountBalance
	for rows.Next() {
		var a domain.Account
		var debits, credits decimal.Decimal
		err := rows.Scan(
			&a.AccountID,
			&a.EntityID,
			&a.Name,
			&a.AccountType,
			&a.CurrencyCode,
			&a.Description,
			&a.IsActive,
			&a.Balance,
			&a.CreatedAt,
			&a.CreatedBy,
			&a.LastUpdatedAt,
			&a.LastUpdatedBy,
			&debits,
			&credits,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account balance: %w", err)
		}

		net := debits.Sub(credits)
		if a.AccountType.Category().NaturalSide() == domain.Credit {
			net = net.Neg()
		}
		balances = append(balances, domain.AccountBalance{Account: a, Balance: net})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account balances for entity %s: %w", entityID, err)
	}
	return balances, nil
}

func (r *PgxReportingRepository) GetPostedTransactions(ctx context.Context, entityID string, from, to time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE entity_id = $1
		  AND status IN ('POSTED', 'REVERSED')
		  AND transaction_date >= $2 AND transaction_date <= $3
		ORDER BY sequence_no;
	`
	rows, err := r.Pool.Query(ctx, query, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted transactions for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posted transactions for entity %s: %w", entityID, err)
	}

	if err := r.txnRepo.attachLineItems(ctx, txns); err != nil {
		return nil, err
	}
	return txns, nil
}
