package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, entity_id, name, account_type, currency_code, description, is_active, balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
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
	)
	return a, err
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.EntityID,
		account.Name,
		account.AccountType,
		account.CurrencyCode,
		account.Description,
		account.IsActive,
		account.Balance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return &account, nil
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	return collectAccountMap(rows)
}

func collectAccountMap(rows pgx.Rows) (map[string]domain.Account, error) {
	accounts := make(map[string]domain.Account)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account rows: %w", err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) ListAccountsByEntity(ctx context.Context, entityID string, limit int, offset int) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE entity_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Account, error) {
		return scanAccount(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts for entity %s: %w", entityID, err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.AccountID, account.Name, account.Description, account.LastUpdatedAt, account.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxAccountRepository) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, accountID, balance, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set balance of account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsForUpdate selects accounts and locks them for
// update within a transaction. Rows are locked in a stable order to
// avoid deadlocks between concurrent posting sections.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()

	return collectAccountMap(rows)
}

func (r *PgxAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	for accountID, delta := range deltas {
		tag, err := tx.Exec(ctx, query, accountID, delta, now, userID)
		if err != nil {
			return fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
		}
	}
	return nil
}

// ReplayAccountBalance recomputes the natural-side balance from posted
// line items, bypassing the cached column entirely.
func (r *PgxAccountRepository) ReplayAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	account, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN li.side = 'DEBIT' THEN li.amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN li.side = 'CREDIT' THEN li.amount ELSE 0 END), 0)
		FROM line_items li
		JOIN transactions t ON t.transaction_id = li.transaction_id
		WHERE li.account_id = $1
		  AND t.status IN ('POSTED', 'REVERSED')
		  AND t.transaction_date <= $2;
	`
	var debits, credits decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, asOf).Scan(&debits, &credits); err != nil {
		return decimal.Zero, fmt.Errorf("failed to replay balance of account %s: %w", accountID, err)
	}

	if account.AccountType.Category().NaturalSide() == domain.Debit {
		return debits.Sub(credits), nil
	}
	return credits.Sub(debits), nil
}
