package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccountsByEntity retrieves a paginated list of accounts for an entity.
	ListAccountsByEntity(ctx context.Context, entityID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error

	// SetAccountBalance overwrites the cached balance, used by
	// recompute-with-repair after a verified replay.
	SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations used inside the posting
// critical section.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for
	// update within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceDeltasInTx adjusts the cached balance for multiple
	// accounts within the given transaction. Deltas are natural-side
	// signed amounts in each account's own currency.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountBalanceReplayer recomputes balances from posted line items,
// independent of the incremental cache path.
type AccountBalanceReplayer interface {
	// ReplayAccountBalance replays all posted line items for the account
	// up to asOf and returns the natural-side balance.
	ReplayAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
	AccountBalanceReplayer
}
