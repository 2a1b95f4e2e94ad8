package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
)

// ReportingRepository defines the read-only queries the statement
// aggregation engine is built on. Every query sees only POSTED
// transactions (reversals appear as their own posted offsets; Draft
// rows never do) and reads a consistent snapshot: a multi-line
// transaction is either fully visible or not at all.
type ReportingRepository interface {
	// GetAccountBalances returns, per account of the entity, the
	// natural-side signed balance replayed from posted line items up to
	// and including asOf, in the account's own currency. Accounts with
	// no activity are included with a zero balance.
	GetAccountBalances(ctx context.Context, entityID string, asOf time.Time) ([]domain.AccountBalance, error)

	// GetAccountActivity returns, per account, the net natural-side
	// signed change over the window [from, to].
	GetAccountActivity(ctx context.Context, entityID string, from, to time.Time) ([]domain.AccountBalance, error)

	// GetPostedTransactions returns posted transactions dated within
	// [from, to] with their line items, ordered by sequence number.
	GetPostedTransactions(ctx context.Context, entityID string, from, to time.Time) ([]domain.Transaction, error)
}
