package services

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/finledger/finledger/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts.
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account scoped to an entity.
	GetAccountByID(ctx context.Context, entityID, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts scoped to an entity.
	GetAccountsByIDs(ctx context.Context, entityID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for an entity.
	ListAccounts(ctx context.Context, entityID string, limit, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts.
type AccountWriterSvc interface {
	// CreateAccount creates a new account within an entity.
	CreateAccount(ctx context.Context, entityID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates an account's mutable details.
	UpdateAccount(ctx context.Context, entityID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive; inactive accounts
	// refuse new line items but keep their posted history.
	DeactivateAccount(ctx context.Context, entityID, accountID string, userID string) error
}

// BalanceVerifierSvc defines the cache verification/repair operation,
// independent of the incremental posting path.
type BalanceVerifierSvc interface {
	// RecomputeBalance replays posted line items for the account up to
	// asOf and compares against the cached balance. With repair set, a
	// mismatching cache is overwritten by the replayed figure.
	RecomputeBalance(ctx context.Context, entityID, accountID string, asOf time.Time, repair bool) (*domain.BalanceRecomputation, error)
}

// AccountSvcFacade combines all chart-of-accounts service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	BalanceVerifierSvc
}
