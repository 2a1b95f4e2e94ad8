package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionReader defines read operations for transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its line items.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByEntity retrieves a token-paginated list of
	// transactions for an entity, newest first.
	ListTransactionsByEntity(ctx context.Context, entityID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindPostedBySequenceRange retrieves posted transactions (including
	// reversed ones) with their line items, ordered by sequence number.
	FindPostedBySequenceRange(ctx context.Context, entityID string, fromSeq, toSeq int64) ([]domain.Transaction, error)
}

// DraftWriter defines mutations allowed only while a transaction is Draft.
// The repository refuses every one of these against a posted row.
type DraftWriter interface {
	// SaveDraft persists a new draft transaction with its line items.
	SaveDraft(ctx context.Context, txn domain.Transaction) error

	// UpdateDraft updates a draft's mutable header fields.
	UpdateDraft(ctx context.Context, txn domain.Transaction) error

	// AddLineItem appends a line item to a draft transaction.
	AddLineItem(ctx context.Context, item domain.LineItem) error

	// RemoveLineItem deletes a line item from a draft transaction.
	RemoveLineItem(ctx context.Context, transactionID, lineItemID string) error
}

// PostingSupport defines the operations of the posting critical
// section; every method requires the caller's database transaction.
type PostingSupport interface {
	// NextSequenceInTx allocates the next gap-free sequence number for
	// the entity, locking the entity's counter row for the duration of tx.
	NextSequenceInTx(ctx context.Context, tx pgx.Tx, entityID string) (int64, error)

	// MarkPostedInTx flips a draft to POSTED with its assigned sequence
	// number and integrity hash.
	MarkPostedInTx(ctx context.Context, tx pgx.Tx, transactionID string, seq int64, hash string, userID string, now time.Time) error

	// MarkReversedInTx flips a posted transaction to REVERSED and links
	// it to its reversal. Historical fields stay untouched.
	MarkReversedInTx(ctx context.Context, tx pgx.Tx, transactionID, reversalID string, userID string, now time.Time) error

	// SaveTransactionInTx persists a complete transaction (header and
	// line items) within the caller's transaction; used by reversal,
	// which creates and posts in one section.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	DraftWriter
	PostingSupport
	TransactionManager
}
