package services

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/finledger/finledger/internal/dto"
)

// DraftWriterSvc defines operations on draft transactions.
type DraftWriterSvc interface {
	// CreateTransaction creates a new draft transaction, optionally
	// with initial line items.
	CreateTransaction(ctx context.Context, entityID string, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)

	// BatchCreateTransactions creates a draft per request item and
	// reports per-item success or failure; items are independent.
	BatchCreateTransactions(ctx context.Context, entityID string, req dto.BatchCreateTransactionsRequest, creatorUserID string) (*dto.BatchCreateTransactionsResponse, error)

	// UpdateDraft edits a draft transaction's header fields. Posted and
	// reversed transactions are immutable.
	UpdateDraft(ctx context.Context, entityID, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)

	// AddLineItem appends a line item to a draft transaction.
	AddLineItem(ctx context.Context, entityID, transactionID string, req dto.CreateLineItemRequest, userID string) (*domain.LineItem, error)

	// RemoveLineItem deletes a line item from a draft transaction.
	RemoveLineItem(ctx context.Context, entityID, transactionID, lineItemID string, userID string) error
}

// PosterSvc defines the posting state transitions.
type PosterSvc interface {
	// PostTransaction validates and posts a draft: balance check in the
	// entity basis currency, open-period check, sequence assignment,
	// chain append and balance cache update, all in one atomic section.
	PostTransaction(ctx context.Context, entityID, transactionID string, userID string) (*domain.Transaction, error)

	// ReverseTransaction creates and posts an offsetting transaction
	// dated at the given date, then marks the original REVERSED. The
	// only sanctioned way to undo a posted transaction.
	ReverseTransaction(ctx context.Context, entityID, transactionID string, date time.Time, userID string) (*domain.Transaction, error)
}

// TransactionReaderSvc defines read operations for transactions.
type TransactionReaderSvc interface {
	// GetTransaction retrieves a transaction with its line items.
	GetTransaction(ctx context.Context, entityID, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a token-paginated transaction list.
	ListTransactions(ctx context.Context, entityID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// PostingSvcFacade combines the posting engine's service interfaces.
type PostingSvcFacade interface {
	DraftWriterSvc
	PosterSvc
	TransactionReaderSvc
}
