package repositories

import (
	"context"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ChainRepository defines persistence for the ledger integrity chain.
// Links are keyed by (entity, sequence) so range reads address them
// directly without walking the chain.
type ChainRepository interface {
	// AppendLinkInTx persists a new chain link within the posting
	// transaction.
	AppendLinkInTx(ctx context.Context, tx pgx.Tx, link domain.ChainLink) error

	// FindLastLink retrieves the highest-sequence link for an entity,
	// or ErrNotFound when the chain is empty.
	FindLastLink(ctx context.Context, entityID string) (*domain.ChainLink, error)

	// FindLastLinkInTx is FindLastLink inside the posting transaction,
	// locking the link row so concurrent appends serialize.
	FindLastLinkInTx(ctx context.Context, tx pgx.Tx, entityID string) (*domain.ChainLink, error)

	// FindLinksBySequenceRange retrieves links ordered by sequence.
	FindLinksBySequenceRange(ctx context.Context, entityID string, fromSeq, toSeq int64) ([]domain.ChainLink, error)
}
