package services

import (
	"context"

	"github.com/finledger/finledger/internal/core/domain"
)

// IntegritySvcFacade defines the audit surface of the ledger integrity
// chain. Link appending is internal to the posting engine and is not
// exposed here.
type IntegritySvcFacade interface {
	// VerifyChain recomputes each link's hash over [fromSeq, toSeq] and
	// compares against the stored chain. toSeq <= 0 means "through the
	// last link". Long-running and read-only; honors ctx cancellation.
	VerifyChain(ctx context.Context, entityID string, fromSeq, toSeq int64) (*domain.ChainVerification, error)
}
