package domain

import "time"

// ChainLink is one link of an entity's ledger integrity chain. Links
// are addressed by sequence number (an index-addressed array, not a
// pointer-linked list) so that range verification and persistence both
// get O(1) addressing.
//
// Hash = SHA-256(PrevHash || canonical encoding of the transaction's
// immutable fields). A single out-of-band mutation of a posted
// transaction breaks the hash at that link and at every subsequent
// link, which localizes exactly where tampering began.
type ChainLink struct {
	EntityID      string    `json:"entityID"`
	SequenceNo    int64     `json:"sequenceNo"` // Starts at 1, gap-free
	TransactionID string    `json:"transactionID"`
	PrevHash      string    `json:"prevHash"` // Genesis hash for SequenceNo == 1
	Hash          string    `json:"hash"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ChainVerification is the outcome of verifying a chain range.
// BrokenAtSequence is nil when every link in the range checks out.
type ChainVerification struct {
	EntityID         string `json:"entityID"`
	FromSequence     int64  `json:"fromSequence"`
	ToSequence       int64  `json:"toSequence"`
	LinksVerified    int64  `json:"linksVerified"`
	OK               bool   `json:"ok"`
	BrokenAtSequence *int64 `json:"brokenAtSequence,omitempty"`
}
