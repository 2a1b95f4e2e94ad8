// Package hashchain computes the ledger integrity chain hashes.
//
// Each posted transaction contributes one link:
//
//	hash(n) = SHA-256(hash(n-1) || canonical(transaction n))
//
// where canonical() is a deterministic encoding of the transaction's
// immutable fields with line items sorted by a stable key, so the hash
// does not depend on insertion order.
package hashchain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/finledger/finledger/internal/core/domain"
)

const dateFormat = "2006-01-02"

// GenesisHash returns the fixed hash(0) for an entity's chain.
func GenesisHash(entityID string) string {
	sum := sha256.Sum256([]byte("finledger:genesis:" + entityID))
	return hex.EncodeToString(sum[:])
}

// CanonicalEncoding renders the immutable fields of a transaction into
// a deterministic byte string: header line followed by one line per
// line item, items sorted by (accountID, side, amount, lineItemID).
func CanonicalEncoding(txn domain.Transaction) string {
	items := make([]domain.LineItem, len(txn.LineItems))
	copy(items, txn.LineItems)
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.AccountID != b.AccountID {
			return a.AccountID < b.AccountID
		}
		if a.Side != b.Side {
			return a.Side < b.Side
		}
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.LessThan(b.Amount)
		}
		return a.LineItemID < b.LineItemID
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%s|%s|%s|%s",
		txn.TransactionID,
		txn.EntityID,
		string(txn.Kind),
		txn.TransactionDate.UTC().Format(dateFormat),
		txn.MainAccountID,
	)
	for _, item := range items {
		fmt.Fprintf(&sb, "\n%s|%s|%s|%s",
			item.AccountID,
			string(item.Side),
			item.Amount.String(),
			item.CurrencyCode,
		)
	}
	return sb.String()
}

// LinkHash computes hash(n) from the previous link's hash and the
// transaction's canonical encoding.
func LinkHash(prevHash string, txn domain.Transaction) string {
	sum := sha256.Sum256([]byte(prevHash + "\n" + CanonicalEncoding(txn)))
	return hex.EncodeToString(sum[:])
}
