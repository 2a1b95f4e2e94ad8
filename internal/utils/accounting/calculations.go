package accounting

import (
	"fmt"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the correct sign to a line item amount based on
// the account's natural side. This is used in both services and
// repositories to ensure consistent accounting logic.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
func SignedAmount(item domain.LineItem, accountType domain.AccountType) (decimal.Decimal, error) {
	category := accountType.Category()
	if category == "" {
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, item.AccountID)
	}
	if item.Side == category.NaturalSide() {
		return item.Amount, nil
	}
	return item.Amount.Neg(), nil
}

// BalanceDeltas computes, per account, the net natural-side signed
// change the given line items produce. Used for the incremental
// balance-cache update on posting.
func BalanceDeltas(items []domain.LineItem, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		accountType, ok := accountTypes[item.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", item.AccountID)
		}
		signed, err := SignedAmount(item, accountType)
		if err != nil {
			return nil, err
		}
		deltas[item.AccountID] = deltas[item.AccountID].Add(signed)
	}
	return deltas, nil
}
