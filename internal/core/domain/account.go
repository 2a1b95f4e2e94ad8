package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory groups account types into the five fundamental
// accounting categories.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Income    AccountCategory = "INCOME"
	Expense   AccountCategory = "EXPENSE"
)

// AccountType is the closed enumeration of concrete account types.
// Every type belongs to exactly one category; the type drives report
// classification (cashflow buckets, aging schedules).
type AccountType string

const (
	Bank              AccountType = "BANK"
	Cash              AccountType = "CASH"
	Receivable        AccountType = "RECEIVABLE"
	CurrentAsset      AccountType = "CURRENT_ASSET"
	FixedAsset        AccountType = "FIXED_ASSET"
	Payable           AccountType = "PAYABLE"
	CurrentLiability  AccountType = "CURRENT_LIABILITY"
	LongTermLiability AccountType = "LONG_TERM_LIABILITY"
	EquityCapital     AccountType = "EQUITY"
	RetainedEarnings  AccountType = "RETAINED_EARNINGS"
	OperatingRevenue  AccountType = "OPERATING_REVENUE"
	OtherRevenue      AccountType = "OTHER_REVENUE"
	OperatingExpense  AccountType = "OPERATING_EXPENSE"
	DirectExpense     AccountType = "DIRECT_EXPENSE"
	OtherExpense      AccountType = "OTHER_EXPENSE"
)

var accountTypeCategories = map[AccountType]AccountCategory{
	Bank:              Asset,
	Cash:              Asset,
	Receivable:        Asset,
	CurrentAsset:      Asset,
	FixedAsset:        Asset,
	Payable:           Liability,
	CurrentLiability:  Liability,
	LongTermLiability: Liability,
	EquityCapital:     Equity,
	RetainedEarnings:  Equity,
	OperatingRevenue:  Income,
	OtherRevenue:      Income,
	OperatingExpense:  Expense,
	DirectExpense:     Expense,
	OtherExpense:      Expense,
}

// Category returns the fundamental category for the account type, or
// an empty category for an unknown type.
func (t AccountType) Category() AccountCategory {
	return accountTypeCategories[t]
}

// IsValid reports whether t is one of the closed enumeration values.
func (t AccountType) IsValid() bool {
	_, ok := accountTypeCategories[t]
	return ok
}

// NaturalSide returns the side on which balances of this category grow:
// ASSET/EXPENSE accounts are debit-positive, LIABILITY/EQUITY/INCOME
// accounts are credit-positive.
func (c AccountCategory) NaturalSide() NormalSide {
	switch c {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// IsCashLike reports whether the type represents money on hand, used
// by the cashflow statement to pick the cash legs of a transaction.
func (t AccountType) IsCashLike() bool {
	return t == Bank || t == Cash
}

// BalanceRecomputation is the result of replaying an account's posted
// line items independently of the incremental cache. Match is false
// when the cache and the replay disagree, which is a balance-category
// error surfaced for operator intervention.
type BalanceRecomputation struct {
	AccountID       string          `json:"accountID"`
	AsOf            time.Time       `json:"asOf"`
	CachedBalance   decimal.Decimal `json:"cachedBalance"`
	ReplayedBalance decimal.Decimal `json:"replayedBalance"`
	Match           bool            `json:"match"`
	Repaired        bool            `json:"repaired"`
}

// Account represents one account in an entity's chart of accounts.
// Balance is a derived cache in the account's own currency, normalized
// to natural-side positive; it must always equal the replay of all
// posted line items for the account.
type Account struct {
	AccountID    string          `json:"accountID"` // Primary Key (UUID)
	EntityID     string          `json:"entityID"`  // FK -> entities (NON-NULL)
	Name         string          `json:"name"`
	AccountType  AccountType     `json:"accountType"`
	CurrencyCode string          `json:"currencyCode"` // FK -> currencies (NON-NULL)
	Description  string          `json:"description"`
	IsActive     bool            `json:"isActive"` // Inactive accounts refuse new line items
	Balance      decimal.Decimal `json:"balance"`  // Cached natural-side balance
	AuditFields
}
