package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance pairs an account with a natural-side signed balance
// (or net activity) in the account's own currency. The raw material
// every statement is aggregated from.
type AccountBalance struct {
	Account Account         `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalanceRow represents a single account row in a trial balance.
// Exactly one of Debit/Credit is non-zero, per the account's natural
// side and the sign of its balance.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Category    AccountCategory `json:"category"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists converted account balances as of a date.
// Balanced is true iff TotalDebit equals TotalCredit.
type TrialBalanceReport struct {
	EntityID     string            `json:"entityID"`
	AsOf         time.Time         `json:"asOf"`
	CurrencyCode string            `json:"currencyCode"` // Entity basis currency
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebit   decimal.Decimal   `json:"totalDebit"`
	TotalCredit  decimal.Decimal   `json:"totalCredit"`
	Balanced     bool              `json:"balanced"`
}

// AccountAmount is an account with its net amount for a statement.
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// IncomeStatementReport is the income statement for a period window.
type IncomeStatementReport struct {
	EntityID      string          `json:"entityID"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	CurrencyCode  string          `json:"currencyCode"`
	Income        []AccountAmount `json:"income"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport is the balance sheet as of a date. Equity always
// carries a computed retained earnings line equal to cumulative net
// income from entity inception through AsOf.
type BalanceSheetReport struct {
	EntityID         string          `json:"entityID"`
	AsOf             time.Time       `json:"asOf"`
	CurrencyCode     string          `json:"currencyCode"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	Balanced         bool            `json:"balanced"` // Assets == Liabilities + Equity
}

// EquityMovementRow reconciles one equity account over the window:
// Opening + Additions - Reductions = Closing.
type EquityMovementRow struct {
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	Opening     decimal.Decimal `json:"opening"`
	Additions   decimal.Decimal `json:"additions"`
	Reductions  decimal.Decimal `json:"reductions"`
	Closing     decimal.Decimal `json:"closing"`
}

// EquityStatementReport is the statement of changes in equity.
type EquityStatementReport struct {
	EntityID      string              `json:"entityID"`
	From          time.Time           `json:"from"`
	To            time.Time           `json:"to"`
	CurrencyCode  string              `json:"currencyCode"`
	Movements     []EquityMovementRow `json:"movements"`
	NetIncome     decimal.Decimal     `json:"netIncome"`
	OpeningEquity decimal.Decimal     `json:"openingEquity"`
	ClosingEquity decimal.Decimal     `json:"closingEquity"`
}

// CashflowBucket classifies a cash movement by the category of its
// counter-accounts.
type CashflowBucket string

const (
	Operating CashflowBucket = "OPERATING"
	Investing CashflowBucket = "INVESTING"
	Financing CashflowBucket = "FINANCING"
)

// CashflowLine is one reclassified cash movement.
type CashflowLine struct {
	TransactionID string          `json:"transactionID"`
	Narration     string          `json:"narration"`
	Bucket        CashflowBucket  `json:"bucket"`
	Amount        decimal.Decimal `json:"amount"` // Signed: inflow positive
}

// CashflowStatementReport groups cash movements into Operating,
// Investing and Financing activities. NetChange must equal
// ClosingCash - OpeningCash for the window.
type CashflowStatementReport struct {
	EntityID     string          `json:"entityID"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	CurrencyCode string          `json:"currencyCode"`
	Operating    []CashflowLine  `json:"operating"`
	Investing    []CashflowLine  `json:"investing"`
	Financing    []CashflowLine  `json:"financing"`
	NetOperating decimal.Decimal `json:"netOperating"`
	NetInvesting decimal.Decimal `json:"netInvesting"`
	NetFinancing decimal.Decimal `json:"netFinancing"`
	OpeningCash  decimal.Decimal `json:"openingCash"`
	ClosingCash  decimal.Decimal `json:"closingCash"`
	NetChange    decimal.Decimal `json:"netChange"`
}

// AgingBucket is one outstanding-amount bucket keyed by days overdue.
type AgingBucket string

const (
	AgingCurrent AgingBucket = "CURRENT"
	Aging1To30   AgingBucket = "1_30"
	Aging31To60  AgingBucket = "31_60"
	Aging61To90  AgingBucket = "61_90"
	AgingOver90  AgingBucket = "90_PLUS"
)

// BucketForDaysOverdue maps days past due to an aging bucket.
func BucketForDaysOverdue(days int) AgingBucket {
	switch {
	case days <= 0:
		return AgingCurrent
	case days <= 30:
		return Aging1To30
	case days <= 60:
		return Aging31To60
	case days <= 90:
		return Aging61To90
	default:
		return AgingOver90
	}
}

// AgingRow is one open receivable/payable item with its bucket.
type AgingRow struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	AccountName   string          `json:"accountName"`
	DueDate       time.Time       `json:"dueDate"`
	DaysOverdue   int             `json:"daysOverdue"`
	Bucket        AgingBucket     `json:"bucket"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// AgingScheduleReport buckets open receivable or payable amounts by
// days overdue as of a date.
type AgingScheduleReport struct {
	EntityID     string                          `json:"entityID"`
	AsOf         time.Time                       `json:"asOf"`
	Category     AccountCategory                 `json:"category"` // ASSET (receivables) or LIABILITY (payables)
	CurrencyCode string                          `json:"currencyCode"`
	Rows         []AgingRow                      `json:"rows"`
	Totals       map[AgingBucket]decimal.Decimal `json:"totals"`
	Total        decimal.Decimal                 `json:"total"`
}

// BudgetVarianceRow compares one budget figure against actuals.
// VariancePercentage is nil when the budgeted amount is zero (the
// division-by-zero sentinel; never NaN/Inf); ErrorCode then carries
// the stable code explaining why.
type BudgetVarianceRow struct {
	BudgetID           string           `json:"budgetID"`
	BudgetName         string           `json:"budgetName"`
	AccountID          string           `json:"accountID"`
	AccountName        string           `json:"accountName"`
	Budgeted           decimal.Decimal  `json:"budgeted"`
	Actual             decimal.Decimal  `json:"actual"`
	Variance           decimal.Decimal  `json:"variance"` // Actual - Budgeted
	VariancePercentage *decimal.Decimal `json:"variancePercentage,omitempty"`
	ErrorCode          string           `json:"errorCode,omitempty"`
	Favorable          bool             `json:"favorable"`
}

// BudgetCategorySummary aggregates variance rows for one account
// category.
type BudgetCategorySummary struct {
	Category AccountCategory `json:"category"`
	Budgeted decimal.Decimal `json:"budgeted"`
	Actual   decimal.Decimal `json:"actual"`
	Variance decimal.Decimal `json:"variance"`
}

// BudgetVarianceReport is the budget-vs-actual report for a period.
type BudgetVarianceReport struct {
	EntityID          string                  `json:"entityID"`
	PeriodID          string                  `json:"periodID"`
	CurrencyCode      string                  `json:"currencyCode"`
	Rows              []BudgetVarianceRow     `json:"rows"`
	CategorySummaries []BudgetCategorySummary `json:"categorySummaries"`
	TotalBudgeted     decimal.Decimal         `json:"totalBudgeted"`
	TotalActual       decimal.Decimal         `json:"totalActual"`
	TotalVariance     decimal.Decimal         `json:"totalVariance"`
}
