package domain

import "github.com/shopspring/decimal"

// Budget is a target figure for an account within a reporting period,
// compared against actual aggregated amounts in the variance report.
type Budget struct {
	BudgetID  string          `json:"budgetID"` // Primary Key (UUID)
	EntityID  string          `json:"entityID"` // FK -> entities
	AccountID string          `json:"accountID"`
	PeriodID  string          `json:"periodID"` // FK -> reporting_periods
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	AuditFields
}
