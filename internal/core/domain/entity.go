package domain

// Entity represents a single accounting unit (e.g. a company).
// All accounts, periods, rates, transactions and budgets belong to
// exactly one entity. Entities are archived, never purged: posted
// ledger data must survive the entity's logical deletion.
type Entity struct {
	EntityID         string `json:"entityID"`         // Primary Key (UUID)
	Name             string `json:"name"`             // Display name
	BaseCurrencyCode string `json:"baseCurrencyCode"` // Basis currency for balance checks and reports
	IsArchived       bool   `json:"isArchived"`       // Archived entities refuse new postings
	AuditFields
}
