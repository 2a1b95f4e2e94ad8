package domain

import "time"

// PeriodStatus indicates whether a reporting period accepts postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// ReportingPeriod is a bounded date range belonging to an entity.
// Transactions may only post into an Open period whose range contains
// the transaction date.
type ReportingPeriod struct {
	PeriodID  string       `json:"periodID"` // Primary Key (UUID)
	EntityID  string       `json:"entityID"` // FK -> entities
	Name      string       `json:"name"`     // e.g. "FY2026 Q1"
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether d falls inside the period's date range,
// inclusive on both ends. Comparison is by calendar day.
func (p ReportingPeriod) Contains(d time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	start := p.StartDate.Truncate(24 * time.Hour)
	end := p.EndDate.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}
