package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// NormalSide indicates whether a line item is a Debit or a Credit leg.
type NormalSide string

const (
	Debit  NormalSide = "DEBIT"
	Credit NormalSide = "CREDIT"
)

// Opposite returns the other side.
func (s NormalSide) Opposite() NormalSide {
	if s == Debit {
		return Credit
	}
	return Debit
}
