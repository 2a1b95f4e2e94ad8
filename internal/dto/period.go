package dto

import (
	"time"

	"github.com/finledger/finledger/internal/core/domain"
)

// CreatePeriodRequest is the request body for opening a reporting period.
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// PeriodResponse defines the data returned for a reporting period.
type PeriodResponse struct {
	PeriodID  string    `json:"periodID"`
	EntityID  string    `json:"entityID"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

// ToPeriodResponse converts a domain.ReportingPeriod.
func ToPeriodResponse(p *domain.ReportingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:  p.PeriodID,
		EntityID:  p.EntityID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    string(p.Status),
	}
}

// ToPeriodResponses converts a slice of domain periods.
func ToPeriodResponses(periods []domain.ReportingPeriod) []PeriodResponse {
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = ToPeriodResponse(&periods[i])
	}
	return responses
}
