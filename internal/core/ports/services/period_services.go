package services

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/finledger/finledger/internal/dto"
)

// PeriodSvcFacade defines operations for managing reporting periods.
type PeriodSvcFacade interface {
	// CreatePeriod opens a new reporting period for an entity.
	CreatePeriod(ctx context.Context, entityID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.ReportingPeriod, error)

	// GetPeriodByID retrieves a period by its ID.
	GetPeriodByID(ctx context.Context, entityID, periodID string) (*domain.ReportingPeriod, error)

	// ListPeriods retrieves all periods for an entity.
	ListPeriods(ctx context.Context, entityID string) ([]domain.ReportingPeriod, error)

	// FindPeriodForDate resolves the period containing a date.
	FindPeriodForDate(ctx context.Context, entityID string, date time.Time) (*domain.ReportingPeriod, error)

	// ClosePeriod closes a period; closed periods refuse new postings.
	ClosePeriod(ctx context.Context, entityID, periodID string, userID string) error

	// ReopenPeriod reopens a closed period.
	ReopenPeriod(ctx context.Context, entityID, periodID string, userID string) error
}
