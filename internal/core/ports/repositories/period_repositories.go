package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
)

// PeriodRepository defines persistence operations for reporting periods.
type PeriodRepository interface {
	// SavePeriod persists a new reporting period.
	SavePeriod(ctx context.Context, period domain.ReportingPeriod) error

	// FindPeriodByID retrieves a period by its unique identifier.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.ReportingPeriod, error)

	// FindPeriodForDate retrieves the period of an entity whose range
	// contains the given date, regardless of status.
	FindPeriodForDate(ctx context.Context, entityID string, date time.Time) (*domain.ReportingPeriod, error)

	// ListPeriods retrieves all periods for an entity ordered by start date.
	ListPeriods(ctx context.Context, entityID string) ([]domain.ReportingPeriod, error)

	// UpdatePeriodStatus transitions a period between OPEN and CLOSED.
	UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, userID string, now time.Time) error
}
