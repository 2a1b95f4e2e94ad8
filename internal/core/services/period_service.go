package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
)

// periodService provides operations on reporting periods.
type periodService struct {
	periodRepo portsrepo.PeriodRepository
	entityRepo portsrepo.EntityRepository
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepository, entityRepo portsrepo.EntityRepository) portssvc.PeriodSvcFacade {
	return &periodService{
		periodRepo: periodRepo,
		entityRepo: entityRepo,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreatePeriod opens a new reporting period. The range must be valid
// and must not overlap an existing period of the entity.
func (s *periodService) CreatePeriod(ctx context.Context, entityID string, req dto.CreatePeriodRequest, creatorUserID string) (*domain.ReportingPeriod, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: period end date must be after start date", apperrors.ErrValidation)
	}

	if _, err := s.entityRepo.FindEntityByID(ctx, entityID); err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}

	existing, err := s.periodRepo.ListPeriods(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	for _, p := range existing {
		if req.StartDate.Before(p.EndDate) && p.StartDate.Before(req.EndDate) {
			return nil, fmt.Errorf("%w: period overlaps existing period %s", apperrors.ErrConflict, p.PeriodID)
		}
	}

	now := time.Now().UTC()
	period := domain.ReportingPeriod{
		PeriodID:  uuid.NewString(),
		EntityID:  entityID,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		logger.Error("Failed to save period", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	logger.Info("Reporting period created", slog.String("period_id", period.PeriodID), slog.String("entity_id", entityID))
	return &period, nil
}

// GetPeriodByID retrieves a period, scoped to the entity.
func (s *periodService) GetPeriodByID(ctx context.Context, entityID, periodID string) (*domain.ReportingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if period.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}
	return period, nil
}

// ListPeriods retrieves all periods for an entity.
func (s *periodService) ListPeriods(ctx context.Context, entityID string) ([]domain.ReportingPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

// FindPeriodForDate resolves the period containing a date.
func (s *periodService) FindPeriodForDate(ctx context.Context, entityID string, date time.Time) (*domain.ReportingPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, entityID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodePeriodNotFound, apperrors.CategoryPeriod,
				fmt.Sprintf("no reporting period contains date %s", date.Format("2006-01-02")), err)
		}
		return nil, fmt.Errorf("failed to find period for date: %w", err)
	}
	return period, nil
}

// ClosePeriod closes a period. Closed periods refuse new postings.
func (s *periodService) ClosePeriod(ctx context.Context, entityID, periodID string, userID string) error {
	return s.setStatus(ctx, entityID, periodID, domain.PeriodClosed, userID)
}

// ReopenPeriod reopens a closed period.
func (s *periodService) ReopenPeriod(ctx context.Context, entityID, periodID string, userID string) error {
	return s.setStatus(ctx, entityID, periodID, domain.PeriodOpen, userID)
}

func (s *periodService) setStatus(ctx context.Context, entityID, periodID string, status domain.PeriodStatus, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.GetPeriodByID(ctx, entityID, periodID)
	if err != nil {
		return err
	}
	if period.Status == status {
		return fmt.Errorf("%w: period %s is already %s", apperrors.ErrConflict, periodID, status)
	}

	if err := s.periodRepo.UpdatePeriodStatus(ctx, periodID, status, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to update period status", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update period status: %w", err)
	}

	logger.Info("Period status updated", slog.String("period_id", periodID), slog.String("status", string(status)))
	return nil
}
