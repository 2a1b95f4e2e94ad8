package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
)

// entityService provides operations on accounting entities.
type entityService struct {
	entityRepo   portsrepo.EntityRepository
	currencyRepo portsrepo.CurrencyRepository
}

// NewEntityService creates a new EntityService.
func NewEntityService(entityRepo portsrepo.EntityRepository, currencyRepo portsrepo.CurrencyRepository) portssvc.EntitySvcFacade {
	return &entityService{
		entityRepo:   entityRepo,
		currencyRepo: currencyRepo,
	}
}

var _ portssvc.EntitySvcFacade = (*entityService)(nil)

// CreateEntity registers a new accounting unit after validating its
// basis currency exists.
func (s *entityService) CreateEntity(ctx context.Context, req dto.CreateEntityRequest, creatorUserID string) (*domain.Entity, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	baseCurrency := strings.ToUpper(req.BaseCurrencyCode)
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, baseCurrency); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: basis currency '%s' not found", apperrors.ErrValidation, baseCurrency)
		}
		return nil, fmt.Errorf("failed to validate basis currency '%s': %w", baseCurrency, err)
	}

	now := time.Now().UTC()
	entity := domain.Entity{
		EntityID:         uuid.NewString(),
		Name:             req.Name,
		BaseCurrencyCode: baseCurrency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.entityRepo.SaveEntity(ctx, entity); err != nil {
		logger.Error("Failed to save entity", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entity: %w", err)
	}

	logger.Info("Entity created", slog.String("entity_id", entity.EntityID))
	return &entity, nil
}

// GetEntityByID retrieves an entity by its ID.
func (s *entityService) GetEntityByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}
	return entity, nil
}

// ListEntities retrieves all non-archived entities.
func (s *entityService) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	entities, err := s.entityRepo.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return entities, nil
}

// ArchiveEntity marks an entity archived. Posted ledger data is
// retained; archived entities simply refuse new postings.
func (s *entityService) ArchiveEntity(ctx context.Context, entityID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}
	if entity.IsArchived {
		return fmt.Errorf("%w: entity %s is already archived", apperrors.ErrConflict, entityID)
	}

	if err := s.entityRepo.ArchiveEntity(ctx, entityID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to archive entity", slog.String("entity_id", entityID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to archive entity: %w", err)
	}

	logger.Info("Entity archived", slog.String("entity_id", entityID))
	return nil
}
