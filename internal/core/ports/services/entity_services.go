package services

import (
	"context"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/finledger/finledger/internal/dto"
)

// EntitySvcFacade defines operations for managing accounting entities.
type EntitySvcFacade interface {
	// CreateEntity registers a new accounting unit.
	CreateEntity(ctx context.Context, req dto.CreateEntityRequest, creatorUserID string) (*domain.Entity, error)

	// GetEntityByID retrieves an entity by its ID.
	GetEntityByID(ctx context.Context, entityID string) (*domain.Entity, error)

	// ListEntities retrieves all non-archived entities.
	ListEntities(ctx context.Context) ([]domain.Entity, error)

	// ArchiveEntity archives an entity; its posted ledger is retained.
	ArchiveEntity(ctx context.Context, entityID string, userID string) error
}

// CurrencySvcFacade defines operations for managing currencies.
type CurrencySvcFacade interface {
	// CreateCurrency registers a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// UpdateCurrency edits a currency's display fields and precision.
	// Precision is immutable once posted line items reference the code.
	UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error)

	// GetCurrencyByCode retrieves a currency by its code.
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all known currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
