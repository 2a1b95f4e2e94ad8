package repositories

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
)

// EntityRepository defines persistence operations for accounting entities.
type EntityRepository interface {
	// SaveEntity persists a new entity.
	SaveEntity(ctx context.Context, entity domain.Entity) error

	// FindEntityByID retrieves an entity by its unique identifier.
	FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error)

	// ListEntities retrieves all non-archived entities.
	ListEntities(ctx context.Context) ([]domain.Entity, error)

	// UpdateEntity updates an entity's mutable details.
	UpdateEntity(ctx context.Context, entity domain.Entity) error

	// ArchiveEntity marks an entity as archived. Posted ledger data is
	// never purged.
	ArchiveEntity(ctx context.Context, entityID string, userID string, now time.Time) error
}
