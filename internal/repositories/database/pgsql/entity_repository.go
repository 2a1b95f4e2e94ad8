package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

type PgxEntityRepository struct {
	BaseRepository
}

func newPgxEntityRepository(pool *pgxpool.Pool) portsrepo.EntityRepository {
	return &PgxEntityRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.EntityRepository = (*PgxEntityRepository)(nil)

func (r *PgxEntityRepository) SaveEntity(ctx context.Context, entity domain.Entity) error {
	query := `
		INSERT INTO entities (entity_id, name, base_currency_code, is_archived, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		entity.EntityID,
		entity.Name,
		entity.BaseCurrencyCode,
		entity.IsArchived,
		entity.CreatedAt,
		entity.CreatedBy,
		entity.LastUpdatedAt,
		entity.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("entity %s: %w", entity.EntityID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save entity %s: %w", entity.EntityID, err)
	}
	return nil
}

func scanEntity(row pgx.Row) (domain.Entity, error) {
	var e domain.Entity
	err := row.Scan(
		&e.EntityID,
		&e.Name,
		&e.BaseCurrencyCode,
		&e.IsArchived,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	return e, err
}

func (r *PgxEntityRepository) FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	query := `
		SELECT entity_id, name, base_currency_code, is_archived, created_at, created_by, last_updated_at, last_updated_by
		FROM entities
		WHERE entity_id = $1;
	`
	entity, err := scanEntity(r.Pool.QueryRow(ctx, query, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}
	return &entity, nil
}

func (r *PgxEntityRepository) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	query := `
		SELECT entity_id, name, base_currency_code, is_archived, created_at, created_by, last_updated_at, last_updated_by
		FROM entities
		WHERE is_archived = FALSE
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	entities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Entity, error) {
		return scanEntity(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan entities: %w", err)
	}
	return entities, nil
}

func (r *PgxEntityRepository) UpdateEntity(ctx context.Context, entity domain.Entity) error {
	query := `
		UPDATE entities
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entity_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, entity.EntityID, entity.Name, entity.LastUpdatedAt, entity.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update entity %s: %w", entity.EntityID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxEntityRepository) ArchiveEntity(ctx context.Context, entityID string, userID string, now time.Time) error {
	query := `
		UPDATE entities
		SET is_archived = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE entity_id = $1 AND is_archived = FALSE;
	`
	tag, err := r.Pool.Exec(ctx, query, entityID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to archive entity %s: %w", entityID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
