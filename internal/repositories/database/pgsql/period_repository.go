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

type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepository {
	return &PgxPeriodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PeriodRepository = (*PgxPeriodRepository)(nil)

const periodColumns = `period_id, entity_id, name, start_date, end_date, status, created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (domain.ReportingPeriod, error) {
	var p domain.ReportingPeriod
	err := row.Scan(
		&p.PeriodID,
		&p.EntityID,
		&p.Name,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	return p, err
}

func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.ReportingPeriod) error {
	query := `
		INSERT INTO reporting_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		period.PeriodID,
		period.EntityID,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.Status,
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save period %s: %w", period.PeriodID, err)
	}
	return nil
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.ReportingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM reporting_periods WHERE period_id = $1;`
	period, err := scanPeriod(r.Pool.QueryRow(ctx, query, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	return &period, nil
}

func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, entityID string, date time.Time) (*domain.ReportingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM reporting_periods
		WHERE entity_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date
		LIMIT 1;
	`
	period, err := scanPeriod(r.Pool.QueryRow(ctx, query, entityID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period for entity %s on %s: %w", entityID, date.Format(time.DateOnly), err)
	}
	return &period, nil
}

func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, entityID string) ([]domain.ReportingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM reporting_periods
		WHERE entity_id = $1
		ORDER BY start_date;
	`
	rows, err := r.Pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	periods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ReportingPeriod, error) {
		return scanPeriod(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan periods for entity %s: %w", entityID, err)
	}
	return periods, nil
}

func (r *PgxPeriodRepository) UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, userID string, now time.Time) error {
	query := `
		UPDATE reporting_periods
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE period_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, periodID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of period %s: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
