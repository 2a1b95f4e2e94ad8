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

type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepository = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `exchange_rate_id, entity_id, from_currency_code, to_currency_code, rate, effective_date, created_at, created_by, last_updated_at, last_updated_by`

func scanExchangeRate(row pgx.Row) (domain.ExchangeRate, error) {
	var er domain.ExchangeRate
	err := row.Scan(
		&er.ExchangeRateID,
		&er.EntityID,
		&er.FromCurrencyCode,
		&er.ToCurrencyCode,
		&er.Rate,
		&er.EffectiveDate,
		&er.CreatedAt,
		&er.CreatedBy,
		&er.LastUpdatedAt,
		&er.LastUpdatedBy,
	)
	return er, err
}

func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.EntityID,
		rate.FromCurrencyCode,
		rate.ToCurrencyCode,
		rate.Rate,
		rate.EffectiveDate,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("rate %s/%s effective %s: %w",
				rate.FromCurrencyCode, rate.ToCurrencyCode, rate.EffectiveDate.Format("2006-01-02"), apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return nil
}

func (r *PgxExchangeRateRepository) FindRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates WHERE exchange_rate_id = $1;`
	rate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, rateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find exchange rate %s: %w", rateID, err)
	}
	return &rate, nil
}

func (r *PgxExchangeRateRepository) FindRatesForPair(ctx context.Context, entityID, fromCode, toCode string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE entity_id = $1 AND from_currency_code = $2 AND to_currency_code = $3;
	`
	rows, err := r.Pool.Query(ctx, query, entityID, fromCode, toCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for %s/%s: %w", fromCode, toCode, err)
	}
	defer rows.Close()

	rates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ExchangeRate, error) {
		return scanExchangeRate(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rates for %s/%s: %w", fromCode, toCode, err)
	}
	return rates, nil
}

func (r *PgxExchangeRateRepository) FindRateByPairAndDate(ctx context.Context, entityID, fromCode, toCode string, effectiveDate time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE entity_id = $1 AND from_currency_code = $2 AND to_currency_code = $3 AND effective_date = $4;
	`
	rate, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, entityID, fromCode, toCode, effectiveDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rate for %s/%s on %s: %w",
			fromCode, toCode, effectiveDate.Format("2006-01-02"), err)
	}
	return &rate, nil
}

func (r *PgxExchangeRateRepository) ListRates(ctx context.Context, entityID string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE entity_id = $1
		ORDER BY from_currency_code, to_currency_code, effective_date DESC;
	`
	rows, err := r.Pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	rates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ExchangeRate, error) {
		return scanExchangeRate(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rates for entity %s: %w", entityID, err)
	}
	return rates, nil
}
