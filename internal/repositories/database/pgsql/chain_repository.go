package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxChainRepository struct {
	BaseRepository
}

func newPgxChainRepository(pool *pgxpool.Pool) portsrepo.ChainRepository {
	return &PgxChainRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ChainRepository = (*PgxChainRepository)(nil)

const chainLinkColumns = `entity_id, sequence_no, transaction_id, prev_hash, hash, created_at`

func scanChainLink(row pgx.Row) (domain.ChainLink, error) {
	var l domain.ChainLink
	err := row.Scan(
		&l.EntityID,
		&l.SequenceNo,
		&l.TransactionID,
		&l.PrevHash,
		&l.Hash,
		&l.CreatedAt,
	)
	return l, err
}

func (r *PgxChainRepository) AppendLinkInTx(ctx context.Context, tx pgx.Tx, link domain.ChainLink) error {
	query := `
		INSERT INTO chain_links (` + chainLinkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := tx.Exec(ctx, query,
		link.EntityID,
		link.SequenceNo,
		link.TransactionID,
		link.PrevHash,
		link.Hash,
		link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append chain link %d for entity %s: %w", link.SequenceNo, link.EntityID, err)
	}
	return nil
}

const lastLinkQuery = `
	SELECT ` + chainLinkColumns + `
	FROM chain_links
	WHERE entity_id = $1
	ORDER BY sequence_no DESC
	LIMIT 1
`

func (r *PgxChainRepository) FindLastLink(ctx context.Context, entityID string) (*domain.ChainLink, error) {
	link, err := scanChainLink(r.Pool.QueryRow(ctx, lastLinkQuery+`;`, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find last chain link for entity %s: %w", entityID, err)
	}
	return &link, nil
}

func (r *PgxChainRepository) FindLastLinkInTx(ctx context.Context, tx pgx.Tx, entityID string) (*domain.ChainLink, error) {
	link, err := scanChainLink(tx.QueryRow(ctx, lastLinkQuery+` FOR UPDATE;`, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock last chain link for entity %s: %w", entityID, err)
	}
	return &link, nil
}

func (r *PgxChainRepository) FindLinksBySequenceRange(ctx context.Context, entityID string, fromSeq, toSeq int64) ([]domain.ChainLink, error) {
	query := `
		SELECT ` + chainLinkColumns + `
		FROM chain_links
		WHERE entity_id = $1 AND sequence_no BETWEEN $2 AND $3
		ORDER BY sequence_no;
	`
	rows, err := r.Pool.Query(ctx, query, entityID, fromSeq, toSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain links for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ChainLink, error) {
		return scanChainLink(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan chain links for entity %s: %w", entityID, err)
	}
	return links, nil
}
