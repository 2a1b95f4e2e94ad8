package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	"github.com/finledger/finledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, entity_id, kind, narration, transaction_date, due_date, main_account_id, status, sequence_no, integrity_hash, reverses_id, reversed_by_id, created_at, created_by, last_updated_at, last_updated_by`

const lineItemColumns = `line_item_id, transaction_id, account_id, amount, side, currency_code, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.EntityID,
		&t.Kind,
		&t.Narration,
		&t.TransactionDate,
		&t.DueDate,
		&t.MainAccountID,
		&t.Status,
		&t.SequenceNo,
		&t.IntegrityHash,
		&t.ReversesID,
		&t.ReversedByID,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}

func scanLineItem(row pgx.Row) (domain.LineItem, error) {
	var li domain.LineItem
	err := row.Scan(
		&li.LineItemID,
		&li.TransactionID,
		&li.AccountID,
		&li.Amount,
		&li.Side,
		&li.CurrencyCode,
		&li.Notes,
		&li.CreatedAt,
		&li.CreatedBy,
		&li.LastUpdatedAt,
		&li.LastUpdatedBy,
	)
	return li, err
}

// attachLineItems loads the line items of all given transactions in a
// single query and distributes them in place.
func (r *PgxTransactionRepository) attachLineItems(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	ids := make([]string, len(txns))
	index := make(map[string]*domain.Transaction, len(txns))
	for i := range txns {
		ids[i] = txns[i].TransactionID
		index[txns[i].TransactionID] = &txns[i]
	}

	query := `
		SELECT ` + lineItemColumns + `
		FROM line_items
		WHERE transaction_id = ANY($1)
		ORDER BY created_at, line_item_id;
	`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		if txn, ok := index[item.TransactionID]; ok {
			txn.LineItems = append(txn.LineItems, item)
		}
	}
	return rows.Err()
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	txns := []domain.Transaction{txn}
	if err := r.attachLineItems(ctx, txns); err != nil {
		return nil, err
	}
	return &txns[0], nil
}

func (r *PgxTransactionRepository) ListTransactionsByEntity(ctx context.Context, entityID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := []any{entityID, limit + 1}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE entity_id = $1
	`
	if nextToken != nil && *nextToken != "" {
		txnDate, createdAt, txnID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid pagination token: " + err.Error())
		}
		query += ` AND (transaction_date, created_at, transaction_id) < ($3, $4, $5)`
		args = append(args, txnDate, createdAt, txnID)
	}
	query += `
		ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC
		LIMIT $2;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan transactions for entity %s: %w", entityID, err)
	}

	var token *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		t := pagination.EncodeToken(last.TransactionDate, last.CreatedAt, last.TransactionID)
		token = &t
	}

	if err := r.attachLineItems(ctx, txns); err != nil {
		return nil, nil, err
	}
	return txns, token, nil
}

func (r *PgxTransactionRepository) FindPostedBySequenceRange(ctx context.Context, entityID string, fromSeq, toSeq int64) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE entity_id = $1
		  AND status IN ('POSTED', 'REVERSED')
		  AND sequence_no BETWEEN $2 AND $3
		ORDER BY sequence_no;
	`
	rows, err := r.Pool.Query(ctx, query, entityID, fromSeq, toSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted transactions for entity %s: %w", entityID, err)
	}
	defer rows.Close()

	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan posted transactions for entity %s: %w", entityID, err)
	}

	if err := r.attachLineItems(ctx, txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *PgxTransactionRepository) SaveDraft(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(apperrors.CodeStorageFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := saveTransactionTree(ctx, tx, txn); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(apperrors.CodeStorageFailure, "failed to commit transaction", err)
	}
	return nil
}

// saveTransactionTree inserts a transaction header and its line items.
func saveTransactionTree(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	headerQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := tx.Exec(ctx, headerQuery,
		txn.TransactionID,
		txn.EntityID,
		txn.Kind,
		txn.Narration,
		txn.TransactionDate,
		txn.DueDate,
		txn.MainAccountID,
		txn.Status,
		txn.SequenceNo,
		txn.IntegrityHash,
		txn.ReversesID,
		txn.ReversedByID,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}

	for _, item := range txn.LineItems {
		if err := insertLineItem(ctx, tx, item); err != nil {
			return err
		}
	}
	return nil
}

func insertLineItem(ctx context.Context, tx pgx.Tx, item domain.LineItem) error {
	query := `
		INSERT INTO line_items (` + lineItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		item.LineItemID,
		item.TransactionID,
		item.AccountID,
		item.Amount,
		item.Side,
		item.CurrencyCode,
		item.Notes,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save line item %s: %w", item.LineItemID, err)
	}
	return nil
}

func (r *PgxTransactionRepository) UpdateDraft(ctx context.Context, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET narration = $2, transaction_date = $3, due_date = $4, last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $1 AND status = 'DRAFT';
	`
	tag, err := r.Pool.Exec(ctx, query,
		txn.TransactionID, txn.Narration, txn.TransactionDate, txn.DueDate, txn.LastUpdatedAt, txn.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.draftMissingError(ctx, txn.TransactionID)
	}
	return nil
}

func (r *PgxTransactionRepository) AddLineItem(ctx context.Context, item domain.LineItem) error {
	// Guarded insert: the row only lands if the parent is still a draft.
	query := `
		INSERT INTO line_items (` + lineItemColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE EXISTS (
			SELECT 1 FROM transactions WHERE transaction_id = $2 AND status = 'DRAFT'
		);
	`
	tag, err := r.Pool.Exec(ctx, query,
		item.LineItemID,
		item.TransactionID,
		item.AccountID,
		item.Amount,
		item.Side,
		item.CurrencyCode,
		item.Notes,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to add line item to transaction %s: %w", item.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.draftMissingError(ctx, item.TransactionID)
	}
	return nil
}

func (r *PgxTransactionRepository) RemoveLineItem(ctx context.Context, transactionID, lineItemID string) error {
	query := `
		DELETE FROM line_items li
		USING transactions t
		WHERE li.line_item_id = $2
		  AND li.transaction_id = $1
		  AND t.transaction_id = li.transaction_id
		  AND t.status = 'DRAFT';
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, lineItemID)
	if err != nil {
		return fmt.Errorf("failed to remove line item %s: %w", lineItemID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.draftMissingError(ctx, transactionID)
	}
	return nil
}

// draftMissingError distinguishes "no such transaction" from "exists but
// is no longer a draft" after a zero-row draft mutation.
func (r *PgxTransactionRepository) draftMissingError(ctx context.Context, transactionID string) error {
	var status domain.TransactionStatus
	err := r.Pool.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1;`, transactionID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check status of transaction %s: %w", transactionID, err)
	}
	return apperrors.NewAppError(apperrors.CodeNotDraft, fmt.Sprintf("transaction %s is %s, not a draft", transactionID, status), apperrors.ErrConflict)
}

func (r *PgxTransactionRepository) NextSequenceInTx(ctx context.Context, tx pgx.Tx, entityID string) (int64, error) {
	// The counter row is locked until the posting transaction commits,
	// which is what keeps the sequence gap-free under concurrency.
	query := `
		INSERT INTO entity_sequences (entity_id, next_sequence)
		VALUES ($1, 2)
		ON CONFLICT (entity_id)
		DO UPDATE SET next_sequence = entity_sequences.next_sequence + 1
		RETURNING next_sequence - 1;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, entityID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate sequence for entity %s: %w", entityID, err)
	}
	return seq, nil
}

func (r *PgxTransactionRepository) MarkPostedInTx(ctx context.Context, tx pgx.Tx, transactionID string, seq int64, hash string, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = 'POSTED', sequence_no = $2, integrity_hash = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, query, transactionID, seq, hash, now, userID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s posted: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func (r *PgxTransactionRepository) MarkReversedInTx(ctx context.Context, tx pgx.Tx, transactionID, reversalID string, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = 'REVERSED', reversed_by_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND status = 'POSTED';
	`
	tag, err := tx.Exec(ctx, query, transactionID, reversalID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s reversed: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	return saveTransactionTree(ctx, tx, txn)
}
