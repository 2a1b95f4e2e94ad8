package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/finledger/finledger/internal/utils/accounting"
	"github.com/finledger/finledger/internal/utils/hashchain"
	"github.com/shopspring/decimal"
)

// postingService implements the transaction lifecycle: draft editing,
// the atomic posting section and reversal. Posting for a given entity
// is serialized by an in-process lock on top of the row locks the
// repositories take, so sequence numbers and chain links can never
// interleave.
type postingService struct {
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	chainRepo   portsrepo.ChainRepository
	periodRepo  portsrepo.PeriodRepository
	entityRepo  portsrepo.EntityRepository
	rateSvc     portssvc.RateSvcFacade

	mu          sync.Mutex
	entityLocks map[string]*sync.Mutex
}

// NewPostingService creates a new PostingService.
func NewPostingService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	chainRepo portsrepo.ChainRepository,
	periodRepo portsrepo.PeriodRepository,
	entityRepo portsrepo.EntityRepository,
	rateSvc portssvc.RateSvcFacade,
) portssvc.PostingSvcFacade {
	return &postingService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
		chainRepo:   chainRepo,
		periodRepo:  periodRepo,
		entityRepo:  entityRepo,
		rateSvc:     rateSvc,
		entityLocks: make(map[string]*sync.Mutex),
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

func (s *postingService) entityLock(entityID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.entityLocks[entityID]
	if !ok {
		lock = &sync.Mutex{}
		s.entityLocks[entityID] = lock
	}
	return lock
}

// CreateTransaction creates a new draft transaction, optionally with
// initial line items. Drafts have no sequence number and no hash and
// never appear in statements.
func (s *postingService) CreateTransaction(ctx context.Context, entityID string, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kind := domain.TransactionKind(strings.ToUpper(req.Kind))
	if !kind.IsValid() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidKind, apperrors.CategoryValidation,
			fmt.Sprintf("unknown transaction kind '%s'", req.Kind), apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Narration) == "" {
		return nil, apperrors.NewValidationError("narration is required")
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}
	if entity.IsArchived {
		return nil, fmt.Errorf("%w: entity %s is archived", apperrors.ErrConflict, entityID)
	}

	accountIDs := []string{req.MainAccountID}
	for _, li := range req.LineItems {
		accountIDs = append(accountIDs, li.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	if err := s.checkAccountsUsable(entityID, accountIDs, accounts); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		EntityID:        entityID,
		Kind:            kind,
		Narration:       req.Narration,
		TransactionDate: req.TransactionDate,
		DueDate:         req.DueDate,
		MainAccountID:   req.MainAccountID,
		Status:          domain.Draft,
		AuditFields:     audit,
	}

	for _, li := range req.LineItems {
		item, err := buildLineItem(txn.TransactionID, li, accounts[li.AccountID], audit)
		if err != nil {
			return nil, err
		}
		txn.LineItems = append(txn.LineItems, *item)
	}

	if err := s.txnRepo.SaveDraft(ctx, txn); err != nil {
		logger.Error("Failed to save draft transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save draft transaction: %w", err)
	}

	logger.Info("Draft transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("entity_id", entityID),
		slog.String("kind", string(kind)))
	return &txn, nil
}

func buildLineItem(transactionID string, req dto.CreateLineItemRequest, account domain.Account, audit domain.AuditFields) (*domain.LineItem, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidAmount, apperrors.CategoryValidation,
			fmt.Sprintf("line item amount must be positive, got %s", req.Amount), apperrors.ErrValidation)
	}
	side := domain.NormalSide(strings.ToUpper(req.Side))
	if side != domain.Debit && side != domain.Credit {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid line item side '%s'", req.Side))
	}
	return &domain.LineItem{
		LineItemID:    uuid.NewString(),
		TransactionID: transactionID,
		AccountID:     req.AccountID,
		Amount:        req.Amount,
		Side:          side,
		CurrencyCode:  account.CurrencyCode,
		Notes:         req.Notes,
		AuditFields:   audit,
	}, nil
}

func (s *postingService) checkAccountsUsable(entityID string, accountIDs []string, accounts map[string]domain.Account) error {
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return apperrors.Wrap(apperrors.CodeAccountNotFound, apperrors.CategoryAccount,
				fmt.Sprintf("account %s not found", id), apperrors.ErrNotFound)
		}
		if account.EntityID != entityID {
			return apperrors.Wrap(apperrors.CodeCrossEntity, apperrors.CategoryAccount,
				fmt.Sprintf("account %s does not belong to entity %s", id, entityID), apperrors.ErrValidation)
		}
		if !account.IsActive {
			return apperrors.Wrap(apperrors.CodeInactiveAccount, apperrors.CategoryAccount,
				fmt.Sprintf("account %s is inactive", id), apperrors.ErrConflict)
		}
	}
	return nil
}

// AddLineItem appends a line item to a draft transaction.
func (s *postingService) AddLineItem(ctx context.Context, entityID, transactionID string, req dto.CreateLineItemRequest, userID string) (*domain.LineItem, error) {
	txn, err := s.loadScoped(ctx, entityID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Draft {
		return nil, apperrors.Wrap(apperrors.CodeNotDraft, apperrors.CategoryTransaction,
			fmt.Sprintf("transaction %s is %s, line items are immutable", transactionID, txn.Status), apperrors.ErrConflict)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{req.AccountID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", req.AccountID, err)
	}
	if err := s.checkAccountsUsable(entityID, []string{req.AccountID}, accounts); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
	item, err := buildLineItem(transactionID, req, accounts[req.AccountID], audit)
	if err != nil {
		return nil, err
	}

	if err := s.txnRepo.AddLineItem(ctx, *item); err != nil {
		return nil, fmt.Errorf("failed to add line item: %w", err)
	}
	return item, nil
}

// BatchCreateTransactions creates a draft for every request item and
// collects per-item outcomes. Items are processed in order and
// independently, so a validation failure in one does not block the
// rest.
func (s *postingService) BatchCreateTransactions(ctx context.Context, entityID string, req dto.BatchCreateTransactionsRequest, creatorUserID string) (*dto.BatchCreateTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	resp := &dto.BatchCreateTransactionsResponse{
		Total:   len(req.Transactions),
		Results: make([]dto.BatchItemResult, 0, len(req.Transactions)),
	}
	for i, item := range req.Transactions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := dto.BatchItemResult{Index: i}
		txn, err := s.CreateTransaction(ctx, entityID, item, creatorUserID)
		if err != nil {
			result.Error = err.Error()
			result.Code = apperrors.CodeOf(err)
			resp.Failed++
		} else {
			result.TransactionID = txn.TransactionID
			resp.Successful++
		}
		resp.Results = append(resp.Results, result)
	}
	if resp.Total > 0 {
		resp.SuccessRate = float64(resp.Successful) / float64(resp.Total) * 100
	}

	logger.Info("Batch transaction creation finished",
		slog.String("entity_id", entityID),
		slog.Int("successful", resp.Successful),
		slog.Int("failed", resp.Failed))
	return resp, nil
}

// UpdateDraft edits a draft transaction's header fields.
func (s *postingService) UpdateDraft(ctx context.Context, entityID, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	txn, err := s.loadScoped(ctx, entityID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Draft {
		return nil, apperrors.Wrap(apperrors.CodeNotDraft, apperrors.CategoryTransaction,
			fmt.Sprintf("transaction %s is %s, its header is immutable", transactionID, txn.Status), apperrors.ErrConflict)
	}

	if req.Narration != nil {
		if strings.TrimSpace(*req.Narration) == "" {
			return nil, apperrors.NewValidationError("narration cannot be empty")
		}
		txn.Narration = *req.Narration
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = *req.TransactionDate
	}
	if req.DueDate != nil {
		txn.DueDate = req.DueDate
	}
	txn.LastUpdatedAt = time.Now().UTC()
	txn.LastUpdatedBy = userID

	if err := s.txnRepo.UpdateDraft(ctx, *txn); err != nil {
		return nil, fmt.Errorf("failed to update draft %s: %w", transactionID, err)
	}
	return txn, nil
}

// RemoveLineItem deletes a line item from a draft transaction.
func (s *postingService) RemoveLineItem(ctx context.Context, entityID, transactionID, lineItemID string, userID string) error {
	txn, err := s.loadScoped(ctx, entityID, transactionID)
	if err != nil {
		return err
	}
	if txn.Status != domain.Draft {
		return apperrors.Wrap(apperrors.CodeNotDraft, apperrors.CategoryTransaction,
			fmt.Sprintf("transaction %s is %s, line items are immutable", transactionID, txn.Status), apperrors.ErrConflict)
	}
	if err := s.txnRepo.RemoveLineItem(ctx, transactionID, lineItemID); err != nil {
		return fmt.Errorf("failed to remove line item: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction with its line items.
func (s *postingService) GetTransaction(ctx context.Context, entityID, transactionID string) (*domain.Transaction, error) {
	return s.loadScoped(ctx, entityID, transactionID)
}

func (s *postingService) loadScoped(ctx context.Context, entityID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if txn.EntityID != entityID {
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

// ListTransactions retrieves a token-paginated transaction list.
func (s *postingService) ListTransactions(ctx context.Context, entityID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txns, nextToken, err := s.txnRepo.ListTransactionsByEntity(ctx, entityID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// PostTransaction validates a draft and posts it atomically: open
// period check, main-side check, balance check in the entity basis
// currency, then sequence assignment, chain append, status flip and
// balance cache update in a single database transaction.
func (s *postingService) PostTransaction(ctx context.Context, entityID, transactionID string, userID string) (*domain.Transaction, error) {
	lock := s.entityLock(entityID)
	lock.Lock()
	defer lock.Unlock()

	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.loadScoped(ctx, entityID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.Draft {
		return nil, apperrors.Wrap(apperrors.CodeNotDraft, apperrors.CategoryTransaction,
			fmt.Sprintf("transaction %s is %s, only drafts can be posted", transactionID, txn.Status), apperrors.ErrConflict)
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}

	accounts, err := s.validateForPosting(ctx, entity, txn, true)
	if err != nil {
		return nil, err
	}

	posted, err := s.postLocked(ctx, entity, txn, accounts, userID, nil)
	if err != nil {
		return nil, err
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", transactionID),
		slog.String("entity_id", entityID),
		slog.Int64("sequence_no", *posted.SequenceNo))
	return posted, nil
}

// validateForPosting runs every pre-posting check and returns the
// loaded accounts. enforceMainSide is off for reversals, whose
// mirrored lines deliberately take the opposite side.
func (s *postingService) validateForPosting(ctx context.Context, entity *domain.Entity, txn *domain.Transaction, enforceMainSide bool) (map[string]domain.Account, error) {
	if len(txn.LineItems) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeEmptyLineItems, apperrors.CategoryTransaction,
			fmt.Sprintf("transaction %s has no line items", txn.TransactionID), apperrors.ErrValidation)
	}

	accountIDs := []string{txn.MainAccountID}
	for _, li := range txn.LineItems {
		if !li.Amount.IsPositive() {
			return nil, apperrors.Wrap(apperrors.CodeInvalidAmount, apperrors.CategoryValidation,
				fmt.Sprintf("line item %s amount must be positive, got %s", li.LineItemID, li.Amount), apperrors.ErrValidation)
		}
		accountIDs = append(accountIDs, li.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	if err := s.checkAccountsUsable(entity.EntityID, accountIDs, accounts); err != nil {
		return nil, err
	}

	if enforceMainSide {
		if side, constrained := txn.Kind.MainSide(); constrained {
			for _, li := range txn.LineItems {
				if li.AccountID == txn.MainAccountID && li.Side != side {
					return nil, apperrors.Wrap(apperrors.CodeMainSideMismatch, apperrors.CategoryTransaction,
						fmt.Sprintf("%s requires %s against the main account, line item %s is %s",
							txn.Kind, side, li.LineItemID, li.Side), apperrors.ErrValidation)
				}
			}
		}
	}

	period, err := s.periodRepo.FindPeriodForDate(ctx, entity.EntityID, txn.TransactionDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodePeriodNotFound, apperrors.CategoryPeriod,
				fmt.Sprintf("no reporting period contains %s", txn.TransactionDate.Format("2006-01-02")), err)
		}
		return nil, fmt.Errorf("failed to resolve reporting period: %w", err)
	}
	if period.Status == domain.PeriodClosed {
		return nil, apperrors.Wrap(apperrors.CodePeriodClosed, apperrors.CategoryPeriod,
			fmt.Sprintf("period %s is closed for date %s", period.PeriodID, txn.TransactionDate.Format("2006-01-02")), apperrors.ErrConflict)
	}

	if err := s.checkBalanced(ctx, entity, txn, accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// checkBalanced converts every line to the entity basis currency as of
// the transaction date and requires debit and credit totals to match
// exactly. No tolerance: a rounding residue is the caller's problem to
// carry on an explicit line.
func (s *postingService) checkBalanced(ctx context.Context, entity *domain.Entity, txn *domain.Transaction, accounts map[string]domain.Account) error {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, li := range txn.LineItems {
		amount := li.Amount
		currency := accounts[li.AccountID].CurrencyCode
		if currency != entity.BaseCurrencyCode {
			converted, err := s.rateSvc.Convert(ctx, entity.EntityID, li.Amount, currency, entity.BaseCurrencyCode, txn.TransactionDate)
			if err != nil {
				return fmt.Errorf("failed to convert line item %s to basis currency: %w", li.LineItemID, err)
			}
			amount = converted
		}
		if li.Side == domain.Debit {
			debits = debits.Add(amount)
		} else {
			credits = credits.Add(amount)
		}
	}
	if !debits.Equal(credits) {
		return apperrors.Wrap(apperrors.CodeUnbalanced, apperrors.CategoryTransaction,
			fmt.Sprintf("debits %s != credits %s in %s", debits, credits, entity.BaseCurrencyCode), apperrors.ErrValidation)
	}
	return nil
}

// postLocked runs the atomic posting section. The caller holds the
// entity lock and has already validated. reversed, when non-nil, is
// the original transaction this posting offsets; it is flipped to
// REVERSED in the same database transaction.
func (s *postingService) postLocked(ctx context.Context, entity *domain.Entity, txn *domain.Transaction, accounts map[string]domain.Account, userID string, reversed *domain.Transaction) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin posting transaction: %w", err)
	}
	defer func() { _ = s.txnRepo.Rollback(ctx, tx) }()

	if reversed != nil {
		// Reversal creates its transaction inside the posting section so
		// no half-created reversal draft can ever exist.
		if err := s.txnRepo.SaveTransactionInTx(ctx, tx, *txn); err != nil {
			return nil, fmt.Errorf("failed to save reversal transaction: %w", err)
		}
	}

	seq, err := s.txnRepo.NextSequenceInTx(ctx, tx, entity.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sequence number: %w", err)
	}

	prevHash := hashchain.GenesisHash(entity.EntityID)
	lastLink, err := s.chainRepo.FindLastLinkInTx(ctx, tx, entity.EntityID)
	switch {
	case err == nil:
		if lastLink.SequenceNo != seq-1 {
			return nil, apperrors.New(apperrors.CodeChainBroken, apperrors.CategorySystem,
				fmt.Sprintf("chain head at sequence %d but allocating %d for entity %s", lastLink.SequenceNo, seq, entity.EntityID))
		}
		prevHash = lastLink.Hash
	case errors.Is(err, apperrors.ErrNotFound):
		if seq != 1 {
			return nil, apperrors.New(apperrors.CodeChainBroken, apperrors.CategorySystem,
				fmt.Sprintf("empty chain but allocating sequence %d for entity %s", seq, entity.EntityID))
		}
	default:
		return nil, fmt.Errorf("failed to read chain head: %w", err)
	}

	now := time.Now().UTC()
	hash := hashchain.LinkHash(prevHash, *txn)

	if err := s.chainRepo.AppendLinkInTx(ctx, tx, domain.ChainLink{
		EntityID:      entity.EntityID,
		SequenceNo:    seq,
		TransactionID: txn.TransactionID,
		PrevHash:      prevHash,
		Hash:          hash,
		CreatedAt:     now,
	}); err != nil {
		return nil, fmt.Errorf("failed to append chain link: %w", err)
	}

	if err := s.txnRepo.MarkPostedInTx(ctx, tx, txn.TransactionID, seq, hash, userID, now); err != nil {
		return nil, fmt.Errorf("failed to mark transaction posted: %w", err)
	}

	if reversed != nil {
		if err := s.txnRepo.MarkReversedInTx(ctx, tx, reversed.TransactionID, txn.TransactionID, userID, now); err != nil {
			return nil, fmt.Errorf("failed to mark original transaction reversed: %w", err)
		}
	}

	accountTypes := make(map[string]domain.AccountType, len(accounts))
	for id, acc := range accounts {
		accountTypes[id] = acc.AccountType
	}
	deltas, err := accounting.BalanceDeltas(txn.LineItems, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance deltas: %w", err)
	}
	lockedIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		lockedIDs = append(lockedIDs, id)
	}
	if _, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, lockedIDs); err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	if err := s.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, userID, now); err != nil {
		return nil, fmt.Errorf("failed to update balance caches: %w", err)
	}

	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		logger.Error("Posting commit failed", slog.String("transaction_id", txn.TransactionID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to commit posting transaction: %w", err)
	}

	txn.Status = domain.Posted
	txn.SequenceNo = &seq
	txn.IntegrityHash = hash
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID
	return txn, nil
}

// ReverseTransaction creates and posts an offsetting transaction dated
// at the given date, then marks the original REVERSED. The original's
// sequence number, hash and line items stay untouched; the chain only
// ever grows.
func (s *postingService) ReverseTransaction(ctx context.Context, entityID, transactionID string, date time.Time, userID string) (*domain.Transaction, error) {
	lock := s.entityLock(entityID)
	lock.Lock()
	defer lock.Unlock()

	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.loadScoped(ctx, entityID, transactionID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.Reversed || original.ReversedByID != nil {
		return nil, apperrors.Wrap(apperrors.CodeAlreadyReversed, apperrors.CategoryTransaction,
			fmt.Sprintf("transaction %s is already reversed", transactionID), apperrors.ErrConflict)
	}
	if original.Status != domain.Posted {
		return nil, apperrors.Wrap(apperrors.CodeNotPosted, apperrors.CategoryTransaction,
			fmt.Sprintf("transaction %s is %s, only posted transactions can be reversed", transactionID, original.Status), apperrors.ErrConflict)
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}

	reversal := domain.Transaction{
		TransactionID:   uuid.NewString(),
		EntityID:        entityID,
		Kind:            original.Kind,
		Narration:       fmt.Sprintf("Reversal of: %s", original.Narration),
		TransactionDate: date,
		MainAccountID:   original.MainAccountID,
		Status:          domain.Draft,
		ReversesID:      &original.TransactionID,
		AuditFields:     audit,
	}
	for _, li := range original.LineItems {
		reversal.LineItems = append(reversal.LineItems, domain.LineItem{
			LineItemID:    uuid.NewString(),
			TransactionID: reversal.TransactionID,
			AccountID:     li.AccountID,
			Amount:        li.Amount,
			Side:          li.Side.Opposite(),
			CurrencyCode:  li.CurrencyCode,
			Notes:         li.Notes,
			AuditFields:   audit,
		})
	}

	// Mirrored sides intentionally break the kind's main-side rule.
	accounts, err := s.validateForPosting(ctx, entity, &reversal, false)
	if err != nil {
		return nil, err
	}

	posted, err := s.postLocked(ctx, entity, &reversal, accounts, userID, original)
	if err != nil {
		return nil, err
	}

	logger.Info("Transaction reversed",
		slog.String("original_id", transactionID),
		slog.String("reversal_id", posted.TransactionID),
		slog.Int64("sequence_no", *posted.SequenceNo))
	return posted, nil
}
