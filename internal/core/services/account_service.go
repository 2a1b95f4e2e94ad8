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
	"github.com/shopspring/decimal"
)

// accountService maintains the chart of accounts and the cached
// natural-side balance per account.
type accountService struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	currencyRepo portsrepo.CurrencyRepository
	entityRepo   portsrepo.EntityRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, currencyRepo portsrepo.CurrencyRepository, entityRepo portsrepo.EntityRepository) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		entityRepo:   entityRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a new account within an entity.
func (s *accountService) CreateAccount(ctx context.Context, entityID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := domain.AccountType(strings.ToUpper(req.AccountType))
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, req.AccountType)
	}

	currencyCode := strings.ToUpper(req.CurrencyCode)
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, currencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", currencyCode, err)
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}
	if entity.IsArchived {
		return nil, fmt.Errorf("%w: entity %s is archived", apperrors.ErrConflict, entityID)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		EntityID:     entityID,
		Name:         req.Name,
		AccountType:  accountType,
		CurrencyCode: currencyCode,
		Description:  req.Description,
		IsActive:     true,
		Balance:      decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("entity_id", entityID))
	return &account, nil
}

// GetAccountByID retrieves an account, scoped to the entity.
func (s *accountService) GetAccountByID(ctx context.Context, entityID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.EntityID != entityID {
		return nil, apperrors.ErrNotFound // Obscure existence
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts, all scoped to the entity.
func (s *accountService) GetAccountsByIDs(ctx context.Context, entityID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for id, acc := range accounts {
		if acc.EntityID != entityID {
			return nil, apperrors.Wrap(apperrors.CodeCrossEntity, apperrors.CategoryAccount,
				fmt.Sprintf("account %s does not belong to entity %s", id, entityID), apperrors.ErrValidation)
		}
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts for an entity.
func (s *accountService) ListAccounts(ctx context.Context, entityID string, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	accounts, err := s.accountRepo.ListAccountsByEntity(ctx, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an account's mutable details. Type and
// currency are fixed at creation.
func (s *accountService) UpdateAccount(ctx context.Context, entityID, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, entityID, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeactivateAccount marks an account inactive. Posted history stays.
func (s *accountService) DeactivateAccount(ctx context.Context, entityID, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, entityID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}

// RecomputeBalance replays posted line items for the account up to
// asOf, independent of the incremental cache path, and compares the
// result against the cached balance. A mismatch is reported as a
// balance-category error value inside the result; the cache is only
// overwritten when repair is requested.
func (s *accountService) RecomputeBalance(ctx context.Context, entityID, accountID string, asOf time.Time, repair bool) (*domain.BalanceRecomputation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, entityID, accountID)
	if err != nil {
		return nil, err
	}

	replayed, err := s.accountRepo.ReplayAccountBalance(ctx, accountID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to replay account balance: %w", err)
	}

	result := &domain.BalanceRecomputation{
		AccountID:       accountID,
		AsOf:            asOf,
		CachedBalance:   account.Balance,
		ReplayedBalance: replayed,
		Match:           account.Balance.Equal(replayed),
	}

	if !result.Match {
		logger.Warn("Balance cache mismatch detected",
			slog.String("account_id", accountID),
			slog.String("cached", account.Balance.String()),
			slog.String("replayed", replayed.String()))
		if repair {
			if err := s.accountRepo.SetAccountBalance(ctx, accountID, replayed, "balance-recompute", time.Now().UTC()); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeBalanceMismatch, apperrors.CategoryBalance,
					"cache mismatch found but repair failed", err)
			}
			result.Repaired = true
			logger.Info("Balance cache repaired", slog.String("account_id", accountID))
		}
	}

	return result, nil
}
