package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
)

// currencyService provides business logic for currencies.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepository
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepository) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// CreateCurrency registers a new currency. Precision is immutable once
// any posted line item references the currency, enforced here by
// refusing duplicates outright.
func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	code := strings.ToUpper(req.CurrencyCode)
	if len(code) != 3 {
		return nil, fmt.Errorf("%w: currency code must be 3 letters", apperrors.ErrValidation)
	}
	if req.Precision < 0 || req.Precision > 8 {
		return nil, fmt.Errorf("%w: currency precision must be between 0 and 8", apperrors.ErrValidation)
	}

	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: currency '%s' already exists", apperrors.ErrDuplicate, code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check currency '%s': %w", code, err)
	}

	now := time.Now().UTC()
	currency := domain.Currency{
		CurrencyCode: code,
		Symbol:       req.Symbol,
		Name:         req.Name,
		Precision:    req.Precision,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to save currency: %w", err)
	}
	return &currency, nil
}

// UpdateCurrency edits a currency's display fields and precision.
// Precision is immutable once any posted line item references the
// currency.
func (s *currencyService) UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error) {
	code = strings.ToUpper(code)
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency '%s': %w", code, err)
	}

	if req.Precision != nil && *req.Precision != currency.Precision {
		if *req.Precision < 0 || *req.Precision > 8 {
			return nil, fmt.Errorf("%w: currency precision must be between 0 and 8", apperrors.ErrValidation)
		}
		referenced, err := s.currencyRepo.IsCurrencyReferenced(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check references of currency '%s': %w", code, err)
		}
		if referenced {
			return nil, apperrors.Wrap(apperrors.CodeCurrencyInUse, apperrors.CategoryValidation,
				fmt.Sprintf("currency '%s' is referenced by posted line items, precision is immutable", code), apperrors.ErrConflict)
		}
		currency.Precision = *req.Precision
	}
	if req.Symbol != nil {
		currency.Symbol = *req.Symbol
	}
	if req.Name != nil {
		currency.Name = *req.Name
	}
	currency.LastUpdatedAt = time.Now().UTC()
	currency.LastUpdatedBy = userID

	if err := s.currencyRepo.UpdateCurrency(ctx, *currency); err != nil {
		return nil, fmt.Errorf("failed to update currency '%s': %w", code, err)
	}
	return currency, nil
}

// GetCurrencyByCode retrieves a currency by its code.
func (s *currencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	code = strings.ToUpper(code)
	if len(code) != 3 {
		return nil, fmt.Errorf("%w: currency code must be 3 letters", apperrors.ErrValidation)
	}
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency '%s': %w", code, err)
	}
	return currency, nil
}

// ListCurrencies retrieves all known currencies.
func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}
