package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
)

// triangulationPrecision is the number of decimal places kept when
// deriving a rate through the basis currency. Final amounts are still
// rounded to the target currency's own precision.
const triangulationPrecision = 16

// rateService resolves historical exchange rates and converts amounts
// between currencies.
type rateService struct {
	rateRepo     portsrepo.ExchangeRateRepository
	currencyRepo portsrepo.CurrencyRepository
	entityRepo   portsrepo.EntityRepository
}

// NewRateService creates a new RateService.
func NewRateService(rateRepo portsrepo.ExchangeRateRepository, currencyRepo portsrepo.CurrencyRepository, entityRepo portsrepo.EntityRepository) portssvc.RateSvcFacade {
	return &rateService{
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		entityRepo:   entityRepo,
	}
}

var _ portssvc.RateSvcFacade = (*rateService)(nil)

// CreateExchangeRate stores a new rate after validation. A second rate
// for the same pair and effective date is refused.
func (s *rateService) CreateExchangeRate(ctx context.Context, entityID string, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	fromCode := strings.ToUpper(req.FromCurrencyCode)
	toCode := strings.ToUpper(req.ToCurrencyCode)

	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if fromCode == toCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	for _, code := range []string{fromCode, toCode} {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
		}
	}

	if _, err := s.entityRepo.FindEntityByID(ctx, entityID); err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}

	existing, err := s.rateRepo.FindRateByPairAndDate(ctx, entityID, fromCode, toCode, req.EffectiveDate)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate rate: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: rate for %s/%s effective %s already exists", apperrors.ErrDuplicate,
			fromCode, toCode, req.EffectiveDate.Format("2006-01-02"))
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		EntityID:         entityID,
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Rate:             req.Rate,
		EffectiveDate:    req.EffectiveDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		logger.Error("Failed to save exchange rate", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}

	return &rate, nil
}

// ListRates retrieves all rates for an entity.
func (s *rateService) ListRates(ctx context.Context, entityID string) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListRates(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}

// GetRate resolves the conversion rate from one currency to another as
// of a date. Resolution order: identity, the latest direct rate with
// effectiveDate <= date, then a single triangulation hop through the
// entity's basis currency. Anything else is a rate-not-found error.
func (s *rateService) GetRate(ctx context.Context, entityID, fromCode, toCode string, date time.Time) (decimal.Decimal, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)

	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}

	direct, err := s.latestRate(ctx, entityID, fromCode, toCode, date)
	if err == nil {
		return direct, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, err
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}

	triangulated, err := s.triangulate(ctx, entityID, fromCode, toCode, entity.BaseCurrencyCode, date)
	if err == nil {
		return triangulated, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, err
	}

	return decimal.Zero, apperrors.Wrap(apperrors.CodeRateNotFound, apperrors.CategorySystem,
		fmt.Sprintf("no exchange rate from %s to %s on or before %s", fromCode, toCode, date.Format("2006-01-02")),
		apperrors.ErrNotFound)
}

// latestRate selects the stored rate with the greatest effective date
// not after the requested date. The stored set may arrive unsorted.
func (s *rateService) latestRate(ctx context.Context, entityID, fromCode, toCode string, date time.Time) (decimal.Decimal, error) {
	rates, err := s.rateRepo.FindRatesForPair(ctx, entityID, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}

	var best *domain.ExchangeRate
	for i := range rates {
		r := &rates[i]
		if r.EffectiveDate.After(date) {
			continue
		}
		if best == nil || r.EffectiveDate.After(best.EffectiveDate) {
			best = r
		}
	}
	if best == nil {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return best.Rate, nil
}

// triangulate derives from->to through the basis currency as
// rate(from->basis) / rate(to->basis). Single hop only.
func (s *rateService) triangulate(ctx context.Context, entityID, fromCode, toCode, basisCode string, date time.Time) (decimal.Decimal, error) {
	fromToBasis, err := s.legRate(ctx, entityID, fromCode, basisCode, date)
	if err != nil {
		return decimal.Zero, err
	}
	toToBasis, err := s.legRate(ctx, entityID, toCode, basisCode, date)
	if err != nil {
		return decimal.Zero, err
	}
	if toToBasis.IsZero() {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return fromToBasis.DivRound(toToBasis, triangulationPrecision), nil
}

func (s *rateService) legRate(ctx context.Context, entityID, fromCode, basisCode string, date time.Time) (decimal.Decimal, error) {
	if fromCode == basisCode {
		return decimal.NewFromInt(1), nil
	}
	return s.latestRate(ctx, entityID, fromCode, basisCode, date)
}

// Convert converts an amount between currencies as of a date, rounding
// half-even to the target currency's declared precision. It never
// silently truncates.
func (s *rateService) Convert(ctx context.Context, entityID string, amount decimal.Decimal, fromCode, toCode string, date time.Time) (decimal.Decimal, error) {
	toCode = strings.ToUpper(toCode)

	rate, err := s.GetRate(ctx, entityID, fromCode, toCode, date)
	if err != nil {
		return decimal.Zero, err
	}

	target, err := s.currencyRepo.FindCurrencyByCode(ctx, toCode)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get target currency '%s': %w", toCode, err)
	}

	return amount.Mul(rate).RoundBank(target.Precision), nil
}
