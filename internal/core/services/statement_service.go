package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/shopspring/decimal"
)

// statementService derives every statement from posted line items.
// All amounts are converted to the entity basis currency before
// aggregation; accounts keep their own currency in the ledger.
type statementService struct {
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountRepositoryFacade
	entityRepo    portsrepo.EntityRepository
	rateSvc       portssvc.RateSvcFacade
}

// NewStatementService creates a new StatementService.
func NewStatementService(
	reportingRepo portsrepo.ReportingRepository,
	accountRepo portsrepo.AccountRepositoryFacade,
	entityRepo portsrepo.EntityRepository,
	rateSvc portssvc.RateSvcFacade,
) portssvc.StatementSvcFacade {
	return &statementService{
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
		entityRepo:    entityRepo,
		rateSvc:       rateSvc,
	}
}

var _ portssvc.StatementSvcFacade = (*statementService)(nil)

func (s *statementService) entity(ctx context.Context, entityID string) (*domain.Entity, error) {
	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entity %s: %w", entityID, err)
	}
	return entity, nil
}

// toBasis converts an amount from the account currency to the entity
// basis currency as of date. Same-currency amounts pass through
// unrounded.
func (s *statementService) toBasis(ctx context.Context, entity *domain.Entity, amount decimal.Decimal, currencyCode string, date time.Time) (decimal.Decimal, error) {
	if currencyCode == entity.BaseCurrencyCode {
		return amount, nil
	}
	return s.rateSvc.Convert(ctx, entity.EntityID, amount, currencyCode, entity.BaseCurrencyCode, date)
}

// convertedBalances loads per-account balances as of a date and
// converts each to the basis currency.
func (s *statementService) convertedBalances(ctx context.Context, entity *domain.Entity, asOf time.Time) ([]domain.AccountBalance, error) {
	balances, err := s.reportingRepo.GetAccountBalances(ctx, entity.EntityID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load account balances: %w", err)
	}
	for i := range balances {
		converted, err := s.toBasis(ctx, entity, balances[i].Balance, balances[i].Account.CurrencyCode, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to convert balance of account %s: %w", balances[i].Account.AccountID, err)
		}
		balances[i].Balance = converted
	}
	return balances, nil
}

// convertedActivity loads per-account net activity over a window and
// converts each to the basis currency as of the window end.
func (s *statementService) convertedActivity(ctx context.Context, entity *domain.Entity, from, to time.Time) ([]domain.AccountBalance, error) {
	activity, err := s.reportingRepo.GetAccountActivity(ctx, entity.EntityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load account activity: %w", err)
	}
	for i := range activity {
		converted, err := s.toBasis(ctx, entity, activity[i].Balance, activity[i].Account.CurrencyCode, to)
		if err != nil {
			return nil, fmt.Errorf("failed to convert activity of account %s: %w", activity[i].Account.AccountID, err)
		}
		activity[i].Balance = converted
	}
	return activity, nil
}

// TrialBalance sums converted balances by account as of a date. Each
// row places the balance in its natural-side column; a negative
// natural-side balance flips to the opposite column.
func (s *statementService) TrialBalance(ctx context.Context, entityID string, asOf time.Time) (*domain.TrialBalanceReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entity, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	balances, err := s.convertedBalances(ctx, entity, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		EntityID:     entityID,
		AsOf:         asOf,
		CurrencyCode: entity.BaseCurrencyCode,
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
	}
	for _, ab := range balances {
		row := domain.TrialBalanceRow{
			AccountID:   ab.Account.AccountID,
			AccountName: ab.Account.Name,
			AccountType: ab.Account.AccountType,
			Category:    ab.Account.AccountType.Category(),
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		side := row.Category.NaturalSide()
		if ab.Balance.IsNegative() {
			side = side.Opposite()
		}
		if side == domain.Debit {
			row.Debit = ab.Balance.Abs()
		} else {
			row.Credit = ab.Balance.Abs()
		}
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Rows = append(report.Rows, row)
	}
	report.Balanced = report.TotalDebit.Equal(report.TotalCredit)

	if !report.Balanced {
		logger.Warn("Trial balance does not balance",
			slog.String("entity_id", entityID),
			slog.String("debit", report.TotalDebit.String()),
			slog.String("credit", report.TotalCredit.String()))
	}
	return report, nil
}

// IncomeStatement computes income minus expenses over a window.
func (s *statementService) IncomeStatement(ctx context.Context, entityID string, from, to time.Time) (*domain.IncomeStatementReport, error) {
	entity, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	activity, err := s.convertedActivity(ctx, entity, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.IncomeStatementReport{
		EntityID:      entityID,
		From:          from,
		To:            to,
		CurrencyCode:  entity.BaseCurrencyCode,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, ab := range activity {
		amount := domain.AccountAmount{
			AccountID:   ab.Account.AccountID,
			Name:        ab.Account.Name,
			AccountType: ab.Account.AccountType,
			NetAmount:   ab.Balance,
		}
		switch ab.Account.AccountType.Category() {
		case domain.Income:
			report.Income = append(report.Income, amount)
			report.TotalIncome = report.TotalIncome.Add(ab.Balance)
		case domain.Expense:
			report.Expenses = append(report.Expenses, amount)
			report.TotalExpenses = report.TotalExpenses.Add(ab.Balance)
		}
	}
	report.NetIncome = report.TotalIncome.Sub(report.TotalExpenses)
	return report, nil
}

// BalanceSheet reports assets, liabilities and equity as of a date.
// Retained earnings is derived on the fly as cumulative net income
// through AsOf; there is no closing entry in the ledger.
func (s *statementService) BalanceSheet(ctx context.Context, entityID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	entity, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	balances, err := s.convertedBalances(ctx, entity, asOf)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		EntityID:         entityID,
		AsOf:             asOf,
		CurrencyCode:     entity.BaseCurrencyCode,
		RetainedEarnings: decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, ab := range balances {
		amount := domain.AccountAmount{
			AccountID:   ab.Account.AccountID,
			Name:        ab.Account.Name,
			AccountType: ab.Account.AccountType,
			NetAmount:   ab.Balance,
		}
		switch ab.Account.AccountType.Category() {
		case domain.Asset:
			report.Assets = append(report.Assets, amount)
			report.TotalAssets = report.TotalAssets.Add(ab.Balance)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, amount)
			report.TotalLiabilities = report.TotalLiabilities.Add(ab.Balance)
		case domain.Equity:
			report.Equity = append(report.Equity, amount)
			report.TotalEquity = report.TotalEquity.Add(ab.Balance)
		case domain.Income:
			report.RetainedEarnings = report.RetainedEarnings.Add(ab.Balance)
		case domain.Expense:
			report.RetainedEarnings = report.RetainedEarnings.Sub(ab.Balance)
		}
	}
	report.TotalEquity = report.TotalEquity.Add(report.RetainedEarnings)
	report.Balanced = report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity))
	return report, nil
}

// EquityStatement reconciles each equity account over the window:
// opening balance, additions, reductions, closing balance.
func (s *statementService) EquityStatement(ctx context.Context, entityID string, from, to time.Time) (*domain.EquityStatementReport, error) {
	entity, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	dayBefore := from.AddDate(0, 0, -1)
	opening, err := s.convertedBalances(ctx, entity, dayBefore)
	if err != nil {
		return nil, err
	}
	closing, err := s.convertedBalances(ctx, entity, to)
	if err != nil {
		return nil, err
	}
	activity, err := s.convertedActivity(ctx, entity, from, to)
	if err != nil {
		return nil, err
	}

	openingByID := make(map[string]decimal.Decimal, len(opening))
	for _, ab := range opening {
		openingByID[ab.Account.AccountID] = ab.Balance
	}
	closingByID := make(map[string]decimal.Decimal, len(closing))
	for _, ab := range closing {
		closingByID[ab.Account.AccountID] = ab.Balance
	}

	report := &domain.EquityStatementReport{
		EntityID:      entityID,
		From:          from,
		To:            to,
		CurrencyCode:  entity.BaseCurrencyCode,
		NetIncome:     decimal.Zero,
		OpeningEquity: decimal.Zero,
		ClosingEquity: decimal.Zero,
	}

	for _, ab := range activity {
		switch ab.Account.AccountType.Category() {
		case domain.Income:
			report.NetIncome = report.NetIncome.Add(ab.Balance)
		case domain.Expense:
			report.NetIncome = report.NetIncome.Sub(ab.Balance)
		case domain.Equity:
			openingBal := openingByID[ab.Account.AccountID]
			closingBal := closingByID[ab.Account.AccountID]
			row := domain.EquityMovementRow{
				AccountID:   ab.Account.AccountID,
				AccountName: ab.Account.Name,
				Opening:     openingBal,
				Additions:   decimal.Zero,
				Reductions:  decimal.Zero,
				Closing:     closingBal,
			}
			if ab.Balance.IsPositive() {
				row.Additions = ab.Balance
			} else {
				row.Reductions = ab.Balance.Neg()
			}
			report.Movements = append(report.Movements, row)
			report.OpeningEquity = report.OpeningEquity.Add(openingBal)
			report.ClosingEquity = report.ClosingEquity.Add(closingBal)
		}
	}
	sort.Slice(report.Movements, func(i, j int) bool {
		return report.Movements[i].AccountName < report.Movements[j].AccountName
	})
	return report, nil
}

// CashflowStatement reclassifies cash movements over a window. Each
// cash-like line is bucketed by the counter-accounts sharing its
// transaction: equity or long-term liabilities make it Financing,
// fixed assets make it Investing, everything else is Operating.
func (s *statementService) CashflowStatement(ctx context.Context, entityID string, from, to time.Time) (*domain.CashflowStatementReport, error) {
	entity, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	txns, err := s.reportingRepo.GetPostedTransactions(ctx, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load posted transactions: %w", err)
	}

	accounts, err := s.accountsForTransactions(ctx, txns)
	if err != nil {
		return nil, err
	}

	report := &domain.CashflowStatementReport{
		EntityID:     entityID,
		From:         from,
		To:           to,
		CurrencyCode: entity.BaseCurrencyCode,
		NetOperating: decimal.Zero,
		NetInvesting: decimal.Zero,
		NetFinancing: decimal.Zero,
	}

	for _, txn := range txns {
		bucket := classifyCashflow(txn, accounts)
		for _, li := range txn.LineItems {
			account := accounts[li.AccountID]
			if !account.AccountType.IsCashLike() {
				continue
			}
			amount, err := s.toBasis(ctx, entity, li.Amount, li.CurrencyCode, txn.TransactionDate)
			if err != nil {
				return nil, fmt.Errorf("failed to convert cash line %s: %w", li.LineItemID, err)
			}
			if li.Side == domain.Credit {
				amount = amount.Neg() // cash out
			}
			line := domain.CashflowLine{
				TransactionID: txn.TransactionID,
				Narration:     txn.Narration,
				Bucket:        bucket,
				Amount:        amount,
			}
			switch bucket {
			case domain.Investing:
				report.Investing = append(report.Investing, line)
				report.NetInvesting = report.NetInvesting.Add(amount)
			case domain.Financing:
				report.Financing = append(report.Financing, line)
				report.NetFinancing = report.NetFinancing.Add(amount)
			default:
				report.Operating = append(report.Operating, line)
				report.NetOperating = report.NetOperating.Add(amount)
			}
		}
	}

	report.OpeningCash, err = s.cashPosition(ctx, entity, from.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	report.ClosingCash, err = s.cashPosition(ctx, entity, to)
	if err != nil {
		return nil, err
	}
	report.NetChange = report.NetOperating.Add(report.NetInvesting).Add(report.NetFinancing)
	return report, nil
}

// classifyCashflow buckets a whole transaction by its non-cash
// counter-accounts. Financing takes precedence over Investing when a
// transaction mixes both.
func classifyCashflow(txn domain.Transaction, accounts map[string]domain.Account) domain.CashflowBucket {
	bucket := domain.Operating
	for _, li := range txn.LineItems {
		account := accounts[li.AccountID]
		if account.AccountType.IsCashLike() {
			continue
		}
		switch {
		case account.AccountType.Category() == domain.Equity,
			account.AccountType == domain.LongTermLiability:
			return domain.Financing
		case account.AccountType == domain.FixedAsset:
			bucket = domain.Investing
		}
	}
	return bucket
}

func (s *statementService) cashPosition(ctx context.Context, entity *domain.Entity, asOf time.Time) (decimal.Decimal, error) {
	balances, err := s.convertedBalances(ctx, entity, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, ab := range balances {
		if ab.Account.AccountType.IsCashLike() {
			total = total.Add(ab.Balance)
		}
	}
	return total, nil
}

func (s *statementService) accountsForTransactions(ctx context.Context, txns []domain.Transaction) (map[string]domain.Account, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, txn := range txns {
		for _, li := range txn.LineItems {
			if _, ok := seen[li.AccountID]; !ok {
				seen[li.AccountID] = struct{}{}
				ids = append(ids, li.AccountID)
			}
		}
	}
	if len(ids) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for statement: %w", err)
	}
	return accounts, nil
}

// AgingSchedule buckets open receivable (Asset) or payable (Liability)
// amounts by days overdue as of a date. Settlements are applied FIFO:
// payment amounts against an account extinguish its oldest open
// charges first.
func (s *statementService) AgingSchedule(ctx context.Context, entityID string, category domain.AccountCategory, asOf time.Time) (*domain.AgingScheduleReport, error) {
	if category != domain.Asset && category != domain.Liability {
		return nil, apperrors.NewValidationError(fmt.Sprintf("aging supports ASSET or LIABILITY, got '%s'", category))
	}

	entity, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	var inception time.Time // zero value: from the beginning
	txns, err := s.reportingRepo.GetPostedTransactions(ctx, entityID, inception, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load posted transactions: %w", err)
	}
	accounts, err := s.accountsForTransactions(ctx, txns)
	if err != nil {
		return nil, err
	}

	agedType := domain.Receivable
	if category == domain.Liability {
		agedType = domain.Payable
	}
	chargeSide := category.NaturalSide()

	// Per aged account: charges in posting order, and total settlements.
	type openCharge struct {
		txn         *domain.Transaction
		outstanding decimal.Decimal
	}
	charges := make(map[string][]*openCharge)
	settled := make(map[string]decimal.Decimal)

	for i := range txns {
		txn := &txns[i]
		for _, li := range txn.LineItems {
			if accounts[li.AccountID].AccountType != agedType {
				continue
			}
			if li.Side == chargeSide {
				charges[li.AccountID] = append(charges[li.AccountID], &openCharge{txn: txn, outstanding: li.Amount})
			} else {
				settled[li.AccountID] = settled[li.AccountID].Add(li.Amount)
			}
		}
	}

	report := &domain.AgingScheduleReport{
		EntityID:     entityID,
		AsOf:         asOf,
		Category:     category,
		CurrencyCode: entity.BaseCurrencyCode,
		Totals:       make(map[domain.AgingBucket]decimal.Decimal),
		Total:        decimal.Zero,
	}

	for accountID, accountCharges := range charges {
		// Oldest due date first; sequence order breaks ties.
		sort.SliceStable(accountCharges, func(i, j int) bool {
			return dueDate(accountCharges[i].txn).Before(dueDate(accountCharges[j].txn))
		})

		remaining := settled[accountID]
		for _, charge := range accountCharges {
			if remaining.IsPositive() {
				applied := decimal.Min(remaining, charge.outstanding)
				charge.outstanding = charge.outstanding.Sub(applied)
				remaining = remaining.Sub(applied)
			}
			if charge.outstanding.IsZero() {
				continue
			}

			due := dueDate(charge.txn)
			days := int(asOf.Sub(due).Hours() / 24)
			outstanding, err := s.toBasis(ctx, entity, charge.outstanding, accounts[accountID].CurrencyCode, asOf)
			if err != nil {
				return nil, fmt.Errorf("failed to convert outstanding amount of %s: %w", charge.txn.TransactionID, err)
			}

			bucket := domain.BucketForDaysOverdue(days)
			report.Rows = append(report.Rows, domain.AgingRow{
				TransactionID: charge.txn.TransactionID,
				AccountID:     accountID,
				AccountName:   accounts[accountID].Name,
				DueDate:       due,
				DaysOverdue:   days,
				Bucket:        bucket,
				Outstanding:   outstanding,
			})
			report.Totals[bucket] = report.Totals[bucket].Add(outstanding)
			report.Total = report.Total.Add(outstanding)
		}
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		if !report.Rows[i].DueDate.Equal(report.Rows[j].DueDate) {
			return report.Rows[i].DueDate.Before(report.Rows[j].DueDate)
		}
		return report.Rows[i].TransactionID < report.Rows[j].TransactionID
	})
	return report, nil
}

// dueDate falls back to the transaction date when no explicit due date
// was captured.
func dueDate(txn *domain.Transaction) time.Time {
	if txn.DueDate != nil {
		return *txn.DueDate
	}
	return txn.TransactionDate
}
