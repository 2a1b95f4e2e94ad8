package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetAccountBalances(ctx context.Context, entityID string, asOf time.Time) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, entityID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockReportingRepository) GetAccountActivity(ctx context.Context, entityID string, from, to time.Time) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, entityID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockReportingRepository) GetPostedTransactions(ctx context.Context, entityID string, from, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, entityID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Test Suite ---
type StatementServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockAccountRepo   *MockAccountRepository
	mockEntityRepo    *MockEntityRepository
	mockRateSvc       *MockRateService
	service           portssvc.StatementSvcFacade
	entityID          string
}

func (suite *StatementServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockEntityRepo = new(MockEntityRepository)
	suite.mockRateSvc = new(MockRateService)
	suite.service = services.NewStatementService(
		suite.mockReportingRepo, suite.mockAccountRepo, suite.mockEntityRepo, suite.mockRateSvc)
	suite.entityID = uuid.NewString()
	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).
		Return(&domain.Entity{EntityID: suite.entityID, Name: "Acme", BaseCurrencyCode: "USD"}, nil)
}

func (suite *StatementServiceTestSuite) account(name string, accountType domain.AccountType) domain.Account {
	return domain.Account{
		AccountID:    uuid.NewString(),
		EntityID:     suite.entityID,
		Name:         name,
		AccountType:  accountType,
		CurrencyCode: "USD",
		IsActive:     true,
	}
}

func balance(account domain.Account, amount string) domain.AccountBalance {
	return domain.AccountBalance{Account: account, Balance: decimal.RequireFromString(amount)}
}

func (suite *StatementServiceTestSuite) TestTrialBalance_BalancedBooks() {
	ctx := context.Background()
	asOf := date(2026, 3, 31)
	bank := suite.account("Bank", domain.Bank)
	revenue := suite.account("Sales", domain.OperatingRevenue)

	suite.mockReportingRepo.On("GetAccountBalances", ctx, suite.entityID, asOf).
		Return([]domain.AccountBalance{balance(bank, "100"), balance(revenue, "100")}, nil).Once()

	report, err := suite.service.TrialBalance(ctx, suite.entityID, asOf)

	suite.Require().NoError(err)
	suite.Equal("USD", report.CurrencyCode)
	suite.Require().Len(report.Rows, 2)
	suite.True(report.Rows[0].Debit.Equal(decimal.NewFromInt(100)))
	suite.True(report.Rows[0].Credit.IsZero())
	suite.True(report.Rows[1].Credit.Equal(decimal.NewFromInt(100)))
	suite.True(report.Balanced)
}

func (suite *StatementServiceTestSuite) TestTrialBalance_NegativeBalanceFlipsColumn() {
	ctx := context.Background()
	asOf := date(2026, 3, 31)
	bank := suite.account("Overdrawn Bank", domain.Bank)

	suite.mockReportingRepo.On("GetAccountBalances", ctx, suite.entityID, asOf).
		Return([]domain.AccountBalance{balance(bank, "-40")}, nil).Once()

	report, err := suite.service.TrialBalance(ctx, suite.entityID, asOf)

	suite.Require().NoError(err)
	suite.Require().Len(report.Rows, 1)
	// An overdrawn asset shows in the credit column, positive.
	suite.True(report.Rows[0].Debit.IsZero())
	suite.True(report.Rows[0].Credit.Equal(decimal.NewFromInt(40)))
	suite.False(report.Balanced)
}

func (suite *StatementServiceTestSuite) TestIncomeStatement() {
	ctx := context.Background()
	from, to := date(2026, 1, 1), date(2026, 3, 31)
	revenue := suite.account("Sales", domain.OperatingRevenue)
	rent := suite.account("Rent", domain.OperatingExpense)
	bank := suite.account("Bank", domain.Bank) // ignored by the statement

	suite.mockReportingRepo.On("GetAccountActivity", ctx, suite.entityID, from, to).
		Return([]domain.AccountBalance{balance(revenue, "500"), balance(rent, "300"), balance(bank, "200")}, nil).Once()

	report, err := suite.service.IncomeStatement(ctx, suite.entityID, from, to)

	suite.Require().NoError(err)
	suite.True(report.TotalIncome.Equal(decimal.NewFromInt(500)))
	suite.True(report.TotalExpenses.Equal(decimal.NewFromInt(300)))
	suite.True(report.NetIncome.Equal(decimal.NewFromInt(200)))
	suite.Len(report.Income, 1)
	suite.Len(report.Expenses, 1)
}

func (suite *StatementServiceTestSuite) TestBalanceSheet_DerivesRetainedEarnings() {
	ctx := context.Background()
	asOf := date(2026, 3, 31)
	bank := suite.account("Bank", domain.Bank)
	capital := suite.account("Owner Capital", domain.EquityCapital)
	revenue := suite.account("Sales", domain.OperatingRevenue)
	rent := suite.account("Rent", domain.OperatingExpense)

	suite.mockReportingRepo.On("GetAccountBalances", ctx, suite.entityID, asOf).
		Return([]domain.AccountBalance{
			balance(bank, "200"),
			balance(capital, "100"),
			balance(revenue, "300"),
			balance(rent, "200"),
		}, nil).Once()

	report, err := suite.service.BalanceSheet(ctx, suite.entityID, asOf)

	suite.Require().NoError(err)
	suite.True(report.TotalAssets.Equal(decimal.NewFromInt(200)))
	suite.True(report.TotalLiabilities.IsZero())
	suite.True(report.RetainedEarnings.Equal(decimal.NewFromInt(100)), "got %s", report.RetainedEarnings)
	suite.True(report.TotalEquity.Equal(decimal.NewFromInt(200)))
	suite.True(report.Balanced)
}

func (suite *StatementServiceTestSuite) TestEquityStatement_ReconcilesMovements() {
	ctx := context.Background()
	from, to := date(2026, 1, 1), date(2026, 3, 31)
	dayBefore := date(2025, 12, 31)
	capital := suite.account("Owner Capital", domain.EquityCapital)
	drawings := suite.account("Drawings", domain.EquityCapital)
	reserve := suite.account("Reserve", domain.RetainedEarnings)
	revenue := suite.account("Sales", domain.OperatingRevenue)
	rent := suite.account("Rent", domain.OperatingExpense)

	suite.mockReportingRepo.On("GetAccountBalances", ctx, suite.entityID, dayBefore).
		Return([]domain.AccountBalance{
			balance(capital, "1000"),
			balance(drawings, "0"),
			balance(reserve, "300"),
		}, nil).Once()
	suite.mockReportingRepo.On("GetAccountBalances", ctx, suite.entityID, to).
		Return([]domain.AccountBalance{
			balance(capital, "1500"),
			balance(drawings, "-200"),
			balance(reserve, "300"),
		}, nil).Once()
	suite.mockReportingRepo.On("GetAccountActivity", ctx, suite.entityID, from, to).
		Return([]domain.AccountBalance{
			balance(capital, "500"),
			balance(drawings, "-200"),
			balance(reserve, "0"),
			balance(revenue, "500"),
			balance(rent, "300"),
		}, nil).Once()

	report, err := suite.service.EquityStatement(ctx, suite.entityID, from, to)

	suite.Require().NoError(err)
	suite.True(report.NetIncome.Equal(decimal.NewFromInt(200)))
	suite.True(report.OpeningEquity.Equal(decimal.NewFromInt(1300)))
	suite.True(report.ClosingEquity.Equal(decimal.NewFromInt(1600)))
	suite.Require().Len(report.Movements, 3)

	// Sorted by account name; every row reconciles
	// opening + additions - reductions = closing.
	for _, row := range report.Movements {
		suite.True(row.Opening.Add(row.Additions).Sub(row.Reductions).Equal(row.Closing),
			"row %s does not reconcile", row.AccountName)
	}

	suite.Equal("Drawings", report.Movements[0].AccountName)
	suite.True(report.Movements[0].Additions.IsZero())
	suite.True(report.Movements[0].Reductions.Equal(decimal.NewFromInt(200)))

	suite.Equal("Owner Capital", report.Movements[1].AccountName)
	suite.True(report.Movements[1].Additions.Equal(decimal.NewFromInt(500)))
	suite.True(report.Movements[1].Closing.Equal(decimal.NewFromInt(1500)))

	suite.Equal("Reserve", report.Movements[2].AccountName)
	suite.True(report.Movements[2].Additions.IsZero())
	suite.True(report.Movements[2].Reductions.IsZero())
	suite.True(report.Movements[2].Closing.Equal(decimal.NewFromInt(300)))
}

func (suite *StatementServiceTestSuite) TestCashflowStatement_ClassifiesByCounterAccount() {
	ctx := context.Background()
	from, to := date(2026, 1, 1), date(2026, 3, 31)
	bank := suite.account("Bank", domain.Bank)
	revenue := suite.account("Sales", domain.OperatingRevenue)
	machinery := suite.account("Machinery", domain.FixedAsset)
	capital := suite.account("Owner Capital", domain.EquityCapital)

	sale := postedTxn(suite.entityID, domain.CashSale, date(2026, 1, 10), 1, nil,
		line(bank, "100", domain.Debit), line(revenue, "100", domain.Credit))
	purchase := postedTxn(suite.entityID, domain.CashPurchase, date(2026, 2, 5), 2, nil,
		line(machinery, "500", domain.Debit), line(bank, "500", domain.Credit))
	injection := postedTxn(suite.entityID, domain.JournalEntry, date(2026, 2, 20), 3, nil,
		line(bank, "1000", domain.Debit), line(capital, "1000", domain.Credit))

	accounts := map[string]domain.Account{
		bank.AccountID:      bank,
		revenue.AccountID:   revenue,
		machinery.AccountID: machinery,
		capital.AccountID:   capital,
	}

	suite.mockReportingRepo.On("GetPostedTransactions", ctx, suite.entityID, from, to).
		Return([]domain.Transaction{sale, purchase, injection}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accounts, nil).Once()
	suite.mockReportingRepo.On("GetAccountBalances", ctx, suite.entityID, from.AddDate(0, 0, -1)).
		Return([]domain.AccountBalance{balance(bank, "0")}, nil).Once()
	suite.mockReportingRepo.On("GetAccountBalances", ctx, suite.entityID, to).
		Return([]domain.AccountBalance{balance(bank, "600")}, nil).Once()

	report, err := suite.service.CashflowStatement(ctx, suite.entityID, from, to)

	suite.Require().NoError(err)
	suite.True(report.NetOperating.Equal(decimal.NewFromInt(100)), "operating %s", report.NetOperating)
	suite.True(report.NetInvesting.Equal(decimal.NewFromInt(-500)), "investing %s", report.NetInvesting)
	suite.True(report.NetFinancing.Equal(decimal.NewFromInt(1000)), "financing %s", report.NetFinancing)
	suite.True(report.NetChange.Equal(decimal.NewFromInt(600)))
	suite.True(report.OpeningCash.IsZero())
	suite.True(report.ClosingCash.Equal(decimal.NewFromInt(600)))
}

func (suite *StatementServiceTestSuite) TestAgingSchedule_AppliesPaymentsFIFO() {
	ctx := context.Background()
	asOf := date(2026, 3, 1)
	receivable := suite.account("Client A", domain.Receivable)
	revenue := suite.account("Sales", domain.OperatingRevenue)
	bank := suite.account("Bank", domain.Bank)

	oldDue := date(2026, 1, 10)
	newDue := date(2026, 2, 20)
	invoiceOld := postedTxn(suite.entityID, domain.ClientInvoice, date(2026, 1, 1), 1, &oldDue,
		line(receivable, "100", domain.Debit), line(revenue, "100", domain.Credit))
	invoiceNew := postedTxn(suite.entityID, domain.ClientInvoice, date(2026, 2, 1), 2, &newDue,
		line(receivable, "50", domain.Debit), line(revenue, "50", domain.Credit))
	receipt := postedTxn(suite.entityID, domain.ClientReceipt, date(2026, 2, 10), 3, nil,
		line(bank, "100", domain.Debit), line(receivable, "100", domain.Credit))

	accounts := map[string]domain.Account{
		receivable.AccountID: receivable,
		revenue.AccountID:    revenue,
		bank.AccountID:       bank,
	}

	suite.mockReportingRepo.On("GetPostedTransactions", ctx, suite.entityID, mock.Anything, asOf).
		Return([]domain.Transaction{invoiceOld, invoiceNew, receipt}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accounts, nil).Once()

	report, err := suite.service.AgingSchedule(ctx, suite.entityID, domain.Asset, asOf)

	suite.Require().NoError(err)
	// The 100 receipt extinguishes the oldest invoice entirely; only
	// the newer 50 remains, 9 days overdue.
	suite.Require().Len(report.Rows, 1)
	suite.Equal(invoiceNew.TransactionID, report.Rows[0].TransactionID)
	suite.True(report.Rows[0].Outstanding.Equal(decimal.NewFromInt(50)))
	suite.Equal(9, report.Rows[0].DaysOverdue)
	suite.Equal(domain.Aging1To30, report.Rows[0].Bucket)
	suite.True(report.Total.Equal(decimal.NewFromInt(50)))
	suite.True(report.Totals[domain.Aging1To30].Equal(decimal.NewFromInt(50)))
}

func (suite *StatementServiceTestSuite) TestAgingSchedule_PartialSettlement() {
	ctx := context.Background()
	asOf := date(2026, 3, 1)
	receivable := suite.account("Client B", domain.Receivable)
	revenue := suite.account("Sales", domain.OperatingRevenue)
	bank := suite.account("Bank", domain.Bank)

	due := date(2025, 11, 1) // well past 90 days by asOf
	invoice := postedTxn(suite.entityID, domain.ClientInvoice, date(2025, 10, 15), 1, &due,
		line(receivable, "200", domain.Debit), line(revenue, "200", domain.Credit))
	receipt := postedTxn(suite.entityID, domain.ClientReceipt, date(2025, 12, 1), 2, nil,
		line(bank, "80", domain.Debit), line(receivable, "80", domain.Credit))

	accounts := map[string]domain.Account{
		receivable.AccountID: receivable,
		revenue.AccountID:    revenue,
		bank.AccountID:       bank,
	}

	suite.mockReportingRepo.On("GetPostedTransactions", ctx, suite.entityID, mock.Anything, asOf).
		Return([]domain.Transaction{invoice, receipt}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accounts, nil).Once()

	report, err := suite.service.AgingSchedule(ctx, suite.entityID, domain.Asset, asOf)

	suite.Require().NoError(err)
	suite.Require().Len(report.Rows, 1)
	suite.True(report.Rows[0].Outstanding.Equal(decimal.NewFromInt(120)))
	suite.Equal(domain.AgingOver90, report.Rows[0].Bucket)
}

func (suite *StatementServiceTestSuite) TestAgingSchedule_RejectsNonAgeableCategory() {
	_, err := suite.service.AgingSchedule(context.Background(), suite.entityID, domain.Income, date(2026, 3, 1))
	suite.Require().Error(err)
}

// --- helpers ---

func line(account domain.Account, amount string, side domain.NormalSide) domain.LineItem {
	return domain.LineItem{
		LineItemID:   uuid.NewString(),
		AccountID:    account.AccountID,
		Amount:       decimal.RequireFromString(amount),
		Side:         side,
		CurrencyCode: account.CurrencyCode,
	}
}

func postedTxn(entityID string, kind domain.TransactionKind, txnDate time.Time, seq int64, due *time.Time, items ...domain.LineItem) domain.Transaction {
	txnID := uuid.NewString()
	for i := range items {
		items[i].TransactionID = txnID
	}
	return domain.Transaction{
		TransactionID:   txnID,
		EntityID:        entityID,
		Kind:            kind,
		Narration:       string(kind),
		TransactionDate: txnDate,
		DueDate:         due,
		MainAccountID:   items[0].AccountID,
		Status:          domain.Posted,
		SequenceNo:      &seq,
		LineItems:       items,
	}
}

func TestStatementService(t *testing.T) {
	suite.Run(t, new(StatementServiceTestSuite))
}
