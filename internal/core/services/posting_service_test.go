package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/core/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/utils/hashchain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByEntity(ctx context.Context, entityID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, entityID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		val := args.Get(1).(string)
		token = &val
	}
	return args.Get(0).([]domain.Transaction), token, args.Error(2)
}

func (m *MockTransactionRepository) FindPostedBySequenceRange(ctx context.Context, entityID string, fromSeq, toSeq int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, entityID, fromSeq, toSeq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveDraft(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateDraft(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) AddLineItem(ctx context.Context, item domain.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockTransactionRepository) RemoveLineItem(ctx context.Context, transactionID, lineItemID string) error {
	args := m.Called(ctx, transactionID, lineItemID)
	return args.Error(0)
}

func (m *MockTransactionRepository) NextSequenceInTx(ctx context.Context, tx pgx.Tx, entityID string) (int64, error) {
	args := m.Called(ctx, tx, entityID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) MarkPostedInTx(ctx context.Context, tx pgx.Tx, transactionID string, seq int64, hash string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, transactionID, seq, hash, userID, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkReversedInTx(ctx context.Context, tx pgx.Tx, transactionID, reversalID string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, transactionID, reversalID, userID, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTransactionRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByEntity(ctx context.Context, entityID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, entityID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, balance, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, deltas, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) ReplayAccountBalance(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock ChainRepository ---
type MockChainRepository struct {
	mock.Mock
}

var _ portsrepo.ChainRepository = (*MockChainRepository)(nil)

func (m *MockChainRepository) AppendLinkInTx(ctx context.Context, tx pgx.Tx, link domain.ChainLink) error {
	args := m.Called(ctx, tx, link)
	return args.Error(0)
}

func (m *MockChainRepository) FindLastLink(ctx context.Context, entityID string) (*domain.ChainLink, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainLink), args.Error(1)
}

func (m *MockChainRepository) FindLastLinkInTx(ctx context.Context, tx pgx.Tx, entityID string) (*domain.ChainLink, error) {
	args := m.Called(ctx, tx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainLink), args.Error(1)
}

func (m *MockChainRepository) FindLinksBySequenceRange(ctx context.Context, entityID string, fromSeq, toSeq int64) ([]domain.ChainLink, error) {
	args := m.Called(ctx, entityID, fromSeq, toSeq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChainLink), args.Error(1)
}

// --- Mock PeriodRepository ---
type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepository = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.ReportingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.ReportingPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, entityID string, date time.Time) (*domain.ReportingPeriod, error) {
	args := m.Called(ctx, entityID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, entityID string) ([]domain.ReportingPeriod, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, userID string, now time.Time) error {
	args := m.Called(ctx, periodID, status, userID, now)
	return args.Error(0)
}

// --- Mock RateService ---
type MockRateService struct {
	mock.Mock
}

var _ portssvc.RateSvcFacade = (*MockRateService)(nil)

func (m *MockRateService) CreateExchangeRate(ctx context.Context, entityID string, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, entityID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateService) ListRates(ctx context.Context, entityID string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockRateService) GetRate(ctx context.Context, entityID, fromCode, toCode string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, entityID, fromCode, toCode, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateService) Convert(ctx context.Context, entityID string, amount decimal.Decimal, fromCode, toCode string, date time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, entityID, amount, fromCode, toCode, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Test Suite ---
type PostingServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	mockChainRepo   *MockChainRepository
	mockPeriodRepo  *MockPeriodRepository
	mockEntityRepo  *MockEntityRepository
	mockRateSvc     *MockRateService
	service         portssvc.PostingSvcFacade

	entityID  string
	userID    string
	entity    *domain.Entity
	bank      domain.Account
	revenue   domain.Account
	period    *domain.ReportingPeriod
	txnDate   time.Time
	accountsM map[string]domain.Account
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockChainRepo = new(MockChainRepository)
	suite.mockPeriodRepo = new(MockPeriodRepository)
	suite.mockEntityRepo = new(MockEntityRepository)
	suite.mockRateSvc = new(MockRateService)
	suite.service = services.NewPostingService(
		suite.mockTxnRepo,
		suite.mockAccountRepo,
		suite.mockChainRepo,
		suite.mockPeriodRepo,
		suite.mockEntityRepo,
		suite.mockRateSvc,
	)

	suite.entityID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.entity = &domain.Entity{EntityID: suite.entityID, Name: "Acme", BaseCurrencyCode: "USD"}
	suite.bank = domain.Account{
		AccountID:    uuid.NewString(),
		EntityID:     suite.entityID,
		Name:         "Main Bank",
		AccountType:  domain.Bank,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.revenue = domain.Account{
		AccountID:    uuid.NewString(),
		EntityID:     suite.entityID,
		Name:         "Sales",
		AccountType:  domain.OperatingRevenue,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.txnDate = date(2026, 1, 15)
	suite.period = &domain.ReportingPeriod{
		PeriodID:  uuid.NewString(),
		EntityID:  suite.entityID,
		Name:      "FY2026 Q1",
		StartDate: date(2026, 1, 1),
		EndDate:   date(2026, 3, 31),
		Status:    domain.PeriodOpen,
	}
	suite.accountsM = map[string]domain.Account{
		suite.bank.AccountID:    suite.bank,
		suite.revenue.AccountID: suite.revenue,
	}
}

func (suite *PostingServiceTestSuite) draftTxn(debit, credit string) *domain.Transaction {
	txnID := uuid.NewString()
	return &domain.Transaction{
		TransactionID:   txnID,
		EntityID:        suite.entityID,
		Kind:            domain.CashSale,
		Narration:       "Cash sale",
		TransactionDate: suite.txnDate,
		MainAccountID:   suite.bank.AccountID,
		Status:          domain.Draft,
		LineItems: []domain.LineItem{
			{
				LineItemID:    uuid.NewString(),
				TransactionID: txnID,
				AccountID:     suite.bank.AccountID,
				Amount:        decimal.RequireFromString(debit),
				Side:          domain.Debit,
				CurrencyCode:  "USD",
			},
			{
				LineItemID:    uuid.NewString(),
				TransactionID: txnID,
				AccountID:     suite.revenue.AccountID,
				Amount:        decimal.RequireFromString(credit),
				Side:          domain.Credit,
				CurrencyCode:  "USD",
			},
		},
	}
}

func (suite *PostingServiceTestSuite) expectValidationReads(txn *domain.Transaction) {
	ctx := mock.Anything
	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(txn, nil).Once()
	suite.mockEntityRepo.On("FindEntityByID", ctx, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(suite.accountsM, nil)
	suite.mockPeriodRepo.On("FindPeriodForDate", ctx, suite.entityID, txn.TransactionDate).Return(suite.period, nil)
}

func (suite *PostingServiceTestSuite) expectPostingSection(seq int64) {
	any := mock.Anything
	suite.mockTxnRepo.On("Begin", any).Return(nil, nil).Once()
	suite.mockTxnRepo.On("NextSequenceInTx", any, any, suite.entityID).Return(seq, nil).Once()
	suite.mockTxnRepo.On("MarkPostedInTx", any, any, any, seq, any, suite.userID, any).Return(nil).Once()
	suite.mockChainRepo.On("AppendLinkInTx", any, any, mock.AnythingOfType("domain.ChainLink")).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", any, any, any).Return(suite.accountsM, nil).Once()
	suite.mockAccountRepo.On("ApplyBalanceDeltasInTx", any, any, any, suite.userID, any).Return(nil).Once()
	suite.mockTxnRepo.On("Commit", any, any).Return(nil).Once()
	suite.mockTxnRepo.On("Rollback", any, any).Return(nil).Maybe()
}

func (suite *PostingServiceTestSuite) TestPostTransaction_Success() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")
	genesis := hashchain.GenesisHash(suite.entityID)
	expectedHash := hashchain.LinkHash(genesis, *txn)

	suite.expectValidationReads(txn)
	suite.expectPostingSection(1)
	suite.mockChainRepo.On("FindLastLinkInTx", mock.Anything, mock.Anything, suite.entityID).
		Return(nil, apperrors.ErrNotFound).Once()

	posted, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	suite.Equal(domain.Posted, posted.Status)
	suite.Require().NotNil(posted.SequenceNo)
	suite.Equal(int64(1), *posted.SequenceNo)
	suite.Equal(expectedHash, posted.IntegrityHash)

	// Balance deltas carry natural-side signs: both legs increase.
	suite.mockAccountRepo.AssertCalled(suite.T(), "ApplyBalanceDeltasInTx",
		mock.Anything, mock.Anything,
		mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
			return deltas[suite.bank.AccountID].Equal(decimal.RequireFromString("100.00")) &&
				deltas[suite.revenue.AccountID].Equal(decimal.RequireFromString("100.00"))
		}),
		suite.userID, mock.Anything)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockChainRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPostTransaction_ChainsOntoPreviousLink() {
	ctx := context.Background()
	txn := suite.draftTxn("50.00", "50.00")
	prev := &domain.ChainLink{
		EntityID:   suite.entityID,
		SequenceNo: 1,
		Hash:       hashchain.GenesisHash("seed"),
	}
	expectedHash := hashchain.LinkHash(prev.Hash, *txn)

	suite.expectValidationReads(txn)
	suite.expectPostingSection(2)
	suite.mockChainRepo.On("FindLastLinkInTx", mock.Anything, mock.Anything, suite.entityID).Return(prev, nil).Once()

	posted, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(int64(2), *posted.SequenceNo)
	suite.Equal(expectedHash, posted.IntegrityHash)
	suite.mockChainRepo.AssertCalled(suite.T(), "AppendLinkInTx", mock.Anything, mock.Anything,
		mock.MatchedBy(func(link domain.ChainLink) bool {
			return link.PrevHash == prev.Hash && link.Hash == expectedHash && link.SequenceNo == 2
		}))
}

func (suite *PostingServiceTestSuite) TestPostTransaction_RejectsUnbalanced() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "90.00")

	suite.expectValidationReads(txn)

	_, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeUnbalanced, apperrors.CodeOf(err))
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostTransaction_RejectsClosedPeriod() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")
	suite.period.Status = domain.PeriodClosed

	suite.expectValidationReads(txn)

	_, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodePeriodClosed, apperrors.CodeOf(err))
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPostTransaction_RejectsMissingPeriod() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(txn, nil).Once()
	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(suite.accountsM, nil)
	suite.mockPeriodRepo.On("FindPeriodForDate", mock.Anything, suite.entityID, txn.TransactionDate).
		Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodePeriodNotFound, apperrors.CodeOf(err))
}

func (suite *PostingServiceTestSuite) TestPostTransaction_RejectsNonDraft() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")
	seq := int64(3)
	txn.Status = domain.Posted
	txn.SequenceNo = &seq

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeNotDraft, apperrors.CodeOf(err))
}

func (suite *PostingServiceTestSuite) TestPostTransaction_RejectsInactiveAccount() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")
	inactive := suite.revenue
	inactive.IsActive = false
	accounts := map[string]domain.Account{
		suite.bank.AccountID:    suite.bank,
		suite.revenue.AccountID: inactive,
	}

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(txn, nil).Once()
	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(accounts, nil)

	_, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeInactiveAccount, apperrors.CodeOf(err))
}

func (suite *PostingServiceTestSuite) TestPostTransaction_RejectsWrongMainSide() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")
	// Flip both legs: CASH_SALE requires DEBIT against the main account.
	txn.LineItems[0].Side = domain.Credit
	txn.LineItems[1].Side = domain.Debit

	suite.expectValidationReads(txn)

	_, err := suite.service.PostTransaction(ctx, suite.entityID, txn.TransactionID, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeMainSideMismatch, apperrors.CodeOf(err))
}

func (suite *PostingServiceTestSuite) TestPostTransaction_ConvertsForeignLegsForBalanceCheck() {
	ctx := context.Background()
	eurRevenue := domain.Account{
		AccountID:    uuid.NewString(),
		EntityID:     suite.entityID,
		Name:         "EU Sales",
		AccountType:  domain.OperatingRevenue,
		CurrencyCode: "EUR",
		IsActive:     true,
	}
	txnID := uuid.NewString()
	txn := &domain.Transaction{
		TransactionID:   txnID,
		EntityID:        suite.entityID,
		Kind:            domain.CashSale,
		Narration:       "Cross-currency sale",
		TransactionDate: suite.txnDate,
		MainAccountID:   suite.bank.AccountID,
		Status:          domain.Draft,
		LineItems: []domain.LineItem{
			{LineItemID: uuid.NewString(), TransactionID: txnID, AccountID: suite.bank.AccountID,
				Amount: decimal.RequireFromString("100.00"), Side: domain.Debit, CurrencyCode: "USD"},
			{LineItemID: uuid.NewString(), TransactionID: txnID, AccountID: eurRevenue.AccountID,
				Amount: decimal.RequireFromString("80.00"), Side: domain.Credit, CurrencyCode: "EUR"},
		},
	}
	accounts := map[string]domain.Account{
		suite.bank.AccountID: suite.bank,
		eurRevenue.AccountID: eurRevenue,
	}

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, txnID).Return(txn, nil).Once()
	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(accounts, nil)
	suite.mockPeriodRepo.On("FindPeriodForDate", mock.Anything, suite.entityID, suite.txnDate).Return(suite.period, nil)
	suite.mockRateSvc.On("Convert", mock.Anything, suite.entityID, decimal.RequireFromString("80.00"), "EUR", "USD", suite.txnDate).
		Return(decimal.RequireFromString("100.00"), nil).Once()

	suite.accountsM = accounts
	suite.expectPostingSection(1)
	suite.mockChainRepo.On("FindLastLinkInTx", mock.Anything, mock.Anything, suite.entityID).
		Return(nil, apperrors.ErrNotFound).Once()

	posted, err := suite.service.PostTransaction(ctx, suite.entityID, txnID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Posted, posted.Status)
	suite.mockRateSvc.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestReverseTransaction_Success() {
	ctx := context.Background()
	original := suite.draftTxn("100.00", "100.00")
	seq := int64(1)
	original.Status = domain.Posted
	original.SequenceNo = &seq
	reversalDate := date(2026, 2, 1)

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, original.TransactionID).Return(original, nil).Once()
	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(suite.accountsM, nil)
	suite.mockPeriodRepo.On("FindPeriodForDate", mock.Anything, suite.entityID, reversalDate).Return(suite.period, nil)

	prev := &domain.ChainLink{EntityID: suite.entityID, SequenceNo: 1, Hash: "prevhash"}
	suite.expectPostingSection(2)
	suite.mockChainRepo.On("FindLastLinkInTx", mock.Anything, mock.Anything, suite.entityID).Return(prev, nil).Once()
	suite.mockTxnRepo.On("SaveTransactionInTx", mock.Anything, mock.Anything,
		mock.MatchedBy(func(t domain.Transaction) bool {
			if t.ReversesID == nil || *t.ReversesID != original.TransactionID {
				return false
			}
			// Sides must be mirrored, amounts untouched.
			for i, li := range t.LineItems {
				if li.Side != original.LineItems[i].Side.Opposite() || !li.Amount.Equal(original.LineItems[i].Amount) {
					return false
				}
			}
			return t.TransactionDate.Equal(reversalDate)
		})).Return(nil).Once()
	suite.mockTxnRepo.On("MarkReversedInTx", mock.Anything, mock.Anything,
		original.TransactionID, mock.AnythingOfType("string"), suite.userID, mock.Anything).Return(nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, suite.entityID, original.TransactionID, reversalDate, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal(domain.Posted, reversal.Status)
	suite.Equal(int64(2), *reversal.SequenceNo)
	suite.Require().NotNil(reversal.ReversesID)
	suite.Equal(original.TransactionID, *reversal.ReversesID)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestReverseTransaction_RejectsAlreadyReversed() {
	ctx := context.Background()
	original := suite.draftTxn("100.00", "100.00")
	seq := int64(1)
	original.Status = domain.Reversed
	original.SequenceNo = &seq

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, original.TransactionID).Return(original, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, suite.entityID, original.TransactionID, date(2026, 2, 1), suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeAlreadyReversed, apperrors.CodeOf(err))
}

func (suite *PostingServiceTestSuite) TestBatchCreateTransactions_MixedOutcomes() {
	ctx := context.Background()
	good := dto.CreateTransactionRequest{
		Kind:            string(domain.CashSale),
		Narration:       "Batch sale",
		TransactionDate: suite.txnDate,
		MainAccountID:   suite.bank.AccountID,
		LineItems: []dto.CreateLineItemRequest{
			{AccountID: suite.bank.AccountID, Amount: decimal.NewFromInt(100), Side: "DEBIT"},
			{AccountID: suite.revenue.AccountID, Amount: decimal.NewFromInt(100), Side: "CREDIT"},
		},
	}
	bad := good
	bad.Kind = "NOT_A_KIND"

	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(suite.accountsM, nil)
	suite.mockTxnRepo.On("SaveDraft", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := suite.service.BatchCreateTransactions(ctx, suite.entityID,
		dto.BatchCreateTransactionsRequest{Transactions: []dto.CreateTransactionRequest{good, bad}}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, resp.Total)
	suite.Equal(1, resp.Successful)
	suite.Equal(1, resp.Failed)
	suite.InDelta(50.0, resp.SuccessRate, 0.001)
	suite.Require().Len(resp.Results, 2)

	suite.NotEmpty(resp.Results[0].TransactionID)
	suite.Empty(resp.Results[0].Error)

	suite.Empty(resp.Results[1].TransactionID)
	suite.Equal(apperrors.CodeInvalidKind, resp.Results[1].Code)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestUpdateDraft_EditsHeader() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")
	newNarration := "Corrected narration"

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(txn, nil).Once()
	suite.mockTxnRepo.On("UpdateDraft", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Narration == newNarration && t.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	updated, err := suite.service.UpdateDraft(ctx, suite.entityID, txn.TransactionID,
		dto.UpdateTransactionRequest{Narration: &newNarration}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(newNarration, updated.Narration)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestUpdateDraft_RejectsPosted() {
	ctx := context.Background()
	txn := suite.draftTxn("100.00", "100.00")
	seq := int64(4)
	txn.Status = domain.Posted
	txn.SequenceNo = &seq
	newNarration := "Too late"

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(txn, nil).Once()

	_, err := suite.service.UpdateDraft(ctx, suite.entityID, txn.TransactionID,
		dto.UpdateTransactionRequest{Narration: &newNarration}, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeNotDraft, apperrors.CodeOf(err))
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateDraft", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestReverseTransaction_RejectsDraft() {
	ctx := context.Background()
	draft := suite.draftTxn("100.00", "100.00")

	suite.mockTxnRepo.On("FindTransactionByID", mock.Anything, draft.TransactionID).Return(draft, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, suite.entityID, draft.TransactionID, date(2026, 2, 1), suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeNotPosted, apperrors.CodeOf(err))
}

func (suite *PostingServiceTestSuite) TestCreateTransaction_RejectsNonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		Kind:            string(domain.JournalEntry),
		Narration:       "Bad amount",
		TransactionDate: suite.txnDate,
		MainAccountID:   suite.bank.AccountID,
		LineItems: []dto.CreateLineItemRequest{
			{AccountID: suite.bank.AccountID, Amount: decimal.Zero, Side: "DEBIT"},
		},
	}

	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).
		Return(map[string]domain.Account{suite.bank.AccountID: suite.bank}, nil)

	_, err := suite.service.CreateTransaction(ctx, suite.entityID, req, suite.userID)

	suite.Require().Error(err)
	suite.Equal(apperrors.CodeInvalidAmount, apperrors.CodeOf(err))
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveDraft", mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestCreateTransaction_InheritsAccountCurrency() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		Kind:            string(domain.CashSale),
		Narration:       "Sale",
		TransactionDate: suite.txnDate,
		MainAccountID:   suite.bank.AccountID,
		LineItems: []dto.CreateLineItemRequest{
			{AccountID: suite.bank.AccountID, Amount: decimal.NewFromInt(100), Side: "DEBIT"},
			{AccountID: suite.revenue.AccountID, Amount: decimal.NewFromInt(100), Side: "CREDIT"},
		},
	}

	suite.mockEntityRepo.On("FindEntityByID", mock.Anything, suite.entityID).Return(suite.entity, nil)
	suite.mockAccountRepo.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(suite.accountsM, nil)
	suite.mockTxnRepo.On("SaveDraft", mock.Anything, mock.MatchedBy(func(t domain.Transaction) bool {
		if t.Status != domain.Draft || t.SequenceNo != nil || t.IntegrityHash != "" {
			return false
		}
		for _, li := range t.LineItems {
			if li.CurrencyCode != "USD" {
				return false
			}
		}
		return len(t.LineItems) == 2
	})).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.entityID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Draft, txn.Status)
	suite.Nil(txn.SequenceNo)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestPostingService(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
