package services_test

import (
	"context"
	"testing"

	"github.com/finledger/finledger/internal/apperrors"
	"github.com/finledger/finledger/internal/core/domain"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/core/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	mockEntityRepo   *MockEntityRepository
	service          portssvc.AccountSvcFacade
	entityID         string
	userID           string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockEntityRepo = new(MockEntityRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockCurrencyRepo, suite.mockEntityRepo)
	suite.entityID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Name:         "Main Bank",
		AccountType:  "BANK",
		CurrencyCode: "usd",
	}

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "USD").
		Return(&domain.Currency{CurrencyCode: "USD", Precision: 2}, nil).Once()
	suite.mockEntityRepo.On("FindEntityByID", ctx, suite.entityID).
		Return(&domain.Entity{EntityID: suite.entityID, BaseCurrencyCode: "USD"}, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.EntityID == suite.entityID &&
			a.AccountType == domain.Bank &&
			a.CurrencyCode == "USD" &&
			a.IsActive &&
			a.Balance.IsZero()
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.entityID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Bank, account.AccountType)
	suite.True(account.IsActive)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RejectsUnknownType() {
	req := dto.CreateAccountRequest{Name: "X", AccountType: "SAVINGS", CurrencyCode: "USD"}

	_, err := suite.service.CreateAccount(context.Background(), suite.entityID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_HidesOtherEntities() {
	ctx := context.Background()
	account := &domain.Account{AccountID: uuid.NewString(), EntityID: uuid.NewString()}
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	_, err := suite.service.GetAccountByID(ctx, suite.entityID, account.AccountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestRecomputeBalance_Match() {
	ctx := context.Background()
	asOf := date(2026, 3, 31)
	cached := decimal.RequireFromString("150.00")
	account := &domain.Account{
		AccountID: uuid.NewString(),
		EntityID:  suite.entityID,
		Balance:   cached,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("ReplayAccountBalance", ctx, account.AccountID, asOf).Return(cached, nil).Once()

	result, err := suite.service.RecomputeBalance(ctx, suite.entityID, account.AccountID, asOf, false)

	suite.Require().NoError(err)
	suite.True(result.Match)
	suite.False(result.Repaired)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountBalance",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRecomputeBalance_MismatchWithoutRepair() {
	ctx := context.Background()
	asOf := date(2026, 3, 31)
	account := &domain.Account{
		AccountID: uuid.NewString(),
		EntityID:  suite.entityID,
		Balance:   decimal.RequireFromString("150.00"),
	}
	replayed := decimal.RequireFromString("140.00")

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("ReplayAccountBalance", ctx, account.AccountID, asOf).Return(replayed, nil).Once()

	result, err := suite.service.RecomputeBalance(ctx, suite.entityID, account.AccountID, asOf, false)

	suite.Require().NoError(err)
	suite.False(result.Match)
	suite.False(result.Repaired)
	suite.True(result.CachedBalance.Equal(decimal.RequireFromString("150.00")))
	suite.True(result.ReplayedBalance.Equal(replayed))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SetAccountBalance",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRecomputeBalance_MismatchWithRepair() {
	ctx := context.Background()
	asOf := date(2026, 3, 31)
	account := &domain.Account{
		AccountID: uuid.NewString(),
		EntityID:  suite.entityID,
		Balance:   decimal.RequireFromString("150.00"),
	}
	replayed := decimal.RequireFromString("140.00")

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("ReplayAccountBalance", ctx, account.AccountID, asOf).Return(replayed, nil).Once()
	suite.mockAccountRepo.On("SetAccountBalance", ctx, account.AccountID, replayed, mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Once()

	result, err := suite.service.RecomputeBalance(ctx, suite.entityID, account.AccountID, asOf, true)

	suite.Require().NoError(err)
	suite.False(result.Match)
	suite.True(result.Repaired)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	account := &domain.Account{AccountID: uuid.NewString(), EntityID: suite.entityID, IsActive: false}
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.entityID, account.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
