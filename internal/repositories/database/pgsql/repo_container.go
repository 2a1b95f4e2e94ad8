package pgsql

import (
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	entityRepo := newPgxEntityRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool)
	periodRepo := newPgxPeriodRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	chainRepo := newPgxChainRepository(dbPool)
	budgetRepo := newPgxBudgetRepository(dbPool)
	reportingRepo := newPgxReportingRepository(dbPool, transactionRepo)

	return portsrepo.RepositoryProvider{
		EntityRepo:       entityRepo,
		CurrencyRepo:     currencyRepo,
		ExchangeRateRepo: exchangeRateRepo,
		AccountRepo:      accountRepo,
		PeriodRepo:       periodRepo,
		TransactionRepo:  transactionRepo,
		ChainRepo:        chainRepo,
		BudgetRepo:       budgetRepo,
		ReportingRepo:    reportingRepo,
	}
}
