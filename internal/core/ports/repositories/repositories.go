package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	EntityRepo       EntityRepository
	CurrencyRepo     CurrencyRepository
	ExchangeRateRepo ExchangeRateRepository
	AccountRepo      AccountRepositoryFacade
	PeriodRepo       PeriodRepository
	TransactionRepo  TransactionRepositoryFacade
	ChainRepo        ChainRepository
	BudgetRepo       BudgetRepository
	ReportingRepo    ReportingRepository
}
