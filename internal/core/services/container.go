package services

import (
	portsrepo "github.com/finledger/finledger/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
)

// NewServiceContainer wires every service against the repository
// provider. Services depend on each other only through their port
// interfaces, never on concrete siblings.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	rateSvc := NewRateService(repos.ExchangeRateRepo, repos.CurrencyRepo, repos.EntityRepo)

	return &portssvc.ServiceContainer{
		Entity:   NewEntityService(repos.EntityRepo, repos.CurrencyRepo),
		Currency: NewCurrencyService(repos.CurrencyRepo),
		Rate:     rateSvc,
		Account:  NewAccountService(repos.AccountRepo, repos.CurrencyRepo, repos.EntityRepo),
		Period:   NewPeriodService(repos.PeriodRepo, repos.EntityRepo),
		Posting: NewPostingService(
			repos.TransactionRepo,
			repos.AccountRepo,
			repos.ChainRepo,
			repos.PeriodRepo,
			repos.EntityRepo,
			rateSvc,
		),
		Integrity: NewIntegrityService(repos.ChainRepo, repos.TransactionRepo, repos.EntityRepo),
		Statement: NewStatementService(repos.ReportingRepo, repos.AccountRepo, repos.EntityRepo, rateSvc),
		Budget: NewBudgetService(
			repos.BudgetRepo,
			repos.PeriodRepo,
			repos.AccountRepo,
			repos.EntityRepo,
			repos.ReportingRepo,
			rateSvc,
		),
	}
}
