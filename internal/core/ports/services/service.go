package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Entity    EntitySvcFacade
	Currency  CurrencySvcFacade
	Rate      RateSvcFacade
	Account   AccountSvcFacade
	Period    PeriodSvcFacade
	Posting   PostingSvcFacade
	Integrity IntegritySvcFacade
	Statement StatementSvcFacade
	Budget    BudgetSvcFacade
}
