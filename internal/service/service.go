package service

import (
	"tenders/internal/auth"
	"tenders/internal/logger"
	"tenders/internal/metrics"
	"tenders/internal/objectstore"
)

// Deps зависимости доменного слоя
type Deps struct {
	Store   Store
	Logos   objectstore.Store
	Hasher  auth.Hasher
	Tokens  auth.TokenIssuer
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// Services набор доменных сервисов с общим Resolver
type Services struct {
	Accounts     *AccountService
	Companies    *CompanyService
	Tenders      *TenderService
	Applications *ApplicationService
	Search       *SearchService
}

func New(d Deps) *Services {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	resolver := NewResolver(d.Store)
	return &Services{
		Accounts:     NewAccountService(d.Store, d.Hasher, d.Tokens, log.With(logger.String("component", "accounts")), d.Metrics),
		Companies:    NewCompanyService(d.Store, resolver, d.Logos, log.With(logger.String("component", "companies")), d.Metrics),
		Tenders:      NewTenderService(d.Store, resolver, log.With(logger.String("component", "tenders")), d.Metrics),
		Applications: NewApplicationService(d.Store, resolver, log.With(logger.String("component", "applications")), d.Metrics),
		Search:       NewSearchService(d.Store),
	}
}
