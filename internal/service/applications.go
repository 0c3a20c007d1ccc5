package service

import (
	"context"
	"errors"

	"tenders/db"
	"tenders/internal/apperr"
	"tenders/internal/logger"
	"tenders/internal/metrics"
	"tenders/models"
)

type ApplicationService struct {
	store    Store
	resolver *Resolver
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewApplicationService(store Store, resolver *Resolver, log logger.Logger, m *metrics.Metrics) *ApplicationService {
	return &ApplicationService{store: store, resolver: resolver, log: log, metrics: m}
}

// Submit подает заявку компании пользователя на тендер.
//
// Две фазы: сначала проверка существующей заявки, затем вставка. Между ними
// возможна гонка, поэтому нарушение уникальности (tender_id, company_id) при
// вставке тоже превращается в ErrAlreadyApplied.
func (s *ApplicationService) Submit(ctx context.Context, userID, tenderID int, proposal *string) (*models.Application, error) {
	companyID, err := s.resolver.RequireOwnedCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tenderID <= 0 {
		return nil, apperr.Validation("tender_id is required")
	}

	exists, err := s.store.ApplicationExists(ctx, tenderID, companyID)
	if err != nil {
		return nil, apperr.Upstream("Failed to check application", err)
	}
	if exists {
		s.metrics.Event(metrics.EventApplicationConflict)
		return nil, apperr.ErrAlreadyApplied
	}

	a := &models.Application{TenderID: tenderID, CompanyID: companyID, Proposal: proposal}
	err = s.store.CreateApplication(ctx, a)
	switch {
	case errors.Is(err, db.ErrDuplicate):
		s.metrics.Event(metrics.EventApplicationConflict)
		return nil, apperr.ErrAlreadyApplied
	case errors.Is(err, db.ErrForeignKey):
		return nil, apperr.ErrTenderNotFound
	case err != nil:
		return nil, writeFailure("Failed to submit application", err)
	}

	s.metrics.Event(metrics.EventApplicationSubmitted)
	s.log.Info("application submitted",
		logger.Int("application_id", a.ID),
		logger.Int("tender_id", tenderID),
		logger.Int("company_id", companyID),
	)
	return a, nil
}

// ListForTender все заявки на тендер. Владение тендером не проверяется:
// смотреть может любой аутентифицированный пользователь.
func (s *ApplicationService) ListForTender(ctx context.Context, tenderID int) ([]models.Application, error) {
	apps, err := s.store.ListTenderApplications(ctx, tenderID)
	if err != nil {
		return nil, apperr.Upstream("Failed to get applications", err)
	}
	return apps, nil
}

// ListForCompany заявки компании с названием и дедлайном тендера, новые первыми
func (s *ApplicationService) ListForCompany(ctx context.Context, companyID int) ([]models.AppliedTender, error) {
	apps, err := s.store.ListCompanyApplications(ctx, companyID)
	if err != nil {
		return nil, apperr.Upstream("Failed to get applications", err)
	}
	return apps, nil
}
