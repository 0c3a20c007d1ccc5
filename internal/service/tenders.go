package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"tenders/db"
	"tenders/internal/apperr"
	"tenders/internal/logger"
	"tenders/internal/metrics"
	"tenders/models"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	deadlineLayout   = "2006-01-02"
)

// TenderInput поля тендера в том виде, как пришли от клиента; nil = не передано
type TenderInput struct {
	Title       *string
	Description *string
	Deadline    *string
	Budget      *string
}

// TenderPage страница списка тендеров; Total считается без пагинации
type TenderPage struct {
	Tenders []models.Tender `json:"tenders"`
	Total   int             `json:"total"`
}

type TenderService struct {
	store    Store
	resolver *Resolver
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewTenderService(store Store, resolver *Resolver, log logger.Logger, m *metrics.Metrics) *TenderService {
	return &TenderService{store: store, resolver: resolver, log: log, metrics: m}
}

// List все тендеры, новые первыми. page с 1; некорректные page/limit
// заменяются значениями по умолчанию.
func (s *TenderService) List(ctx context.Context, page, limit int) (*TenderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	total, err := s.store.CountTenders(ctx)
	if err != nil {
		return nil, apperr.Upstream("Failed to count tenders", err)
	}
	tenders, err := s.store.ListTenders(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, apperr.Upstream("Failed to get tenders", err)
	}
	return &TenderPage{Tenders: tenders, Total: total}, nil
}

func (s *TenderService) ListForCompany(ctx context.Context, companyID int) ([]models.Tender, error) {
	tenders, err := s.store.ListCompanyTenders(ctx, companyID)
	if err != nil {
		return nil, apperr.Upstream("Failed to get company tenders", err)
	}
	return tenders, nil
}

func (s *TenderService) Get(ctx context.Context, id int) (*models.Tender, error) {
	t, err := s.store.GetTender(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.ErrTenderNotFound
	}
	if err != nil {
		return nil, apperr.Upstream("Failed to get tender", err)
	}
	return t, nil
}

// Create создает тендер от имени компании пользователя
func (s *TenderService) Create(ctx context.Context, userID int, in TenderInput) (*models.Tender, error) {
	companyID, err := s.resolver.RequireOwnedCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Validation("Title is required")
	}
	fields, err := parseTenderInput(in)
	if err != nil {
		return nil, err
	}

	t := &models.Tender{
		CompanyID:   companyID,
		Title:       *fields.Title,
		Description: fields.Description,
		Deadline:    fields.Deadline,
		Budget:      fields.Budget,
	}
	if err := s.store.CreateTender(ctx, t); err != nil {
		if errors.Is(err, db.ErrForeignKey) {
			return nil, apperr.ErrNoCompany
		}
		return nil, writeFailure("Failed to create tender", err)
	}

	s.metrics.Event(metrics.EventTenderCreated)
	s.log.Info("tender created", logger.Int("tender_id", t.ID), logger.Int("company_id", companyID))
	return t, nil
}

// Update меняет переданные поля, только если тендер принадлежит компании
// пользователя. Чужой и несуществующий тендер неразличимы.
func (s *TenderService) Update(ctx context.Context, userID, tenderID int, in TenderInput) (*models.Tender, error) {
	companyID, err := s.resolver.RequireOwnedCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields, err := parseTenderInput(in)
	if err != nil {
		return nil, err
	}
	if fields.Empty() {
		return nil, apperr.Validation("No fields to update")
	}

	t, err := s.store.UpdateOwnedTender(ctx, tenderID, companyID, fields)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.ErrTenderNotOwned
	}
	if err != nil {
		return nil, writeFailure("Failed to update tender", err)
	}
	return t, nil
}

func (s *TenderService) Delete(ctx context.Context, userID, tenderID int) error {
	companyID, err := s.resolver.RequireOwnedCompany(ctx, userID)
	if err != nil {
		return err
	}
	err = s.store.DeleteOwnedTender(ctx, tenderID, companyID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.ErrTenderNotOwned
	}
	if err != nil {
		return apperr.Upstream("Failed to delete tender", err)
	}
	s.log.Info("tender deleted", logger.Int("tender_id", tenderID), logger.Int("company_id", companyID))
	return nil
}

// parseTenderInput проверяет и нормализует поля. Пустые deadline и budget
// означают "без значения": при создании поле не задается, при обновлении
// очищается (NULL). null в JSON равен отсутствию поля.
func parseTenderInput(in TenderInput) (models.TenderFields, error) {
	var f models.TenderFields

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return f, apperr.Validation("Title must not be empty")
		}
		if err := checkLength("Title", title); err != nil {
			return f, err
		}
		f.Title = &title
	}
	if in.Description != nil {
		d := *in.Description
		f.Description = &d
	}
	if in.Deadline != nil {
		raw := strings.TrimSpace(*in.Deadline)
		if raw == "" {
			f.ClearDeadline = true
		} else {
			deadline, err := parseDeadline(raw)
			if err != nil {
				return f, apperr.Validation("Deadline must be a date in YYYY-MM-DD format")
			}
			f.Deadline = &deadline
		}
	}
	if in.Budget != nil {
		raw := strings.TrimSpace(*in.Budget)
		if raw == "" {
			f.ClearBudget = true
		} else {
			if err := parseBudget(raw); err != nil {
				return f, err
			}
			f.Budget = &raw
		}
	}
	return f, nil
}

func parseDeadline(raw string) (time.Time, error) {
	if d, err := time.Parse(deadlineLayout, raw); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
