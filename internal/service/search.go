package service

import (
	"context"
	"strings"

	"tenders/internal/apperr"
	"tenders/models"
)

type SearchService struct {
	store Store
}

func NewSearchService(store Store) *SearchService {
	return &SearchService{store: store}
}

// Companies ищет компании по подстроке без учета регистра. Условия
// объединяются через AND; без условий возвращается весь список по имени.
func (s *SearchService) Companies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Industry = strings.TrimSpace(f.Industry)
	f.Goods = strings.TrimSpace(f.Goods)

	companies, err := s.store.SearchCompanies(ctx, f)
	if err != nil {
		return nil, apperr.Upstream("Failed to search companies", err)
	}
	if companies == nil {
		companies = []models.Company{}
	}
	return companies, nil
}
