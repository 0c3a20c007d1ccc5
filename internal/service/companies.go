package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"tenders/db"
	"tenders/internal/apperr"
	"tenders/internal/logger"
	"tenders/internal/metrics"
	"tenders/internal/objectstore"
	"tenders/models"
)

const logoContentType = "image/png"

// CompanyInput данные профиля компании. GoodsProvided=false означает, что
// список товаров в запросе не передан и не трогается.
type CompanyInput struct {
	Name             string
	Industry         *string
	Description      *string
	GoodsAndServices []string
	GoodsProvided    bool
}

type CompanyService struct {
	store    Store
	resolver *Resolver
	logos    objectstore.Store
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewCompanyService(store Store, resolver *Resolver, logos objectstore.Store, log logger.Logger, m *metrics.Metrics) *CompanyService {
	return &CompanyService{store: store, resolver: resolver, logos: logos, log: log, metrics: m}
}

// LogoURL публичный адрес логотипа, вычисляется из id компании
func (s *CompanyService) LogoURL(companyID int) string {
	return s.logos.PublicURL(logoKey(companyID))
}

func logoKey(companyID int) string {
	return strconv.Itoa(companyID) + ".png"
}

// GetPublic публичная карточка компании с товарами и логотипом
func (s *CompanyService) GetPublic(ctx context.Context, companyID int) (*models.CompanyView, error) {
	return s.view(ctx, companyID, true)
}

// GetMine компания текущего пользователя
func (s *CompanyService) GetMine(ctx context.Context, userID int) (*models.CompanyView, error) {
	companyID, ok, err := s.resolver.OwnedCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNoCompanyForUser
	}
	return s.view(ctx, companyID, true)
}

// GetByUserID компания другого пользователя. Без logo_url, как и раньше
// отдавал этот маршрут.
func (s *CompanyService) GetByUserID(ctx context.Context, userID int) (*models.CompanyView, error) {
	companyID, ok, err := s.resolver.OwnedCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNoCompanyForUser
	}
	return s.view(ctx, companyID, false)
}

func (s *CompanyService) view(ctx context.Context, companyID int, withLogo bool) (*models.CompanyView, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.ErrCompanyNotFound
	}
	if err != nil {
		return nil, apperr.Upstream("Failed to load company", err)
	}
	goods, err := s.store.ListGoods(ctx, companyID)
	if err != nil {
		return nil, apperr.Upstream("Failed to load goods and services", err)
	}

	v := &models.CompanyView{Company: *company, GoodsAndServices: goods}
	if withLogo {
		v.LogoURL = s.LogoURL(company.ID)
	}
	return v, nil
}

// Save создает НОВУЮ компанию при каждом вызове и привязывает ее к
// пользователю. Повторное сохранение профиля дает пользователю вторую
// компанию; каноничной остается первая (см. Resolver).
func (s *CompanyService) Save(ctx context.Context, userID int, in CompanyInput) (*models.CompanyView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Company name is required")
	}
	if err := checkLength("Company name", name); err != nil {
		return nil, err
	}
	if in.Industry != nil {
		if err := checkLength("Industry", *in.Industry); err != nil {
			return nil, err
		}
	}

	goods := make([]string, 0, len(in.GoodsAndServices))
	for _, g := range in.GoodsAndServices {
		if g = strings.TrimSpace(g); g != "" {
			if err := checkLength("Goods and services item", g); err != nil {
				return nil, err
			}
			goods = append(goods, g)
		}
	}

	company := &models.Company{Name: name, Industry: in.Industry, Description: in.Description}
	err := s.store.CreateCompany(ctx, userID, company, goods, in.GoodsProvided)
	if errors.Is(err, db.ErrForeignKey) {
		return nil, apperr.ErrInvalidToken
	}
	if err != nil {
		return nil, writeFailure("Failed to save company", err)
	}

	s.metrics.Event(metrics.EventCompanySaved)
	s.log.Info("company saved", logger.Int("user_id", userID), logger.Int("company_id", company.ID))

	if !in.GoodsProvided {
		goods = []string{}
	}
	return &models.CompanyView{Company: *company, GoodsAndServices: goods, LogoURL: s.LogoURL(company.ID)}, nil
}

// Delete удаляет все компании пользователя; зависимые записи уходят каскадом
func (s *CompanyService) Delete(ctx context.Context, userID int) error {
	n, err := s.store.DeleteCompaniesForUser(ctx, userID)
	if err != nil {
		return apperr.Upstream("Failed to delete company", err)
	}
	s.log.Info("companies deleted", logger.Int("user_id", userID), logger.Int("count", n))
	return nil
}

// UploadLogo сохраняет логотип компании пользователя (с перезаписью) и
// возвращает его публичный адрес
func (s *CompanyService) UploadLogo(ctx context.Context, userID int, imageBase64 string) (string, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return "", apperr.ErrMissingImage
	}
	companyID, err := s.resolver.RequireOwnedCompany(ctx, userID)
	if err != nil {
		return "", err
	}

	data, err := decodeImage(imageBase64)
	if err != nil || len(data) == 0 {
		return "", apperr.Validation("Invalid image encoding")
	}

	if err := s.logos.Upload(ctx, logoKey(companyID), data, logoContentType); err != nil {
		return "", apperr.Upstream("Logo upload failed", err)
	}

	s.metrics.Event(metrics.EventLogoUploaded)
	return s.LogoURL(companyID), nil
}

// decodeImage принимает чистый base64 или data URL ("data:image/png;base64,...")
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return data, nil
}
