package handlers

import (
	"context"

	"tenders/internal/service"
	"tenders/models"
)

// Интерфейсы доменных сервисов, с которыми работают хендлеры.
// Реализации в пакете service.

type AccountService interface {
	Signup(ctx context.Context, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Authenticate(ctx context.Context, token string) (int, error)
}

type CompanyService interface {
	GetPublic(ctx context.Context, companyID int) (*models.CompanyView, error)
	GetMine(ctx context.Context, userID int) (*models.CompanyView, error)
	GetByUserID(ctx context.Context, userID int) (*models.CompanyView, error)
	Save(ctx context.Context, userID int, in service.CompanyInput) (*models.CompanyView, error)
	Delete(ctx context.Context, userID int) error
	UploadLogo(ctx context.Context, userID int, imageBase64 string) (string, error)
}

type TenderService interface {
	List(ctx context.Context, page, limit int) (*service.TenderPage, error)
	ListForCompany(ctx context.Context, companyID int) ([]models.Tender, error)
	Get(ctx context.Context, id int) (*models.Tender, error)
	Create(ctx context.Context, userID int, in service.TenderInput) (*models.Tender, error)
	Update(ctx context.Context, userID, tenderID int, in service.TenderInput) (*models.Tender, error)
	Delete(ctx context.Context, userID, tenderID int) error
}

type ApplicationService interface {
	Submit(ctx context.Context, userID, tenderID int, proposal *string) (*models.Application, error)
	ListForTender(ctx context.Context, tenderID int) ([]models.Application, error)
	ListForCompany(ctx context.Context, companyID int) ([]models.AppliedTender, error)
}

type SearchService interface {
	Companies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error)
}
