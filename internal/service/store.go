package service

import (
	"context"

	"tenders/models"
)

// Store порт реляционного хранилища. Реализации: db.Storage (Postgres) и
// dbtest.MemStore (тесты). Ошибки: db.ErrNotFound, db.ErrDuplicate,
// db.ErrForeignKey, остальное считается сбоем хранилища.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)

	FirstCompanyIDForUser(ctx context.Context, userID int) (int, error)
	GetCompany(ctx context.Context, id int) (*models.Company, error)
	ListGoods(ctx context.Context, companyID int) ([]string, error)
	CreateCompany(ctx context.Context, userID int, c *models.Company, goods []string, replaceGoods bool) error
	DeleteCompaniesForUser(ctx context.Context, userID int) (int, error)
	SearchCompanies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error)

	CountTenders(ctx context.Context) (int, error)
	ListTenders(ctx context.Context, limit, offset int) ([]models.Tender, error)
	ListCompanyTenders(ctx context.Context, companyID int) ([]models.Tender, error)
	GetTender(ctx context.Context, id int) (*models.Tender, error)
	CreateTender(ctx context.Context, t *models.Tender) error
	UpdateOwnedTender(ctx context.Context, id, companyID int, f models.TenderFields) (*models.Tender, error)
	DeleteOwnedTender(ctx context.Context, id, companyID int) error

	ApplicationExists(ctx context.Context, tenderID, companyID int) (bool, error)
	CreateApplication(ctx context.Context, a *models.Application) error
	ListTenderApplications(ctx context.Context, tenderID int) ([]models.Application, error)
	ListCompanyApplications(ctx context.Context, companyID int) ([]models.AppliedTender, error)
}
