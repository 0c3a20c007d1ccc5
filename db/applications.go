package db

import (
	"context"

	"tenders/models"
)

// Application (Заявка)

func (s *Storage) ApplicationExists(ctx context.Context, tenderID, companyID int) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int
	query := `SELECT COUNT(1) FROM applications WHERE tender_id = $1 AND company_id = $2`
	if err := s.db.GetContext(ctx, &count, query, tenderID, companyID); err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

// CreateApplication вставляет заявку. Повтор пары (tender_id, company_id)
// отклоняется ограничением уникальности и возвращается как ErrDuplicate.
func (s *Storage) CreateApplication(ctx context.Context, a *models.Application) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
        INSERT INTO applications (tender_id, company_id, proposal)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, query, a.TenderID, a.CompanyID, a.Proposal).Scan(&a.ID, &a.CreatedAt)
	return classify(err)
}

func (s *Storage) ListTenderApplications(ctx context.Context, tenderID int) ([]models.Application, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
        SELECT id, tender_id, company_id, proposal, created_at FROM applications
        WHERE tender_id = $1
        ORDER BY created_at DESC, id DESC`
	apps := []models.Application{}
	if err := s.db.SelectContext(ctx, &apps, query, tenderID); err != nil {
		return nil, classify(err)
	}
	return apps, nil
}

func (s *Storage) ListCompanyApplications(ctx context.Context, companyID int) ([]models.AppliedTender, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
        SELECT a.id, a.tender_id, a.company_id, a.proposal, a.created_at,
               t.title AS tender_title, t.deadline AS tender_deadline
        FROM applications a
        JOIN tenders t ON a.tender_id = t.id
        WHERE a.company_id = $1
        ORDER BY a.created_at DESC, a.id DESC`
	apps := []models.AppliedTender{}
	if err := s.db.SelectContext(ctx, &apps, query, companyID); err != nil {
		return nil, classify(err)
	}
	return apps, nil
}
