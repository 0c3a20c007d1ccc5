package db

import (
	"context"
	"fmt"
	"strings"

	"tenders/models"
)

const tenderColumns = "id, company_id, title, description, deadline, budget, created_at"

// Tender (Тендер)

func (s *Storage) CountTenders(ctx context.Context) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(id) FROM tenders`); err != nil {
		return 0, classify(err)
	}
	return total, nil
}

func (s *Storage) ListTenders(ctx context.Context, limit, offset int) ([]models.Tender, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
        SELECT ` + tenderColumns + ` FROM tenders
        ORDER BY created_at DESC, id DESC
        LIMIT $1 OFFSET $2`
	tenders := []models.Tender{}
	if err := s.db.SelectContext(ctx, &tenders, query, limit, offset); err != nil {
		return nil, classify(err)
	}
	return tenders, nil
}

func (s *Storage) ListCompanyTenders(ctx context.Context, companyID int) ([]models.Tender, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
        SELECT ` + tenderColumns + ` FROM tenders
        WHERE company_id = $1
        ORDER BY created_at DESC, id DESC`
	tenders := []models.Tender{}
	if err := s.db.SelectContext(ctx, &tenders, query, companyID); err != nil {
		return nil, classify(err)
	}
	return tenders, nil
}

func (s *Storage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t := &models.Tender{}
	query := `SELECT ` + tenderColumns + ` FROM tenders WHERE id = $1`
	if err := s.db.GetContext(ctx, t, query, id); err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (s *Storage) CreateTender(ctx context.Context, t *models.Tender) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
        INSERT INTO tenders (company_id, title, description, deadline, budget)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, query, t.CompanyID, t.Title, t.Description, t.Deadline, t.Budget).
		Scan(&t.ID, &t.CreatedAt)
	return classify(err)
}

// UpdateOwnedTender обновляет переданные поля тендера, только если он
// принадлежит companyID. Иначе ErrNotFound, без различия причин.
func (s *Storage) UpdateOwnedTender(ctx context.Context, id, companyID int, f models.TenderFields) (*models.Tender, error) {
	if f.Empty() {
		return nil, fmt.Errorf("update tender: no fields")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.Deadline != nil {
		add("deadline", *f.Deadline)
	} else if f.ClearDeadline {
		sets = append(sets, "deadline = NULL")
	}
	if f.Budget != nil {
		add("budget", *f.Budget)
	} else if f.ClearBudget {
		sets = append(sets, "budget = NULL")
	}
	args = append(args, id, companyID)

	query := fmt.Sprintf(`
        UPDATE tenders SET %s
        WHERE id = $%d AND company_id = $%d
        RETURNING %s`, strings.Join(sets, ", "), len(args)-1, len(args), tenderColumns)

	t := &models.Tender{}
	if err := s.db.GetContext(ctx, t, query, args...); err != nil {
		return nil, classify(err)
	}
	return t, nil
}

// DeleteOwnedTender удаляет тендер, только если он принадлежит companyID
func (s *Storage) DeleteOwnedTender(ctx context.Context, id, companyID int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tenders WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
