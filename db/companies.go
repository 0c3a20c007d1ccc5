package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"tenders/models"
)

const companyColumns = "c.id, c.name, c.industry, c.description, c.created_at"

// Company (Компания)

// FirstCompanyIDForUser возвращает первую по id компанию пользователя.
// Схема допускает несколько связей, каноничной считается первая.
func (s *Storage) FirstCompanyIDForUser(ctx context.Context, userID int) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var companyID int
	query := `
        SELECT company_id FROM user_company_map
        WHERE user_id = $1
        ORDER BY id ASC
        LIMIT 1`
	if err := s.db.GetContext(ctx, &companyID, query, userID); err != nil {
		return 0, classify(err)
	}
	return companyID, nil
}

func (s *Storage) GetCompany(ctx context.Context, id int) (*models.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c := &models.Company{}
	query := `SELECT ` + companyColumns + ` FROM companies c WHERE c.id = $1`
	if err := s.db.GetContext(ctx, c, query, id); err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func (s *Storage) ListGoods(ctx context.Context, companyID int) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	goods := []string{}
	query := `SELECT name FROM goods_and_services WHERE company_id = $1 ORDER BY id ASC`
	if err := s.db.SelectContext(ctx, &goods, query, companyID); err != nil {
		return nil, classify(err)
	}
	return goods, nil
}

// CreateCompany вставляет новую компанию, привязывает ее к пользователю и,
// если replaceGoods, полностью заменяет список товаров/услуг. Все в одной
// транзакции, читатель не увидит компанию с пустым промежуточным списком.
func (s *Storage) CreateCompany(ctx context.Context, userID int, c *models.Company, goods []string, replaceGoods bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
            INSERT INTO companies (name, industry, description)
            VALUES ($1, $2, $3)
            RETURNING id, created_at`
		err := tx.QueryRowxContext(ctx, query, c.Name, c.Industry, c.Description).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert company: %w", classify(err))
		}

		mapQuery := `
            INSERT INTO user_company_map (user_id, company_id)
            VALUES ($1, $2)
            ON CONFLICT (user_id, company_id) DO NOTHING`
		if _, err := tx.ExecContext(ctx, mapQuery, userID, c.ID); err != nil {
			return fmt.Errorf("link company: %w", classify(err))
		}

		if !replaceGoods {
			return nil
		}
		return replaceGoodsTx(ctx, tx, c.ID, goods)
	})
}

// replaceGoodsTx полностью заменяет список товаров/услуг компании
func replaceGoodsTx(ctx context.Context, tx *sqlx.Tx, companyID int, goods []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM goods_and_services WHERE company_id = $1`, companyID); err != nil {
		return fmt.Errorf("delete goods: %w", classify(err))
	}
	for _, name := range goods {
		query := `INSERT INTO goods_and_services (company_id, name) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, companyID, name); err != nil {
			return fmt.Errorf("insert goods: %w", classify(err))
		}
	}
	return nil
}

// DeleteCompaniesForUser удаляет все компании пользователя и связи с ними.
// Товары, тендеры и заявки удаляются каскадом в базе.
func (s *Storage) DeleteCompaniesForUser(ctx context.Context, userID int) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var deleted int
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var ids []int
		if err := tx.SelectContext(ctx, &ids, `SELECT company_id FROM user_company_map WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("select companies: %w", classify(err))
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id); err != nil {
				return fmt.Errorf("delete company: %w", classify(err))
			}
			query := `DELETE FROM user_company_map WHERE user_id = $1 AND company_id = $2`
			if _, err := tx.ExecContext(ctx, query, userID, id); err != nil {
				return fmt.Errorf("delete company link: %w", classify(err))
			}
		}
		deleted = len(ids)
		return nil
	})
	return deleted, err
}

// SearchCompanies ищет компании по подстроке без учета регистра. Заданные
// фильтры объединяются через AND, без фильтров возвращаются все компании.
func (s *Storage) SearchCompanies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		args       []interface{}
		conditions []string
	)
	from := "companies c"

	if f.Goods != "" {
		from += " JOIN goods_and_services g ON g.company_id = c.id"
		args = append(args, likePattern(f.Goods))
		conditions = append(conditions, fmt.Sprintf("g.name ILIKE $%d", len(args)))
	}
	if f.Name != "" {
		args = append(args, likePattern(f.Name))
		conditions = append(conditions, fmt.Sprintf("c.name ILIKE $%d", len(args)))
	}
	if f.Industry != "" {
		args = append(args, likePattern(f.Industry))
		conditions = append(conditions, fmt.Sprintf("c.industry ILIKE $%d", len(args)))
	}

	query := "SELECT DISTINCT " + companyColumns + " FROM " + from
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.name ASC, c.id ASC"

	companies := []models.Company{}
	if err := s.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, classify(err)
	}
	return companies, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern экранирует спецсимволы LIKE и оборачивает в %...%
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
