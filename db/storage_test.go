package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenders/models"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return NewStorage(sqlx.NewDb(conn, "postgres"), time.Second), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(sql.ErrNoRows), ErrNotFound)

	err := classify(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "users_email_key")

	assert.ErrorIs(t, classify(&pq.Error{Code: "23503"}), ErrForeignKey)
	assert.ErrorIs(t, classify(&pq.Error{Code: "22001"}), ErrInvalidInput)
	assert.ErrorIs(t, classify(&pq.Error{Code: "22003"}), ErrInvalidInput)
	assert.NotErrorIs(t, classify(&pq.Error{Code: "40001"}), ErrInvalidInput)

	other := errors.New("boom")
	assert.Equal(t, other, classify(other))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%acme%", likePattern("acme"))
	assert.Equal(t, `%100\%\_a\\b%`, likePattern(`100%_a\b`))
}

func TestCreateUser(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()

	mock.ExpectQuery(q("INSERT INTO users (email, password_hash)")).
		WithArgs("a@x.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	u, err := s.CreateUser(context.Background(), "a@x.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, 7, u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs("a@x.com", "hash").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := s.CreateUser(context.Background(), "a@x.com", "hash")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("SELECT id, email, password_hash, created_at FROM users WHERE email = $1")).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUserByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFirstCompanyIDForUser(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("SELECT company_id FROM user_company_map")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"company_id"}).AddRow(11))

	id, err := s.FirstCompanyIDForUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 11, id)
}

// Замена товаров идет в той же транзакции: сначала удаление всех, потом вставка новых
func TestCreateCompanyReplacesGoodsInTx(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO companies (name, industry, description)")).
		WithArgs("Acme", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, now))
	mock.ExpectExec(q("INSERT INTO user_company_map (user_id, company_id)")).
		WithArgs(1, 5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("DELETE FROM goods_and_services WHERE company_id = $1")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("INSERT INTO goods_and_services (company_id, name)")).
		WithArgs(5, "C").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	c := &models.Company{Name: "Acme"}
	require.NoError(t, s.CreateCompany(context.Background(), 1, c, []string{"C"}, true))
	assert.Equal(t, 5, c.ID)
}

func TestCreateCompanyWithoutGoods(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO companies")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, time.Now()))
	mock.ExpectExec(q("INSERT INTO user_company_map")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.CreateCompany(context.Background(), 1, &models.Company{Name: "Acme"}, nil, false))
}

func TestCreateCompanyRollsBack(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO companies")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, time.Now()))
	mock.ExpectExec(q("INSERT INTO user_company_map")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("DELETE FROM goods_and_services")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("INSERT INTO goods_and_services")).
		WithArgs(5, "A").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.CreateCompany(context.Background(), 1, &models.Company{Name: "Acme"}, []string{"A", "B"}, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert goods")
}

func TestDeleteCompaniesForUser(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT company_id FROM user_company_map WHERE user_id = $1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"company_id"}).AddRow(5).AddRow(6))
	for _, id := range []int{5, 6} {
		mock.ExpectExec(q("DELETE FROM companies WHERE id = $1")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("DELETE FROM user_company_map WHERE user_id = $1 AND company_id = $2")).
			WithArgs(1, id).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	n, err := s.DeleteCompaniesForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSearchCompaniesQuery(t *testing.T) {
	s, mock := newMockStorage(t)
	columns := []string{"id", "name", "industry", "description", "created_at"}

	mock.ExpectQuery(q("SELECT DISTINCT c.id, c.name, c.industry, c.description, c.created_at FROM companies c " +
		"JOIN goods_and_services g ON g.company_id = c.id " +
		"WHERE g.name ILIKE $1 AND c.name ILIKE $2 AND c.industry ILIKE $3 ORDER BY c.name ASC, c.id ASC")).
		WithArgs("%bolt%", "%acme%", "%tech%").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Acme", "Tech", nil, time.Now()))

	got, err := s.SearchCompanies(context.Background(), models.CompanyFilter{Name: "acme", Industry: "tech", Goods: "bolt"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].Name)
}

func TestSearchCompaniesNoFilters(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("SELECT DISTINCT c.id, c.name, c.industry, c.description, c.created_at FROM companies c ORDER BY c.name ASC, c.id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "industry", "description", "created_at"}))

	got, err := s.SearchCompanies(context.Background(), models.CompanyFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListTenders(t *testing.T) {
	s, mock := newMockStorage(t)
	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("SELECT COUNT(id) FROM tenders")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(q("ORDER BY created_at DESC, id DESC")).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "title", "description", "deadline", "budget", "created_at"}).
			AddRow(2, 1, "RFP", nil, deadline, "1500.50", time.Now()))

	total, err := s.CountTenders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, total)

	tenders, err := s.ListTenders(context.Background(), 10, 10)
	require.NoError(t, err)
	require.Len(t, tenders, 1)
	require.NotNil(t, tenders[0].Budget)
	assert.Equal(t, "1500.50", *tenders[0].Budget)
	assert.True(t, deadline.Equal(*tenders[0].Deadline))
}

func TestUpdateOwnedTenderBuildsPartialSet(t *testing.T) {
	s, mock := newMockStorage(t)
	title, budget := "New", "99"

	mock.ExpectQuery(`UPDATE tenders SET title = \$1, budget = \$2\s+WHERE id = \$3 AND company_id = \$4\s+RETURNING`).
		WithArgs("New", "99", 4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "title", "description", "deadline", "budget", "created_at"}).
			AddRow(4, 1, "New", nil, nil, "99.00", time.Now()))

	tender, err := s.UpdateOwnedTender(context.Background(), 4, 1, models.TenderFields{Title: &title, Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, "New", tender.Title)
}

func TestCreateTenderValueRejectedBySchema(t *testing.T) {
	s, mock := newMockStorage(t)
	budget := "1e20"

	mock.ExpectQuery(q("INSERT INTO tenders (company_id, title, description, deadline, budget)")).
		WithArgs(1, "T", nil, nil, "1e20").
		WillReturnError(&pq.Error{Code: "22003", Message: "numeric field overflow"})

	err := s.CreateTender(context.Background(), &models.Tender{CompanyID: 1, Title: "T", Budget: &budget})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateOwnedTenderClearsFields(t *testing.T) {
	s, mock := newMockStorage(t)
	title := "T"

	mock.ExpectQuery(`UPDATE tenders SET title = \$1, deadline = NULL, budget = NULL\s+WHERE id = \$2 AND company_id = \$3`).
		WithArgs("T", 4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "title", "description", "deadline", "budget", "created_at"}).
			AddRow(4, 1, "T", nil, nil, nil, time.Now()))

	tender, err := s.UpdateOwnedTender(context.Background(), 4, 1, models.TenderFields{Title: &title, ClearDeadline: true, ClearBudget: true})
	require.NoError(t, err)
	assert.Nil(t, tender.Deadline)
	assert.Nil(t, tender.Budget)
}

func TestUpdateOwnedTenderNotOwned(t *testing.T) {
	s, mock := newMockStorage(t)
	title := "X"

	mock.ExpectQuery(q("UPDATE tenders SET title = $1")).
		WithArgs("X", 4, 2).
		WillReturnError(sql.ErrNoRows)

	_, err := s.UpdateOwnedTender(context.Background(), 4, 2, models.TenderFields{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOwnedTenderRequiresFields(t *testing.T) {
	s, _ := newMockStorage(t)
	_, err := s.UpdateOwnedTender(context.Background(), 4, 2, models.TenderFields{})
	require.Error(t, err)
}

func TestDeleteOwnedTender(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(q("DELETE FROM tenders WHERE id = $1 AND company_id = $2")).
		WithArgs(4, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM tenders WHERE id = $1 AND company_id = $2")).
		WithArgs(4, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteOwnedTender(context.Background(), 4, 1))
	require.ErrorIs(t, s.DeleteOwnedTender(context.Background(), 4, 2), ErrNotFound)
}

func TestCreateApplicationErrors(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("INSERT INTO applications (tender_id, company_id, proposal)")).
		WithArgs(1, 2, nil).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "applications_tender_company_key"})
	mock.ExpectQuery(q("INSERT INTO applications")).
		WithArgs(99, 2, nil).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "applications_tender_id_fkey"})

	err := s.CreateApplication(context.Background(), &models.Application{TenderID: 1, CompanyID: 2})
	require.ErrorIs(t, err, ErrDuplicate)

	err = s.CreateApplication(context.Background(), &models.Application{TenderID: 99, CompanyID: 2})
	require.ErrorIs(t, err, ErrForeignKey)
}

func TestApplicationExists(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("SELECT COUNT(1) FROM applications WHERE tender_id = $1 AND company_id = $2")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := s.ApplicationExists(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListCompanyApplications(t *testing.T) {
	s, mock := newMockStorage(t)
	deadline := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("JOIN tenders t ON a.tender_id = t.id")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tender_id", "company_id", "proposal", "created_at", "tender_title", "tender_deadline"}).
			AddRow(1, 3, 2, "bid", time.Now(), "RFP", deadline))

	apps, err := s.ListCompanyApplications(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "RFP", apps[0].TenderTitle)
	assert.Equal(t, 3, apps[0].TenderID)
}

func TestCanceledContextSurfaces(t *testing.T) {
	s, _ := newMockStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CountTenders(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
