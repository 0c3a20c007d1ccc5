// Package dbtest содержит хранилище в памяти для тестов сервисов и хендлеров.
// Оно соблюдает те же ограничения, что и схема Postgres: уникальность email и
// пары (tender_id, company_id), внешние ключи и каскадное удаление.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tenders/db"
	"tenders/models"
)

type MemStore struct {
	mu sync.Mutex

	// UniqueApplications включает ограничение UNIQUE (tender_id, company_id)
	UniqueApplications bool
	// StaleExistsCheck заставляет ApplicationExists всегда отвечать false,
	// как будто конкурентная вставка еще не видна проверке
	StaleExistsCheck bool

	failures map[string]error
	clock    time.Time
	seq      map[string]int

	users     []models.User
	companies []models.Company
	links     []models.UserCompanyMap
	goods     []models.GoodsAndService
	tenders   []models.Tender
	apps      []models.Application
}

func NewMemStore() *MemStore {
	return &MemStore{
		UniqueApplications: true,
		failures:           map[string]error{},
		seq:                map[string]int{},
		clock:              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Fail заставляет метод с именем op возвращать err. nil снимает сбой.
func (m *MemStore) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *MemStore) fail(op string) error {
	return m.failures[op]
}

// tick возвращает следующий момент времени; порядок created_at строгий
func (m *MemStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// nextID отдельная последовательность на таблицу, как SERIAL
func (m *MemStore) nextID(table string) int {
	m.seq[table]++
	return m.seq[table]
}

// Applications количество заявок на пару (тендер, компания)
func (m *MemStore) Applications(tenderID, companyID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.apps {
		if a.TenderID == tenderID && a.CompanyID == companyID {
			n++
		}
	}
	return n
}

// Goods товары компании напрямую, без учета сбоев
func (m *MemStore) Goods(companyID int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goodsOf(companyID)
}

// CompanyIDsForUser все компании пользователя по порядку связей
func (m *MemStore) CompanyIDsForUser(userID int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int
	for _, l := range m.links {
		if l.UserID == userID {
			ids = append(ids, l.CompanyID)
		}
	}
	return ids
}

// DeleteUser удаляет пользователя вместе со связями
func (m *MemStore) DeleteUser(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := m.users[:0]
	for _, u := range m.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	m.users = users
	links := m.links[:0]
	for _, l := range m.links {
		if l.UserID != id {
			links = append(links, l)
		}
	}
	m.links = links
}

func (m *MemStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateUser"); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Email == email {
			return nil, fmt.Errorf("%w: users_email_key", db.ErrDuplicate)
		}
	}
	u := models.User{ID: m.nextID("users"), Email: email, PasswordHash: passwordHash, CreatedAt: m.tick()}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetUserByEmail"); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MemStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetUserByID"); err != nil {
		return nil, err
	}
	if u := m.user(id); u != nil {
		u := *u
		return &u, nil
	}
	return nil, db.ErrNotFound
}

func (m *MemStore) user(id int) *models.User {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i]
		}
	}
	return nil
}

func (m *MemStore) company(id int) *models.Company {
	for i := range m.companies {
		if m.companies[i].ID == id {
			return &m.companies[i]
		}
	}
	return nil
}

func (m *MemStore) tender(id int) *models.Tender {
	for i := range m.tenders {
		if m.tenders[i].ID == id {
			return &m.tenders[i]
		}
	}
	return nil
}

func (m *MemStore) goodsOf(companyID int) []string {
	goods := []string{}
	for _, g := range m.goods {
		if g.CompanyID == companyID {
			goods = append(goods, g.Name)
		}
	}
	return goods
}

func (m *MemStore) FirstCompanyIDForUser(ctx context.Context, userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("FirstCompanyIDForUser"); err != nil {
		return 0, err
	}
	for _, l := range m.links {
		if l.UserID == userID {
			return l.CompanyID, nil
		}
	}
	return 0, db.ErrNotFound
}

func (m *MemStore) GetCompany(ctx context.Context, id int) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetCompany"); err != nil {
		return nil, err
	}
	if c := m.company(id); c != nil {
		c := *c
		return &c, nil
	}
	return nil, db.ErrNotFound
}

func (m *MemStore) ListGoods(ctx context.Context, companyID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListGoods"); err != nil {
		return nil, err
	}
	return m.goodsOf(companyID), nil
}

// CreateCompany атомарен: при сбою ничего не меняется
func (m *MemStore) CreateCompany(ctx context.Context, userID int, c *models.Company, goods []string, replaceGoods bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateCompany"); err != nil {
		return err
	}
	if m.user(userID) == nil {
		return fmt.Errorf("%w: user_company_map_user_id_fkey", db.ErrForeignKey)
	}

	c.ID = m.nextID("companies")
	c.CreatedAt = m.tick()
	m.companies = append(m.companies, *c)
	m.links = append(m.links, models.UserCompanyMap{ID: m.nextID("user_company_map"), UserID: userID, CompanyID: c.ID})

	if replaceGoods {
		m.deleteGoods(c.ID)
		for _, name := range goods {
			m.goods = append(m.goods, models.GoodsAndService{ID: m.nextID("goods_and_services"), CompanyID: c.ID, Name: name})
		}
	}
	return nil
}

func (m *MemStore) deleteGoods(companyID int) {
	kept := m.goods[:0]
	for _, g := range m.goods {
		if g.CompanyID != companyID {
			kept = append(kept, g)
		}
	}
	m.goods = kept
}

func (m *MemStore) DeleteCompaniesForUser(ctx context.Context, userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteCompaniesForUser"); err != nil {
		return 0, err
	}
	var ids []int
	for _, l := range m.links {
		if l.UserID == userID {
			ids = append(ids, l.CompanyID)
		}
	}
	for _, id := range ids {
		m.deleteCompany(id)
	}
	return len(ids), nil
}

// deleteCompany повторяет ON DELETE CASCADE схемы
func (m *MemStore) deleteCompany(id int) {
	companies := m.companies[:0]
	for _, c := range m.companies {
		if c.ID != id {
			companies = append(companies, c)
		}
	}
	m.companies = companies

	links := m.links[:0]
	for _, l := range m.links {
		if l.CompanyID != id {
			links = append(links, l)
		}
	}
	m.links = links

	m.deleteGoods(id)

	removedTenders := map[int]bool{}
	tenders := m.tenders[:0]
	for _, t := range m.tenders {
		if t.CompanyID == id {
			removedTenders[t.ID] = true
			continue
		}
		tenders = append(tenders, t)
	}
	m.tenders = tenders

	apps := m.apps[:0]
	for _, a := range m.apps {
		if a.CompanyID == id || removedTenders[a.TenderID] {
			continue
		}
		apps = append(apps, a)
	}
	m.apps = apps
}

func (m *MemStore) SearchCompanies(ctx context.Context, f models.CompanyFilter) ([]models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SearchCompanies"); err != nil {
		return nil, err
	}

	result := []models.Company{}
	for _, c := range m.companies {
		if f.Name != "" && !containsFold(c.Name, f.Name) {
			continue
		}
		if f.Industry != "" && (c.Industry == nil || !containsFold(*c.Industry, f.Industry)) {
			continue
		}
		if f.Goods != "" && !m.hasGoods(c.ID, f.Goods) {
			continue
		}
		result = append(result, c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *MemStore) hasGoods(companyID int, sub string) bool {
	for _, g := range m.goods {
		if g.CompanyID == companyID && containsFold(g.Name, sub) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m *MemStore) CountTenders(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CountTenders"); err != nil {
		return 0, err
	}
	return len(m.tenders), nil
}

func (m *MemStore) ListTenders(ctx context.Context, limit, offset int) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListTenders"); err != nil {
		return nil, err
	}
	all := m.sortedTenders(func(models.Tender) bool { return true })
	if offset >= len(all) {
		return []models.Tender{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MemStore) ListCompanyTenders(ctx context.Context, companyID int) ([]models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListCompanyTenders"); err != nil {
		return nil, err
	}
	return m.sortedTenders(func(t models.Tender) bool { return t.CompanyID == companyID }), nil
}

// sortedTenders новые первыми
func (m *MemStore) sortedTenders(keep func(models.Tender) bool) []models.Tender {
	result := []models.Tender{}
	for _, t := range m.tenders {
		if keep(t) {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (m *MemStore) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetTender"); err != nil {
		return nil, err
	}
	if t := m.tender(id); t != nil {
		t := *t
		return &t, nil
	}
	return nil, db.ErrNotFound
}

func (m *MemStore) CreateTender(ctx context.Context, t *models.Tender) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateTender"); err != nil {
		return err
	}
	if m.company(t.CompanyID) == nil {
		return fmt.Errorf("%w: tenders_company_id_fkey", db.ErrForeignKey)
	}
	t.ID = m.nextID("tenders")
	t.CreatedAt = m.tick()
	m.tenders = append(m.tenders, *t)
	return nil
}

func (m *MemStore) UpdateOwnedTender(ctx context.Context, id, companyID int, f models.TenderFields) (*models.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateOwnedTender"); err != nil {
		return nil, err
	}
	if f.Empty() {
		return nil, fmt.Errorf("update tender: no fields")
	}
	t := m.tender(id)
	if t == nil || t.CompanyID != companyID {
		return nil, db.ErrNotFound
	}
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		d := *f.Description
		t.Description = &d
	}
	if f.Deadline != nil {
		d := *f.Deadline
		t.Deadline = &d
	} else if f.ClearDeadline {
		t.Deadline = nil
	}
	if f.Budget != nil {
		b := *f.Budget
		t.Budget = &b
	} else if f.ClearBudget {
		t.Budget = nil
	}
	updated := *t
	return &updated, nil
}

func (m *MemStore) DeleteOwnedTender(ctx context.Context, id, companyID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteOwnedTender"); err != nil {
		return err
	}
	t := m.tender(id)
	if t == nil || t.CompanyID != companyID {
		return db.ErrNotFound
	}
	tenders := m.tenders[:0]
	for _, t := range m.tenders {
		if t.ID != id {
			tenders = append(tenders, t)
		}
	}
	m.tenders = tenders
	apps := m.apps[:0]
	for _, a := range m.apps {
		if a.TenderID != id {
			apps = append(apps, a)
		}
	}
	m.apps = apps
	return nil
}

func (m *MemStore) ApplicationExists(ctx context.Context, tenderID, companyID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ApplicationExists"); err != nil {
		return false, err
	}
	if m.StaleExistsCheck {
		return false, nil
	}
	for _, a := range m.apps {
		if a.TenderID == tenderID && a.CompanyID == companyID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) CreateApplication(ctx context.Context, a *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateApplication"); err != nil {
		return err
	}
	if m.tender(a.TenderID) == nil {
		return fmt.Errorf("%w: applications_tender_id_fkey", db.ErrForeignKey)
	}
	if m.company(a.CompanyID) == nil {
		return fmt.Errorf("%w: applications_company_id_fkey", db.ErrForeignKey)
	}
	if m.UniqueApplications {
		for _, existing := range m.apps {
			if existing.TenderID == a.TenderID && existing.CompanyID == a.CompanyID {
				return fmt.Errorf("%w: applications_tender_company_key", db.ErrDuplicate)
			}
		}
	}
	a.ID = m.nextID("applications")
	a.CreatedAt = m.tick()
	m.apps = append(m.apps, *a)
	return nil
}

func (m *MemStore) ListTenderApplications(ctx context.Context, tenderID int) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListTenderApplications"); err != nil {
		return nil, err
	}
	result := []models.Application{}
	for i := len(m.apps) - 1; i >= 0; i-- {
		if m.apps[i].TenderID == tenderID {
			result = append(result, m.apps[i])
		}
	}
	return result, nil
}

func (m *MemStore) ListCompanyApplications(ctx context.Context, companyID int) ([]models.AppliedTender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListCompanyApplications"); err != nil {
		return nil, err
	}
	result := []models.AppliedTender{}
	for i := len(m.apps) - 1; i >= 0; i-- {
		a := m.apps[i]
		if a.CompanyID != companyID {
			continue
		}
		t := m.tender(a.TenderID)
		if t == nil {
			continue
		}
		result = append(result, models.AppliedTender{Application: a, TenderTitle: t.Title, TenderDeadline: t.Deadline})
	}
	return result, nil
}
