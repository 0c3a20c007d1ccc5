package models

import "time"

// Сущность Пользователя. Хеш пароля никогда не уходит в JSON.
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicUser публичная проекция пользователя
type PublicUser struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public возвращает проекцию без хеша
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Сущность Компании
type Company struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Industry    *string   `db:"industry" json:"industry"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CompanyView компания вместе с товарами/услугами и ссылкой на логотип.
// LogoURL пустой в проекциях без логотипа (поиск по пользователю).
type CompanyView struct {
	Company
	GoodsAndServices []string `json:"goods_and_services"`
	LogoURL          string   `json:"logo_url,omitempty"`
}

// Связь пользователя и компании
type UserCompanyMap struct {
	ID        int `db:"id" json:"id"`
	UserID    int `db:"user_id" json:"user_id"`
	CompanyID int `db:"company_id" json:"company_id"`
}

// Товар или услуга компании
type GoodsAndService struct {
	ID        int    `db:"id" json:"id"`
	CompanyID int    `db:"company_id" json:"company_id"`
	Name      string `db:"name" json:"name"`
}

// Сущность Тендера
type Tender struct {
	ID          int        `db:"id" json:"id"`
	CompanyID   int        `db:"company_id" json:"company_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Deadline    *time.Time `db:"deadline" json:"deadline"`
	Budget      *string    `db:"budget" json:"budget"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// TenderFields поля тендера для создания и частичного обновления.
// nil означает "не передано"; Clear* сбрасывает поле в NULL.
type TenderFields struct {
	Title         *string
	Description   *string
	Deadline      *time.Time
	Budget        *string
	ClearDeadline bool
	ClearBudget   bool
}

// Empty сообщает, что ни одно поле не передано
func (f TenderFields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Deadline == nil && f.Budget == nil &&
		!f.ClearDeadline && !f.ClearBudget
}

// Сущность Заявки (предложения) на тендер
type Application struct {
	ID        int       `db:"id" json:"id"`
	TenderID  int       `db:"tender_id" json:"tender_id"`
	CompanyID int       `db:"company_id" json:"company_id"`
	Proposal  *string   `db:"proposal" json:"proposal"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AppliedTender заявка вместе с названием и сроком тендера
type AppliedTender struct {
	Application
	TenderTitle    string     `db:"tender_title" json:"tender_title"`
	TenderDeadline *time.Time `db:"tender_deadline" json:"tender_deadline"`
}

// CompanyFilter фильтры поиска компаний, пустая строка = фильтр не задан
type CompanyFilter struct {
	Name     string
	Industry string
	Goods    string
}
