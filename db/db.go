package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tenders/models"
)

// Storage доступ к Postgres. Один экземпляр на процесс, создается в main и
// передается явно.
type Storage struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// NewStorage создает Storage. queryTimeout <= 0 отключает собственный таймаут
// запросов, тогда действует только дедлайн контекста запроса.
func NewStorage(db *sqlx.DB, queryTimeout time.Duration) *Storage {
	return &Storage{db: db, queryTimeout: queryTimeout}
}

// Connect открывает пул соединений с ограничениями из конфигурации
func Connect(ctx context.Context, dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(maxLifetime)
	return conn, nil
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// inTx выполняет fn в транзакции, откатывая ее при ошибке
func (s *Storage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// User (Пользователь)

func (s *Storage) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u := &models.User{Email: email, PasswordHash: passwordHash}
	query := `
        INSERT INTO users (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at`
	err := s.db.QueryRowxContext(ctx, query, email, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u := &models.User{}
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	if err := s.db.GetContext(ctx, u, query, email); err != nil {
		return nil, classify(err)
	}
	return u, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u := &models.User{}
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	if err := s.db.GetContext(ctx, u, query, id); err != nil {
		return nil, classify(err)
	}
	return u, nil
}
