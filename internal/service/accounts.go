package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"tenders/db"
	"tenders/internal/apperr"
	"tenders/internal/auth"
	"tenders/internal/logger"
	"tenders/internal/metrics"
	"tenders/models"
)

const (
	minPasswordLength = 6
	// bcrypt не принимает пароли длиннее 72 байт
	maxPasswordBytes = 72
	maxEmailLength   = 255
)

// AuthResult ответ signup/login
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type AccountService struct {
	store   Store
	hasher  auth.Hasher
	tokens  auth.TokenIssuer
	log     logger.Logger
	metrics *metrics.Metrics

	// хеш для сравнения, когда пользователь не найден: время ответа не
	// должно выдавать существование email
	dummyHash string
}

func NewAccountService(store Store, hasher auth.Hasher, tokens auth.TokenIssuer, log logger.Logger, m *metrics.Metrics) *AccountService {
	dummy, _ := hasher.Hash("dummy-password-for-timing")
	return &AccountService{store: store, hasher: hasher, tokens: tokens, log: log, metrics: m, dummyHash: dummy}
}

func (s *AccountService) Signup(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return nil, apperr.Validation("Password must be at most 72 bytes")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Upstream("Failed to create user", err)
	}
	user, err := s.store.CreateUser(ctx, email, hash)
	if errors.Is(err, db.ErrDuplicate) {
		return nil, apperr.ErrEmailTaken
	}
	if err != nil {
		return nil, writeFailure("Failed to create user", err)
	}

	s.metrics.Event(metrics.EventSignup)
	s.log.Info("user signed up", logger.Int("user_id", user.ID))
	return s.issue(user)
}

// Login не различает "нет такого email" и "неверный пароль"
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperr.Validation("Password is required")
	}
	if len(password) > maxPasswordBytes {
		// такой пароль не мог быть сохранен; ответ как при неверном пароле
		s.hasher.Check(password[:maxPasswordBytes], s.dummyHash)
		s.metrics.Event(metrics.EventLoginFailed)
		return nil, apperr.ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		s.hasher.Check(password, s.dummyHash)
		s.metrics.Event(metrics.EventLoginFailed)
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Upstream("Failed to load user", err)
	}
	if !s.hasher.Check(password, user.PasswordHash) {
		s.metrics.Event(metrics.EventLoginFailed)
		return nil, apperr.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Authenticate проверяет токен и что пользователь из токена все еще существует
func (s *AccountService) Authenticate(ctx context.Context, token string) (int, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return 0, apperr.ErrInvalidToken
	}
	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return 0, apperr.ErrInvalidToken
	}
	if err != nil {
		return 0, apperr.Upstream("Failed to load user", err)
	}
	return user.ID, nil
}

func (s *AccountService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Upstream("Failed to issue token", err)
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("Email is required")
	}
	if len(email) > maxEmailLength {
		return apperr.Validation("Email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation("Invalid email")
	}
	return nil
}
