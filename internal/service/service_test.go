package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tenders/db/dbtest"
	"tenders/internal/auth"
	"tenders/internal/logger"
	"tenders/internal/service"
)

// fakeLogos хранилище логотипов в памяти
type fakeLogos struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newFakeLogos() *fakeLogos {
	return &fakeLogos{objects: map[string][]byte{}}
}

func (f *fakeLogos) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeLogos) PublicURL(key string) string {
	return "https://storage.test/storage/v1/object/public/company-logos/" + key
}

type fixture struct {
	store  *dbtest.MemStore
	logos  *fakeLogos
	tokens *auth.TokenManager
	svc    *service.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := dbtest.NewMemStore()
	logos := newFakeLogos()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return &fixture{
		store:  store,
		logos:  logos,
		tokens: tokens,
		svc: service.New(service.Deps{
			Store:  store,
			Logos:  logos,
			Hasher: auth.NewBcryptHasher(bcrypt.MinCost),
			Tokens: tokens,
			Logger: logger.Nop(),
		}),
	}
}

// signup регистрирует пользователя и возвращает его id
func (f *fixture) signup(t *testing.T, email string) int {
	t.Helper()
	res, err := f.svc.Accounts.Signup(context.Background(), email, "secret1")
	require.NoError(t, err)
	return res.User.ID
}

// company регистрирует пользователя с компанией, возвращает id пользователя и компании
func (f *fixture) company(t *testing.T, email, name string) (int, int) {
	t.Helper()
	userID := f.signup(t, email)
	view, err := f.svc.Companies.Save(context.Background(), userID, service.CompanyInput{Name: name})
	require.NoError(t, err)
	return userID, view.ID
}

func strPtr(s string) *string { return &s }
