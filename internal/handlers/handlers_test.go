package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tenders/db/dbtest"
	"tenders/internal/auth"
	"tenders/internal/handlers"
	"tenders/internal/handlers/testutils"
	"tenders/internal/logger"
	"tenders/internal/metrics"
	"tenders/internal/service"
)

type memLogos struct {
	objects map[string][]byte
}

func (m *memLogos) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	m.objects[key] = data
	return nil
}

func (m *memLogos) PublicURL(key string) string {
	return "https://storage.test/storage/v1/object/public/company-logos/" + key
}

type testEnv struct {
	store   *dbtest.MemStore
	logos   *memLogos
	svc     *service.Services
	handler *handlers.Handler
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := dbtest.NewMemStore()
	logos := &memLogos{objects: map[string][]byte{}}
	m := metrics.New()
	svc := service.New(service.Deps{
		Store:   store,
		Logos:   logos,
		Hasher:  auth.NewBcryptHasher(bcrypt.MinCost),
		Tokens:  auth.NewTokenManager("test-secret", time.Hour),
		Logger:  logger.Nop(),
		Metrics: m,
	})
	h := handlers.NewHandler(svc, logger.Nop(), "http://localhost:4000/api")
	return &testEnv{
		store:   store,
		logos:   logos,
		svc:     svc,
		handler: h,
		router: handlers.NewRouter(h, handlers.RouterConfig{
			CORSOrigins: []string{"http://app.test"},
			Metrics:     m,
		}),
	}
}

// do отправляет запрос через роутер
func (e *testEnv) do(t *testing.T, method, path, body, token string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		testutils.Bearer(req, token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(raw)
}

// signup регистрирует пользователя через API и возвращает id и токен
func (e *testEnv) signup(t *testing.T, email string) (int, string) {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/signup", `{"email":"`+email+`","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, status, body)

	var res struct {
		User struct {
			ID int `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	return res.User.ID, res.Token
}

func decode(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), body)
}

func errorMessage(t *testing.T, body string) string {
	t.Helper()
	var res struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	decode(t, body, &res)
	require.NotEmpty(t, res.Code)
	return res.Message
}
