package testutils

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tenders/internal/handlers"
)

// WithChiURLParams подставляет параметры пути в контекст chi запроса для тестов.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for k, v := range params {
		chiCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// WithUser помечает запрос как аутентифицированный, минуя RequireAuth
func WithUser(req *http.Request, userID int) *http.Request {
	return req.WithContext(handlers.WithUserID(req.Context(), userID))
}

// Bearer выставляет заголовок Authorization
func Bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
