package handlers

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tenders/internal/metrics"
)

const requestTimeout = 30 * time.Second

// RouterConfig необязательные части маршрутизатора; nil отключает соответствующий слой
type RouterConfig struct {
	CORSOrigins []string
	AuthLimiter *RateLimiter
	Metrics     *metrics.Metrics
	// сети прокси, которым разрешено передавать адрес клиента в X-Forwarded-For
	TrustedProxies []netip.Prefix
}

// NewRouter собирает chi-роутер со всеми маршрутами API под /api
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RealIP(cfg.TrustedProxies))
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/", h.IndexHandler)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// аутентификация
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Handler)
			}
			r.Post("/signup", h.SignupHandler)
			r.Post("/login", h.LoginHandler)
		})

		// компании
		r.Route("/companies", func(r chi.Router) {
			r.Get("/by-user/{userId}", h.GetCompanyByUserHandler)
			r.Get("/{id}", h.GetCompanyHandler)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)
				r.Get("/me", h.GetMyCompanyHandler)
				r.Post("/", h.SaveCompanyHandler)
				r.Delete("/{id}", h.DeleteCompanyHandler)
				r.Post("/{id}/logo", h.UploadLogoHandler)
			})
		})

		// тендеры
		r.Route("/tenders", func(r chi.Router) {
			r.Get("/", h.GetTendersHandler)
			r.Get("/{id}", h.GetTenderHandler)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)
				r.Get("/company/{companyId}", h.GetCompanyTendersHandler)
				r.Post("/", h.CreateTenderHandler)
				r.Put("/{id}", h.UpdateTenderHandler)
				r.Delete("/{id}", h.DeleteTenderHandler)
			})
		})

		// заявки
		r.Route("/applications", func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Post("/", h.SubmitApplicationHandler)
			r.Get("/tender/{tenderId}", h.GetTenderApplicationsHandler)
			r.Get("/company/{companyId}", h.GetCompanyApplicationsHandler)
		})

		r.Get("/search/companies", h.SearchCompaniesHandler)
	})

	return r
}
