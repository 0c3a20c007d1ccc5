package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tenders/internal/apperr"
	"tenders/internal/logger"
	"tenders/internal/service"
)

const (
	maxBodyBytes     = 1 << 20
	maxLogoBodyBytes = 8 << 20
)

// Handler оборачивает доменные сервисы для HTTP
type Handler struct {
	Accounts     AccountService
	Companies    CompanyService
	Tenders      TenderService
	Applications ApplicationService
	Search       SearchService

	Log          logger.Logger
	PublicAPIURL string
}

// NewHandler создает новый Handler
func NewHandler(s *service.Services, log logger.Logger, publicAPIURL string) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Accounts:     s.Accounts,
		Companies:    s.Companies,
		Tenders:      s.Tenders,
		Applications: s.Applications,
		Search:       s.Search,
		Log:          log,
		PublicAPIURL: publicAPIURL,
	}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// IndexHandler баннер сервиса на GET /
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Kibou B2B Tender Management API",
		"api_url": h.PublicAPIURL,
	})
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("failed to encode response", logger.Error(err))
	}
}

// writeError отдает ошибку в виде {"message","code"}. Причина 5xx пишется
// в лог и клиенту не уходит.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", requestID(r)),
			logger.Error(err),
		)
	}
	h.writeJSON(w, status, errorResponse{Message: appErr.Message, Code: string(appErr.Code)})
}

// decodeJSON читает тело запроса с ограничением размера
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Validation("Failed to read request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("Invalid JSON format")
	}
	return nil
}

// pathID читает положительный целый параметр пути
func pathID(r *http.Request, name, message string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation(message)
	}
	return id, nil
}
