package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tenders/internal/service"
)

type PaginationParams struct {
	Page  int
	Limit int
}

// parsePaginationParams парсит page и limit из query. Некорректные значения
// заменяются дефолтами, limit ограничен сверху.
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Page: 1, Limit: service.DefaultPageLimit}

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		params.Page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		params.Limit = l
		if l > service.MaxPageLimit {
			params.Limit = service.MaxPageLimit
		}
	}
	return params
}

// numberString число, пришедшее как JSON-число или строка ("1500.50")
type numberString string

func (n *numberString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = numberString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return errors.New("budget must be a number")
	}
	*n = numberString(num)
	return nil
}

type tenderRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Deadline    *string       `json:"deadline"`
	Budget      *numberString `json:"budget"`
}

func (req tenderRequest) input() service.TenderInput {
	in := service.TenderInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	}
	if req.Budget != nil {
		b := string(*req.Budget)
		in.Budget = &b
	}
	return in
}

// GetTendersHandler обрабатывает GET /api/tenders?page&limit
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	page, err := h.Tenders.List(r.Context(), params.Page, params.Limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

// GetCompanyTendersHandler обрабатывает GET /api/tenders/company/{companyId}
func (h *Handler) GetCompanyTendersHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyId", "Invalid company id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tenders, err := h.Tenders.ListForCompany(r.Context(), companyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tenders)
}

// GetTenderHandler обрабатывает GET /api/tenders/{id}
func (h *Handler) GetTenderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Invalid tender id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tender, err := h.Tenders.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

// CreateTenderHandler обрабатывает POST /api/tenders
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	var req tenderRequest
	if err := h.decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	tender, err := h.Tenders.Create(r.Context(), UserIDFromContext(r.Context()), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tender)
}

// UpdateTenderHandler обрабатывает PUT /api/tenders/{id}
func (h *Handler) UpdateTenderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Invalid tender id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req tenderRequest
	if err := h.decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	tender, err := h.Tenders.Update(r.Context(), UserIDFromContext(r.Context()), id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

// DeleteTenderHandler обрабатывает DELETE /api/tenders/{id}
func (h *Handler) DeleteTenderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Invalid tender id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Tenders.Delete(r.Context(), UserIDFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Tender deleted"})
}
