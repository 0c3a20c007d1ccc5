package handlers

import (
	"net/http"

	"tenders/internal/service"
)

type companyRequest struct {
	Name        string  `json:"name"`
	Industry    *string `json:"industry"`
	Description *string `json:"description"`
	// nil, если поле не передано или null; [] очищает список
	GoodsAndServices []string `json:"goods_and_services"`
}

type logoRequest struct {
	Image string `json:"image"`
}

type logoResponse struct {
	LogoURL string `json:"logo_url"`
}

// GetMyCompanyHandler обрабатывает GET /api/companies/me
func (h *Handler) GetMyCompanyHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.Companies.GetMine(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// GetCompanyHandler обрабатывает GET /api/companies/{id}
func (h *Handler) GetCompanyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Invalid company id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.Companies.GetPublic(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// GetCompanyByUserHandler обрабатывает GET /api/companies/by-user/{userId}
func (h *Handler) GetCompanyByUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId", "Invalid user id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.Companies.GetByUserID(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// SaveCompanyHandler обрабатывает POST /api/companies
func (h *Handler) SaveCompanyHandler(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := h.decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	view, err := h.Companies.Save(r.Context(), UserIDFromContext(r.Context()), service.CompanyInput{
		Name:             req.Name,
		Industry:         req.Industry,
		Description:      req.Description,
		GoodsAndServices: req.GoodsAndServices,
		GoodsProvided:    req.GoodsAndServices != nil,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// DeleteCompanyHandler обрабатывает DELETE /api/companies/{id}.
// Удаляются все компании пользователя, id из пути не используется.
func (h *Handler) DeleteCompanyHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Companies.Delete(r.Context(), UserIDFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Company deleted"})
}

// UploadLogoHandler обрабатывает POST /api/companies/{id}/logo
func (h *Handler) UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	var req logoRequest
	if err := h.decodeJSON(w, r, maxLogoBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	url, err := h.Companies.UploadLogo(r.Context(), UserIDFromContext(r.Context()), req.Image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, logoResponse{LogoURL: url})
}
