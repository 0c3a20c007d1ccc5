package handlers

import (
	"net/http"

	"tenders/internal/apperr"
)

type applicationRequest struct {
	TenderID int     `json:"tender_id"`
	Proposal *string `json:"proposal"`
}

// SubmitApplicationHandler обрабатывает POST /api/applications
func (h *Handler) SubmitApplicationHandler(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := h.decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.TenderID <= 0 {
		h.writeError(w, r, apperr.Validation("tender_id is required"))
		return
	}

	app, err := h.Applications.Submit(r.Context(), UserIDFromContext(r.Context()), req.TenderID, req.Proposal)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, app)
}

// GetTenderApplicationsHandler обрабатывает GET /api/applications/tender/{tenderId}
func (h *Handler) GetTenderApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := pathID(r, "tenderId", "Invalid tender id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	apps, err := h.Applications.ListForTender(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, apps)
}

// GetCompanyApplicationsHandler обрабатывает GET /api/applications/company/{companyId}
func (h *Handler) GetCompanyApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyId", "Invalid company id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	apps, err := h.Applications.ListForCompany(r.Context(), companyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, apps)
}
