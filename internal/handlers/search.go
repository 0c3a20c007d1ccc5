package handlers

import (
	"net/http"

	"tenders/models"
)

// SearchCompaniesHandler обрабатывает GET /api/search/companies?name&industry&goods
func (h *Handler) SearchCompaniesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companies, err := h.Search.Companies(r.Context(), models.CompanyFilter{
		Name:     q.Get("name"),
		Industry: q.Get("industry"),
		Goods:    q.Get("goods"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, companies)
}
