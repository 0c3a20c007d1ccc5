package handlers

import (
	"net/http"
	"strings"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupHandler обрабатывает POST /api/auth/signup
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.Accounts.Signup(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, res)
}

// LoginHandler обрабатывает POST /api/auth/login
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.Accounts.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
