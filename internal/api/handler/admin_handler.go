package handler

import (
	"encoding/json"
	"net/http"

	"expense_manager/internal/app/service"
	"expense_manager/internal/common"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	authService    *service.AuthService
	expenseService *service.ExpenseService
}

func NewAdminHandler(as *service.AuthService, es *service.ExpenseService) *AdminHandler {
	return &AdminHandler{authService: as, expenseService: es}
}

// RegisterRoutes mounts the admin routes; the router wraps them in the
// AdminOnly middleware.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.createUser)
	r.Get("/users", h.listUsers)
	r.Get("/users/{username}/expenses/{date}", h.userExpenses)
}

func (h *AdminHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.CreateUser(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	usernames, err := h.authService.ListUsers(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, usernames)
}

func (h *AdminHandler) userExpenses(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	expenses, err := h.expenseService.ListForUser(r.Context(), username, date)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, expenses)
}
