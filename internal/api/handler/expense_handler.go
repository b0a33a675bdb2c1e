package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"expense_manager/internal/api/middleware"
	"expense_manager/internal/app/service"
	"expense_manager/internal/common"

	"github.com/go-chi/chi/v5"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

func NewExpenseHandler(es *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: es}
}

// RegisterRoutes mounts the personal ledger routes on an already
// authenticated router. The /expenses subtree is users-only; analytics is
// open to any authenticated identity.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/expenses", func(userRouter chi.Router) {
		userRouter.Use(middleware.UsersOnly)
		userRouter.Get("/{date}", h.listExpenses)  // GET /api/v1/expenses/2024-01-05
		userRouter.Post("/{date}", h.saveExpenses) // POST /api/v1/expenses/2024-01-05
	})
	r.Post("/analytics", h.analytics)
}

func (h *ExpenseHandler) listExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	expenses, err := h.expenseService.ListForDate(r.Context(), user.ID, date)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) saveExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var inputs []service.ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.expenseService.ReplaceForDate(r.Context(), user.ID, date, inputs); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Expenses saved."})
}

type analyticsRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *ExpenseHandler) analytics(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req analyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	breakdown, err := h.expenseService.Analytics(r.Context(), user.ID, startDate, endDate)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, breakdown)
}

// parseDate validates and normalizes a YYYY-MM-DD calendar date.
func parseDate(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}
