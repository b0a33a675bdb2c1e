package api

import (
	"net/http"
	"time"

	"expense_manager/internal/api/handler"
	"expense_manager/internal/api/middleware"
	"expense_manager/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	authService *service.AuthService,
	expenseService *service.ExpenseService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authMw := middleware.NewAuth(authService)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Everything else carries a bearer token
		v1.Group(func(private chi.Router) {
			private.Use(authMw.Authenticator)

			// Personal ledger + analytics
			expenseHandler := handler.NewExpenseHandler(expenseService)
			expenseHandler.RegisterRoutes(private)

			// Admin routes
			adminHandler := handler.NewAdminHandler(authService, expenseService)
			private.Route("/admin", func(adminRouter chi.Router) {
				adminRouter.Use(middleware.AdminOnly)
				adminHandler.RegisterRoutes(adminRouter)
			})
		})
	})

	return r
}
