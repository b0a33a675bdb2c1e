package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expense_manager/internal/api"
	"expense_manager/internal/app/service"
	"expense_manager/internal/common/security"
	"expense_manager/internal/domain/repository"
	"expense_manager/internal/platform/config"
	"expense_manager/internal/platform/database"
	"expense_manager/internal/platform/lock"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize Database
	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	if err := database.Bootstrap(context.Background(), db); err != nil {
		log.Fatalf("Could not bootstrap schema: %v", err)
	}
	log.Println("Database connected.")

	// 3. Initialize Redis (replace-lock backend)
	rdb, err := lock.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected.")

	// 4. Initialize Token Issuer
	issuer := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	expenseRepo := repository.NewPgExpenseRepository(db)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, issuer)
	replaceMutex := lock.NewMutex(rdb, cfg.ReplaceLockTTL)
	expenseService := service.NewExpenseService(expenseRepo, userRepo, replaceMutex)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, expenseService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
