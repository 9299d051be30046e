package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/makosai/backend/internal/api"
	"github.com/makosai/backend/internal/auth"
	"github.com/makosai/backend/internal/billing"
	"github.com/makosai/backend/internal/config"
	"github.com/makosai/backend/internal/credits"
	"github.com/makosai/backend/internal/db"
	"github.com/makosai/backend/internal/email"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/user"
	"github.com/makosai/backend/internal/worksheet"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("no .env file found, using environment")
	}

	cfg := config.GetConfig()
	ctx := context.Background()

	database := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer database.Close()

	billingClient := billing.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	mailer := email.NewResendClient(cfg.ResendAPIKey, cfg.ResendFromEmail)

	userRepo := user.NewUserRepository(database)
	creditsRepo := credits.NewCreditsRepository(database)
	worksheetRepo := worksheet.NewWorksheetRepository(database)

	creditsService := credits.NewService(creditsRepo)
	userService := user.NewUserService(userRepo, billingClient, mailer)

	generator, err := worksheet.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Log.Error("failed to create worksheet generator", "error", err)
		os.Exit(1)
	}
	worksheetService := worksheet.NewService(generator, worksheetRepo, creditsService)

	auth.Configure()
	jwtVerifier, err := auth.NewJWTVerifier(cfg.WorkOSClientID)
	if err != nil {
		logger.Log.Error("failed to create JWT verifier", "error", err)
		os.Exit(1)
	}
	defer jwtVerifier.Close()

	handlers := api.Handlers{
		Worksheets:    api.NewWorksheetHandler(worksheetService),
		Credits:       api.NewCreditsHandler(creditsService),
		Checkout:      api.NewCheckoutHandler(billingClient, creditsService, userRepo),
		ResendWebhook: api.NewResendWebhookHandler(cfg.ResendWebhookSecret),
	}
	router := api.SetupRoutes(handlers, auth.NewMiddleware(jwtVerifier), userService, cfg.FE_BASE_URL)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("server shutdown error", "error", err)
		}
	}()

	logger.Log.Info("server starting", "addr", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Error("server failed to start", "error", err)
		os.Exit(1)
	}

	logger.Log.Info("server stopped")
}
