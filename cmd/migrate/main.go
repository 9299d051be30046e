package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/makosai/backend/internal/config"
	"github.com/makosai/backend/internal/credits"
	"github.com/makosai/backend/internal/db"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/user"
	"github.com/makosai/backend/internal/worksheet"
)

// Creates all tables and indexes if they do not exist yet. Safe to re-run.
func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("no .env file found, using environment")
	}

	cfg := config.GetConfig()
	ctx := context.Background()

	database := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer database.Close()

	repos := []struct {
		name string
		init func(context.Context) error
	}{
		{"users", user.NewUserRepository(database).InitializeDatabase},
		{"credits", credits.NewCreditsRepository(database).InitializeDatabase},
		{"worksheets", worksheet.NewWorksheetRepository(database).InitializeDatabase},
	}

	for _, r := range repos {
		if err := r.init(ctx); err != nil {
			logger.Log.Error("migration failed", "schema", r.name, "error", err)
			os.Exit(1)
		}
		logger.Log.Info("schema ready", "schema", r.name)
	}
}
