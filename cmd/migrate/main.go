package main

import (
	"context"
	"log"
	"os"
	"time"

	"quotefill/internal/logger"
	"quotefill/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate <database_url> (or set DATABASE_URL)")
	}

	zlog := logger.Must(os.Getenv("APP_ENV"))
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	runner := migration.NewRunner(zlog)
	if err := runner.Run(ctx, db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}
	zlog.Info("migration complete", zap.String("version", runner.Version()))
}
