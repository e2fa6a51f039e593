package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quotefill/adapters/excel"
	"quotefill/adapters/postgres"
	"quotefill/app"
	"quotefill/internal/config"
	"quotefill/internal/errors"
	"quotefill/internal/layout"
	"quotefill/internal/logger"
	"quotefill/internal/migration"
	"quotefill/ports"
	"quotefill/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// initDatabase connects to the fill ledger and applies migrations
func initDatabase(ctx context.Context, appConfig *config.Config, zlog *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.DatabaseError("failed to ping database", err)
	}

	migrator := migration.NewRunner(zlog)
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(appConfig.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	templateLayout, err := layout.Load(appConfig.Paths.LayoutFile)
	if err != nil {
		zlog.Fatal("failed to load template layout", zap.Error(err))
	}
	zlog.Info("template layout loaded",
		zap.String("layout", templateLayout.Name),
		zap.Int("sheet_index", templateLayout.SheetIndex),
		zap.Int("header_row", templateLayout.HeaderRow),
		zap.Int("first_data_row", templateLayout.FirstDataRow))

	var runs ports.FillRunRepository
	if appConfig.Database.Enabled() {
		db, err := initDatabase(ctx, appConfig, zlog)
		if err != nil {
			zlog.Fatal("failed to initialize database", zap.Error(err))
		}
		defer db.Close()
		runs = postgres.NewFillRunRepository(db)
	} else {
		zlog.Info("DATABASE_URL not set, fill ledger disabled")
	}

	gin.SetMode(appConfig.Server.GinMode)

	opener := excel.NewOpener()
	fillService := app.NewFillService(opener, runs, app.FillServiceConfig{
		Layout:      templateLayout,
		DownloadDir: appConfig.Paths.DownloadDir,
		Concurrency: appConfig.Fill.Concurrency,
	}, zlog.Named("fill"))

	server := ui.NewServer(ui.Services{
		Fill:  fillService,
		Quote: app.NewQuoteService(excel.NewQuoteWriter(), zlog.Named("quote")),
		Edit:  app.NewEditService(opener, zlog.Named("edit")),
	}, appConfig.Server.MaxUploadBytes, zlog.Named("http"))

	zlog.Info("starting quotefill",
		zap.String("env", appConfig.Env),
		zap.String("port", appConfig.Server.Port),
		zap.String("download_dir", appConfig.Paths.DownloadDir),
		zap.Bool("ledger", runs != nil))

	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
