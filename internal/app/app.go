package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"linksdash/internal/config"
	"linksdash/internal/db"
	"linksdash/internal/diag"
	"linksdash/internal/links"
	"linksdash/internal/server"
	"linksdash/internal/users"
)

// App holds the application dependencies and configuration.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DBPool *pgxpool.Pool
	Server *server.Server
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application", "env", cfg.App.Environment)

	logger.Info("connecting to database")
	dbPool, err := db.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	// Setup application dependencies
	linkRepo := links.NewRepository(dbPool, nil)
	linkSvc := links.NewService(linkRepo)
	linkHandler := links.NewHandler(links.HandlerConfig{
		Service: linkSvc,
		Logger:  logger,
	})

	userRepo := users.NewRepository(dbPool, nil)
	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(users.HandlerConfig{
		Service: userSvc,
		Logger:  logger,
	})

	diagHandler := diag.NewHandler(diag.HandlerConfig{
		Store:          dbPool,
		DatabaseName:   dbPool.Config().ConnConfig.Database,
		DatabaseURLSet: os.Getenv("DATABASE_URL") != "",
		Logger:         logger,
	})

	srv := server.New(cfg, logger, server.Handlers{
		Links: linkHandler,
		Users: userHandler,
		Diag:  diagHandler,
	})

	logger.Info("application initialized", "port", cfg.Server.Port)

	return &App{
		Config: cfg,
		Logger: logger,
		DBPool: dbPool,
		Server: srv,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting", "port", a.Config.Server.Port)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "" || env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
