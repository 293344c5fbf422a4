package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kendinapp/kendin-backend/internal/api"
	"github.com/kendinapp/kendin-backend/internal/config"
	"github.com/kendinapp/kendin-backend/internal/db"
	"github.com/kendinapp/kendin-backend/internal/identity"
	"github.com/kendinapp/kendin-backend/internal/logger"
	"github.com/kendinapp/kendin-backend/internal/migration"
	"github.com/kendinapp/kendin-backend/internal/openai"
	"github.com/kendinapp/kendin-backend/internal/ratelimit"
	"github.com/kendinapp/kendin-backend/internal/reflection"
)

var version string

func main() {
	// Local development reads .env; in production the file is absent.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to read .env", "error", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(os.Args[2:])
		return
	}

	// Configured via OTEL_SERVICE_NAME, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_HEADERS
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		// Non-fatal: continue without tracing if OTEL env vars not set
		logger.Warn("failed to configure OpenTelemetry", "error", err)
	} else {
		defer otelShutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	// Migrations are applied separately with `server migrate up`
	database, err := db.ConnectWithRetry(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	llm := openai.NewClient(cfg.OpenAI.APIKey,
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithTimeout(cfg.OpenAI.Timeout),
	)
	generator := reflection.NewGenerator(database, llm, reflection.Config{
		Model:    cfg.OpenAI.Model,
		Location: cfg.Reflection.Location(),
	})

	verifier := identity.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, 10*time.Second)
	migrator := migration.NewMigrator(database, verifier)

	limiter := ratelimit.NewInMemory(cfg.Reflection.RateLimitRPS, cfg.Reflection.RateLimitBurst)
	go limiter.Run(ctx, 5*time.Minute)

	server := api.NewServer(api.Deps{
		DB:                database,
		Generator:         generator,
		Migrator:          migrator,
		ReflectionLimiter: limiter,
		MaxBodyBytes:      cfg.MaxBodyBytes,
	})
	handler := otelhttp.NewHandler(server.SetupRoutes(), "kendin-backend")

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "version", version, "model", cfg.OpenAI.Model)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// runMigrate applies ("up", the default) or rolls back ("down") the embedded
// schema migrations. Only DATABASE_URL is required.
func runMigrate(args []string) {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	database, err := db.Connect(dsn)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	switch direction {
	case "up":
		err = db.RunMigrations(database.Conn())
	case "down":
		err = db.RollbackMigrations(database.Conn())
	default:
		logger.Fatal("unknown migrate direction", "direction", direction)
	}
	if err != nil {
		logger.Fatal("migration failed", "direction", direction, "error", err)
	}
	logger.Info("migrations applied", "direction", direction)
}
