package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/budget_engine/internal/adapters/events"
	"github.com/SscSPs/budget_engine/internal/adapters/ratesapi"
	portsrepo "github.com/SscSPs/budget_engine/internal/core/ports/repositories"
	"github.com/SscSPs/budget_engine/internal/core/services"
	"github.com/SscSPs/budget_engine/internal/handlers"
	"github.com/SscSPs/budget_engine/internal/middleware"
	"github.com/SscSPs/budget_engine/internal/platform/config"
	"github.com/SscSPs/budget_engine/internal/platform/secrets"
	"github.com/SscSPs/budget_engine/internal/platform/serial"
	"github.com/SscSPs/budget_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/budget_engine/internal/repositories/database/sqlite"
	"github.com/SscSPs/budget_engine/internal/utils"
	"github.com/SscSPs/budget_engine/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// @title Budget Engine API
// @version 1.0
// @description Multi-currency monthly budgeting: exchange rates, conversion and budget propagation.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Running database migrations...")
	changed, err := pgsql.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if changed {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	var vault portsrepo.SecretRepository
	if secretRepo, err := openVault(cfg); err != nil {
		logger.Warn("Credential vault unavailable, falling back to bundled configuration only", slog.String("error", err.Error()))
	} else {
		defer secretRepo.Close()
		vault = secretRepo
	}

	hub := events.NewWebsocketHub(logger)
	defer hub.Close()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	publisher := events.FanOut{hub, events.NewAnalyticsPublisher(posthogClient)}
	if amqpPublisher := openAMQP(cfg, logger); amqpPublisher != nil {
		defer amqpPublisher.Close()
		publisher = append(publisher, amqpPublisher)
	}

	ledger := serial.NewExecutor()
	defer ledger.Close()

	repos := pgsql.NewRepositoryProvider(dbPool, vault)
	provider := ratesapi.NewClient(cfg.RatesLatestURL, cfg.RatesHistoricalURL, cfg.RatesHTTPTimeout)
	svc := services.NewServiceContainer(cfg, repos, provider, publisher, ledger)

	router, err := newRouter(cfg, logger, posthogClient)
	if err != nil {
		return err
	}
	handlers.RegisterRoutes(router, cfg, svc, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		jobCtx := middleware.WithLogger(gctx, logger.With(slog.String("job", "rates")))
		if err := svc.Fetcher.Start(jobCtx); err != nil {
			logger.Error("Initial rate refresh failed", slog.String("error", err.Error()))
		}
		if err := svc.Fetcher.Run(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}

func newRouter(cfg *config.Config, logger *slog.Logger, posthogClient *utils.PosthogClientWrapper) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	r.Use(middleware.RateLimit(limiter))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	return r, nil
}

func openVault(cfg *config.Config) (*sqlite.SecretRepository, error) {
	sealer, err := secrets.NewSealer(cfg.SecretsKey)
	if err != nil {
		return nil, err
	}
	return sqlite.NewSecretRepository(cfg.SecretsDBPath, sealer)
}

// openAMQP returns nil when no broker is configured or it cannot be reached.
func openAMQP(cfg *config.Config, logger *slog.Logger) *events.AMQPPublisher {
	if cfg.AMQPURL == "" {
		return nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP publisher unavailable, events stay local", slog.String("error", err.Error()))
		return nil
	}
	return p
}
