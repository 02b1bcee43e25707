package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/mandibooks/mandibooks/internal/app"
	"github.com/mandibooks/mandibooks/internal/billing"
	"github.com/mandibooks/mandibooks/internal/catalog"
	"github.com/mandibooks/mandibooks/internal/docstore"
	"github.com/mandibooks/mandibooks/internal/ledger"
	"github.com/mandibooks/mandibooks/internal/observability"
	"github.com/mandibooks/mandibooks/internal/platform/cache"
	"github.com/mandibooks/mandibooks/internal/platform/db"
	"github.com/mandibooks/mandibooks/internal/shared"
	"github.com/mandibooks/mandibooks/internal/stock"
	"github.com/mandibooks/mandibooks/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	store := docstore.NewPostgresStore(dbpool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Redis being down degrades caching to pass-through, it never blocks
	// startup.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(store)
	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(store)
	catalogService := catalog.NewService(catalogRepo, auditLogger)

	engine := stock.NewEngine(store, logger, metrics, auditLogger, stock.EngineConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	if err := engine.EnsureBardana(ctx); err != nil {
		logger.Error("ensure universal item", slog.Any("error", err))
		os.Exit(1)
	}

	ledgerRepo := ledger.NewRepository(store)
	ledgerCache := ledger.NewCache(redisClient, cfg.LedgerCacheTTL)
	ledgerService := ledger.NewService(ledgerRepo, ledgerCache)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	billingRepo := billing.NewRepository(store)
	billingService := billing.NewService(billingRepo, engine, ledgerService, jobClient, logger)

	catalogHandler := catalog.NewHandler(logger, catalogService)
	billingHandler := billing.NewHandler(logger, billingService)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)
	stockHandler := stock.NewHandler(logger, engine)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		CatalogHandler: catalogHandler,
		BillingHandler: billingHandler,
		LedgerHandler:  ledgerHandler,
		StockHandler:   stockHandler,
		JobsHandler:    jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
