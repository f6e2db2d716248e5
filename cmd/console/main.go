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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hawi-pms/console/internal/app"
	"github.com/hawi-pms/console/internal/auth"
	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/dashboard"
	"github.com/hawi-pms/console/internal/format"
	"github.com/hawi-pms/console/internal/medicines"
	"github.com/hawi-pms/console/internal/observability"
	"github.com/hawi-pms/console/internal/platform/cache"
	"github.com/hawi-pms/console/internal/platform/db"
	"github.com/hawi-pms/console/internal/platform/httpx"
	"github.com/hawi-pms/console/internal/purchases"
	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/receipt"
	"github.com/hawi-pms/console/internal/reports"
	"github.com/hawi-pms/console/internal/sales"
	"github.com/hawi-pms/console/internal/settings"
	"github.com/hawi-pms/console/internal/shared"
	"github.com/hawi-pms/console/internal/stock"
	"github.com/hawi-pms/console/internal/suppliers"
	"github.com/hawi-pms/console/internal/users"
	"github.com/hawi-pms/console/internal/view"
	"github.com/hawi-pms/console/report"
)

const sessionCookie = "hawi_console_session"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	formatter := format.New(cfg.Locale())
	format.SetDefault(formatter)
	location := cfg.Location()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, sessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	readyChecks := []httpx.Check{{Name: "redis", Probe: sessionManager.Ping}}

	metrics := observability.NewMetrics()

	api := backend.New(cfg.APIBaseURL,
		backend.WithTimeout(cfg.APITimeout),
		backend.WithObserver(metrics))

	var sessionRepo auth.Repository = auth.NopRepository{}
	var pool *pgxpool.Pool
	if cfg.PGDSN != "" {
		if err := db.Migrate(cfg.PGDSN, logger); err != nil {
			logger.Error("migrate postgres", slog.Any("error", err))
			os.Exit(1)
		}
		pool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		sessionRepo = auth.NewRepository(pool)
		readyChecks = append(readyChecks, httpx.Check{Name: "postgres", Probe: pool.Ping})
	}

	var pdf receipt.PDFRenderer
	if cfg.GotenbergURL != "" {
		gotenberg := report.NewClient(cfg.GotenbergURL, report.WithPage(report.ReceiptPage))
		pdf = gotenberg
		readyChecks = append(readyChecks, httpx.Check{Name: "gotenberg", Probe: gotenberg.Ping})
	}

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	responder := view.NewResponder(templates, csrfManager, rbac.DefaultPolicy(), logger)
	responder.Exports = metrics

	rbacMiddleware := rbac.Middleware{Logger: logger}
	receipts := sales.Receipts{
		Options: receipt.Options{
			AutoPrint: true,
			Pharmacy:  cfg.PharmacyName,
			Location:  location,
			Formatter: formatter,
		},
		PDF:      pdf,
		Observer: metrics,
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Responder:        responder,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Authenticator:    api,
		Metrics:          metrics,
		ReadyChecks:      readyChecks,
		AuthHandler:      auth.NewHandler(logger, responder, sessionManager, sessionRepo, cfg.LoginRateLimitPerMinute),
		DashboardHandler: dashboard.NewHandler(logger, api, responder, dashboard.Options{ExpiryDays: cfg.ExpiryHorizonDays, Location: location}),
		MedicineHandler:  medicines.NewHandler(logger, api, responder, rbacMiddleware),
		SupplierHandler:  suppliers.NewHandler(logger, api, responder, rbacMiddleware),
		StockHandler:     stock.NewHandler(logger, api, responder, rbacMiddleware, cfg.LowStockThreshold),
		PurchaseHandler:  purchases.NewHandler(logger, api, responder, rbacMiddleware),
		SalesHandler:     sales.NewHandler(logger, api, responder, rbacMiddleware, receipts),
		ReportHandler:    reports.NewHandler(logger, api, responder, rbacMiddleware),
		UsersHandler:     users.NewHandler(logger, api, responder, rbacMiddleware),
		SettingsHandler:  settings.NewHandler(logger, api, responder),
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: cfg.AppReadTimeout,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("console listening", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
