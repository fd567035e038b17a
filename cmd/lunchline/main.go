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

	"github.com/lunchline/lunchline/internal/app"
	"github.com/lunchline/lunchline/internal/audit"
	"github.com/lunchline/lunchline/internal/auth"
	"github.com/lunchline/lunchline/internal/calendar"
	"github.com/lunchline/lunchline/internal/menus"
	"github.com/lunchline/lunchline/internal/observability"
	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/platform/cache"
	"github.com/lunchline/lunchline/internal/platform/db"
	"github.com/lunchline/lunchline/internal/rbac"
	"github.com/lunchline/lunchline/internal/settings"
	"github.com/lunchline/lunchline/internal/shared"
	"github.com/lunchline/lunchline/internal/users"
	"github.com/lunchline/lunchline/internal/vendors"
	"github.com/lunchline/lunchline/jobs"
	"github.com/lunchline/lunchline/report"
)

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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "lunchline_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditLogger)

	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacMiddleware := rbac.Middleware{Users: usersService, Logger: logger}

	calendarRepo := calendar.NewRepository(dbpool)
	calendarService := calendar.NewService(calendarRepo, auditLogger)

	settingsRepo := settings.NewRepository(dbpool)
	settingsService := settings.NewService(settingsRepo, auditLogger)

	orderingRepo := ordering.NewRepository(dbpool)
	orderingService := ordering.NewService(orderingRepo, calendarService, settingsService, auditLogger)

	vendorsRepo := vendors.NewRepository(dbpool)
	vendorsService := vendors.NewService(vendorsRepo, auditLogger)

	menusRepo := menus.NewRepository(dbpool)
	menusService := menus.NewService(menusRepo, vendorsRepo, auditLogger)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)

	metrics := observability.NewMetrics()

	orderingHandler := ordering.NewHandler(logger, orderingService, rbacMiddleware, metrics)
	calendarHandler := calendar.NewHandler(logger, calendarService, rbacMiddleware)
	settingsHandler := settings.NewHandler(logger, settingsService, rbacMiddleware)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)
	vendorsHandler := vendors.NewHandler(logger, vendorsService, rbacMiddleware)
	menusHandler := menus.NewHandler(logger, menusService, rbacMiddleware)
	auditHandler := audit.NewHandler(logger, auditService, rbacMiddleware)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, orderingService, rbacMiddleware, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, rbacMiddleware.RequireAdmin, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AuthHandler:     authHandler,
		OrderingHandler: orderingHandler,
		CalendarHandler: calendarHandler,
		SettingsHandler: settingsHandler,
		UsersHandler:    usersHandler,
		VendorsHandler:  vendorsHandler,
		MenusHandler:    menusHandler,
		AuditHandler:    auditHandler,
		ReportHandler:   reportHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
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
