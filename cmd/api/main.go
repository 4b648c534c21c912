package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/audit"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/monitor"
	"server/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	users := repo.NewUserRepository(dbpool)
	limits := repo.NewUsageLimitsRepository(dbpool)
	transactions := repo.NewPaymentTransactionRepository(dbpool)
	history := repo.NewPlanHistoryRepository(dbpool)
	auditLogs := repo.NewAuditLogRepository(dbpool)
	events := repo.NewFeatureUsageRepository(dbpool)
	templates := repo.NewTemplateRepository(dbpool)
	cvs := repo.NewCVRepository(dbpool)

	auditLogger := audit.New(auditLogs, infra.Component(logger, "audit"), cfg.EnableAuditLogging)
	perf := monitor.NewPerformanceMonitor("billing", logger, cfg.EnablePerformanceMonitoring)
	errorTracker := monitor.NewErrorTracker(logger, cfg.EnableErrorTracking)

	billing := service.NewBillingService(
		users, transactions, history, limits,
		auditLogger, perf, infra.Component(logger, "billing"),
	)

	app := &handlers.App{
		Logger:    infra.Component(logger, "api"),
		Billing:   billing,
		Users:     users,
		Limits:    limits,
		Templates: templates,
		CVs:       cvs,
		AuditLogs: auditLogs,
		Audit:     auditLogger,
		Errors:    errorTracker,
	}

	router := httpapi.NewRouter(app, httpapi.Deps{
		Cfg:    cfg,
		Logger: infra.Component(logger, "http"),
		Usage: middleware.UsageDeps{
			Limits: limits,
			Audit:  auditLogger,
			Log:    infra.Component(logger, "usage"),
		},
		Tracking: middleware.TrackingDeps{
			Events: events,
			Users:  users,
			Log:    infra.Component(logger, "tracking"),
		},
		Template: middleware.TemplateAccessDeps{
			Templates: templates,
			Limits:    limits,
			Log:       infra.Component(logger, "template_access"),
		},
	})

	server := infra.NewHTTPServer(cfg, infra.Component(logger, "server"), router)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
