package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/repository/backend"
	"github.com/mamadbah2/stocktake/internal/repository/sheets"
	"github.com/mamadbah2/stocktake/internal/scheduler"
	"github.com/mamadbah2/stocktake/internal/server/handlers"
	"github.com/mamadbah2/stocktake/internal/server/router"
	"github.com/mamadbah2/stocktake/internal/service/commands"
	countingsvc "github.com/mamadbah2/stocktake/internal/service/counting"
	reportingsvc "github.com/mamadbah2/stocktake/internal/service/reporting"
	messagingsvc "github.com/mamadbah2/stocktake/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/stocktake/pkg/clients/whatsapp"
	"github.com/mamadbah2/stocktake/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ledger, err := backend.Open(context.Background(), cfg.Store, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open ledger", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := ledger.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close ledger", zap.Error(err))
		}
	}()

	loc := cfg.Location()
	countingSvc := countingsvc.NewService(ledger, loc, baseLogger.Named("svc.counting"))
	reportingSvc := reportingsvc.NewService(ledger, loc, baseLogger.Named("svc.reporting"))

	var exporter scheduler.SummaryExporter
	if cfg.SheetsEnabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewSummaryExporter(sheetsRepo, cfg.Sheets.SummaryRange, baseLogger.Named("export.sheets"))
	} else {
		baseLogger.Warn("google sheets not configured, summary export disabled")
	}

	var (
		notifier       scheduler.Notifier
		webhookHandler *handlers.WebhookHandler
	)
	if cfg.WhatsAppEnabled() {
		waClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = waClient
		baseLogger.Info("whatsapp digest enabled")

		if cfg.WebhookEnabled() {
			dispatcher := commands.NewService(countingSvc, reportingSvc, baseLogger.Named("svc.commands"))
			messagingSvc := messagingsvc.NewMetaWhatsAppService(cfg.WhatsApp, waClient, dispatcher, baseLogger.Named("svc.whatsapp"))
			webhookHandler = handlers.NewWebhookHandler(messagingSvc, cfg.WhatsApp.AppSecret, baseLogger.Named("handlers.whatsapp"))
			baseLogger.Info("whatsapp command channel enabled", zap.Int("allowed_senders", len(cfg.WhatsApp.AllowedSenders)))
		}
	} else {
		baseLogger.Warn("whatsapp token missing, summary digest disabled")
	}

	sched := scheduler.NewScheduler(cfg.Reporting, loc, reportingSvc, exporter, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	countHandler := handlers.NewCountHandler(countingSvc, baseLogger.Named("handlers.counts"))
	reportHandler := handlers.NewReportHandler(reportingSvc, baseLogger.Named("handlers.reports"))
	engine := router.New(countHandler, reportHandler, webhookHandler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
			zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
