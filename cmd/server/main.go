package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/uzhavar360/backend/internal/config"
	"github.com/uzhavar360/backend/internal/repository/ledger"
	"github.com/uzhavar360/backend/internal/repository/mongodb"
	"github.com/uzhavar360/backend/internal/repository/sheets"
	"github.com/uzhavar360/backend/internal/scheduler"
	"github.com/uzhavar360/backend/internal/seed"
	"github.com/uzhavar360/backend/internal/server/handlers"
	"github.com/uzhavar360/backend/internal/server/router"
	assistantsvc "github.com/uzhavar360/backend/internal/service/assistant"
	exportsvc "github.com/uzhavar360/backend/internal/service/export"
	notifysvc "github.com/uzhavar360/backend/internal/service/notify"
	settlementsvc "github.com/uzhavar360/backend/internal/service/settlement"
	summarysvc "github.com/uzhavar360/backend/internal/service/summary"
	"github.com/uzhavar360/backend/pkg/clients/gemini"
	"github.com/uzhavar360/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var store ledger.Ledger
	if cfg.MongoDB.URI != "" {
		mongoLedger, err := mongodb.NewMongoLedger(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb ledger", zap.Error(err))
		}
		defer func() {
			if err := mongoLedger.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoLedger
		baseLogger.Info("mongodb ledger enabled", zap.String("db", cfg.MongoDB.DBName))
	} else {
		store = ledger.NewMemoryLedger()
		baseLogger.Info("in-memory ledger enabled")
	}

	if err := seed.Apply(context.Background(), store, cfg.Seed.DemoData); err != nil {
		baseLogger.Fatal("failed to seed ledger", zap.Error(err))
	}

	var mirror sheets.Mirror
	if cfg.Sheets.SpreadsheetID != "" {
		mirror, err = sheets.NewGoogleSheetMirror(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets mirror", zap.Error(err))
		}
		baseLogger.Info("sheets mirror enabled")
	}

	notifier := notifysvc.NewService(store, baseLogger.Named("svc.notify"))
	settlementSvc := settlementsvc.NewService(store, notifier, cfg.Market.FeeRate, baseLogger.Named("svc.settlement"))
	summarySvc := summarysvc.NewService(store, notifier, baseLogger.Named("svc.summary"))
	exportSvc := exportsvc.NewService(store, mirror, baseLogger.Named("svc.export"))

	var aiClient gemini.Client
	if cfg.AI.GeminiKey != "" {
		aiClient = gemini.NewClient(cfg.AI.GeminiKey)
		baseLogger.Info("gemini assistant enabled")
	} else {
		baseLogger.Warn("gemini api key missing, assistant replies with fallback only")
	}
	assistantSvc := assistantsvc.NewService(aiClient, baseLogger.Named("svc.assistant"))

	apiHandler := handlers.NewAPIHandler(store, settlementSvc, summarySvc, exportSvc, assistantSvc, baseLogger.Named("handlers.api"))
	engine := router.New(apiHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Summary, store, summarySvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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
