package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/config"
	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
	"github.com/SleepTheGod/Cryptozoo/internal/repository/mongodb"
	"github.com/SleepTheGod/Cryptozoo/internal/repository/sheets"
	"github.com/SleepTheGod/Cryptozoo/internal/scheduler"
	"github.com/SleepTheGod/Cryptozoo/internal/server/handlers"
	"github.com/SleepTheGod/Cryptozoo/internal/server/router"
	"github.com/SleepTheGod/Cryptozoo/internal/service/inventory"
	"github.com/SleepTheGod/Cryptozoo/internal/service/lifecycle"
	reportingsvc "github.com/SleepTheGod/Cryptozoo/internal/service/reporting"
	"github.com/SleepTheGod/Cryptozoo/internal/service/yield"
	"github.com/SleepTheGod/Cryptozoo/pkg/clients/anthropic"
	"github.com/SleepTheGod/Cryptozoo/pkg/clients/imagegen"
	"github.com/SleepTheGod/Cryptozoo/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var journals lifecycle.MultiJournal

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewJournalRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb journal", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		journals = append(journals, mongoRepo)
		baseLogger.Info("mongodb journal enabled", zap.String("db", cfg.MongoDB.DBName))
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets journal", zap.Error(err))
		}
		journals = append(journals, sheets.NewJournal(sheetsRepo))
		baseLogger.Info("sheets journal enabled")
	}

	metadataClient := anthropic.NewClient(cfg.AI, baseLogger.Named("client.anthropic"))
	imageClient := imagegen.NewClient(cfg.Image, baseLogger.Named("client.imagegen"))
	if cfg.Image.BaseURL == "" {
		baseLogger.Warn("image api url missing, creatures will use placeholder images")
	}

	settings := lifecycle.DefaultSettings()
	settings.ProgressInterval = cfg.Game.ProgressInterval
	settings.CompleteHold = cfg.Game.CompleteHold
	settings.NoticeTTL = cfg.Game.NoticeTTL

	store := inventory.NewStore(models.StartingBalance)
	engine := lifecycle.NewEngine(store, metadataClient, imageClient, journals, settings, baseLogger.Named("svc.lifecycle"))
	accrual := yield.NewAccrual(store, models.YieldTickRate, baseLogger.Named("svc.yield"))
	reportingSvc := reportingsvc.NewService(store, baseLogger.Named("svc.reporting"))

	gameHandler := handlers.NewGameHandler(engine, accrual, reportingSvc, baseLogger.Named("handlers.game"))
	httpEngine := router.New(gameHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, accrual, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Int64("starting_balance", models.StartingBalance))
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

	engine.Wait()
}
