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

	"meal-planner/internal/api"
	"meal-planner/internal/core/notify"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/store"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/monitoring"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("store", cfg.Store.Driver),
		zap.String("catalog", cfg.Catalog.Path),
		zap.Bool("sync_enabled", cfg.Sync.Enabled),
		zap.String("sync_api_key", config.MaskAPIKey(cfg.Sync.APIKey)),
	)

	ctx := context.Background()

	catalog, err := recipe.LoadCatalog(ctx, cfg.Catalog.Path, cfg.Catalog.URL, cfg.Catalog.Timeout)
	if err != nil {
		common.LogFatal("Failed to load recipe catalog", zap.Error(err))
	}

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		common.LogFatal("Failed to initialize store", zap.Error(err))
	}
	defer st.Close()

	metrics := monitoring.NewMetrics()
	metrics.SetCatalogSize(catalog.Len())

	svc := planner.NewService(st, catalog,
		planner.WithRecommendationLimit(cfg.Nutrition.RecommendationLimit),
	)
	svc.Subscribe(func(e planner.Event) {
		metrics.PlanEvent(string(e.Type))
	})

	var notifier *notify.Notifier
	if cfg.Sync.Enabled {
		notifier = notify.New(cfg.Sync)
		notifier.OnResult = metrics.SyncResult
		svc.Subscribe(notifier.Handle)
		defer notifier.Close()
	}

	router := api.SetupRouter(cfg, api.Dependencies{
		Store:    st,
		Planner:  svc,
		Notifier: notifier,
		Metrics:  metrics,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo(common.MsgServerStart,
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Int("recipes", catalog.Len()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo(common.MsgServerStop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo(common.MsgServerStopped)
}
