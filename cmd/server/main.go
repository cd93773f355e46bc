package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/api"
	"github.com/shelfcheck/item-audit/internal/api/handler"
	"github.com/shelfcheck/item-audit/internal/blob"
	"github.com/shelfcheck/item-audit/internal/check"
	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/db"
	"github.com/shelfcheck/item-audit/internal/ims"
	"github.com/shelfcheck/item-audit/internal/metrics"
	"github.com/shelfcheck/item-audit/internal/notifier"
	"github.com/shelfcheck/item-audit/internal/queue"
	"github.com/shelfcheck/item-audit/internal/ratelimiter"
	"github.com/shelfcheck/item-audit/internal/repository"
	"github.com/shelfcheck/item-audit/internal/results"
	"github.com/shelfcheck/item-audit/internal/run"
	"github.com/shelfcheck/item-audit/internal/service"
	"github.com/shelfcheck/item-audit/internal/staging"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Storage layer.
	cfgRepo := repository.NewPgConfigRepository(pool)
	stagingStore := staging.NewInstrumentedStore(staging.NewPgStore(pool), func(checkName string) {
		m.ItemsStaged.WithLabelValues(checkName).Inc()
	})
	resultStore := results.NewPgStore(pool)
	runRepo := run.NewPgRepository(pool)
	blobs := blob.NewRedisStore(rdb)
	locker := run.NewRedisLocker(rdb)

	// Upstream clients share one rate limiter so webhook traffic and batch
	// chunks draw from the same budget.
	imsClient := ims.NewHTTPClient(cfg.IMSBaseURL, cfg.IMSTimeout)
	limiter := ratelimiter.New(cfg.RateLimit)
	gateway := notifier.NewHTTPGateway(cfg.NotifierURL, cfg.NotifierTimeout)

	// Checks.
	filter := check.NewEligibilityFilter(cfgRepo, imsClient, limiter, cfg, logger)
	suffixCheck := check.NewSuffixCheck(cfgRepo, imsClient, gateway, limiter, cfg.SuffixMarker, logger)
	rowTrayCheck := check.NewRowTrayCheck(stagingStore, cfg, logger)
	rules := check.NewRuleSet(logger, suffixCheck, rowTrayCheck)
	intakeSvc := service.NewIntakeService(filter, rules, logger)

	// Batch re-verification workflow.
	q := queue.New(cfg.QueueCapacity)
	coordinator := run.NewCoordinator(stagingStore, blobs, runRepo, q, locker, cfg, logger)
	onChunk, onRunCompleted := m.WorkerHooks()
	worker := run.NewWorker(
		q, blobs, runRepo, resultStore, stagingStore,
		filter, rowTrayCheck, cfgRepo, gateway, cfg, logger,
		run.MetricHooks{OnChunk: onChunk, OnRunCompleted: onRunCompleted},
	)
	scheduler := run.NewScheduler(coordinator, cfg.SweepInterval, []string{check.RowTrayCheckName}, logger)
	reaper := run.NewReaper(runRepo, q, cfg.ReaperInterval, cfg.StallAfter, logger)

	go worker.Run(ctx)
	go scheduler.Run(ctx)
	go reaper.Run(ctx)
	go observeQueueDepth(ctx, q, m)

	// HTTP surface.
	webhookHandler := handler.NewWebhookHandler(intakeSvc, cfg.WebhookSecret, m, logger)
	opsHandler := handler.NewOpsHandler(stagingStore, runRepo, coordinator, logger)
	healthHandler := handler.NewHealthHandler(pool)
	router := api.NewRouter(webhookHandler, opsHandler, healthHandler, registry, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func observeQueueDepth(ctx context.Context, q *queue.Queue, m *metrics.Metrics) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.QueueDepth.Set(float64(q.Depth()))
		}
	}
}
