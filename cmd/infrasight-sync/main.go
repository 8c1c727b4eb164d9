package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Amadou-dot/infrasight-sub002/internal/audit"
	"github.com/Amadou-dot/infrasight-sub002/internal/config"
	"github.com/Amadou-dot/infrasight-sub002/internal/consumer"
	"github.com/Amadou-dot/infrasight-sub002/internal/database"
	"github.com/Amadou-dot/infrasight-sub002/internal/dualwrite"
	"github.com/Amadou-dot/infrasight-sub002/internal/httpapi"
	"github.com/Amadou-dot/infrasight-sub002/internal/ingest"
	"github.com/Amadou-dot/infrasight-sub002/internal/logger"
	"github.com/Amadou-dot/infrasight-sub002/internal/metrics"
	"github.com/Amadou-dot/infrasight-sub002/internal/mqtt"
	"github.com/Amadou-dot/infrasight-sub002/internal/notify"
	"github.com/Amadou-dot/infrasight-sub002/internal/repository"
	"github.com/Amadou-dot/infrasight-sub002/internal/service"
	"github.com/Amadou-dot/infrasight-sub002/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "infrasight-sync")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	legacyDB, err := database.NewPostgresDB(&cfg.LegacyDB)
	if err != nil {
		log.Fatal("failed to connect to legacy store", zap.Error(err))
	}
	targetDB, err := database.NewPostgresDB(&cfg.TargetDB)
	if err != nil {
		log.Fatal("failed to connect to target store", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	legacyRepo := repository.NewPostgresLegacyDevicesRepo(legacyDB)
	targetRepo := repository.NewPostgresTargetRecordsRepo(targetDB)
	readingsRepo := repository.NewPostgresReadingsRepo(targetDB)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	coordinator := dualwrite.NewCoordinator(legacyRepo, targetRepo, cfg.DualWrite, m, log)
	auditor := audit.NewAuditor(legacyRepo, targetRepo, readingsRepo, log)

	pipeline := ingest.NewPipeline(
		targetRepo,
		readingsRepo,
		store.NewRedisKV(redisClient),
		cfg.Ingest,
		m,
		log,
	)

	router := httpapi.NewRouter(log)
	router.RegisterIngestionRoutes(httpapi.NewIngestionHandler(pipeline, log))
	router.RegisterDeviceRoutes(httpapi.NewDevicesHandler(coordinator, log))
	router.RegisterOpsRoutes(httpapi.NewOpsHandler(auditor, log))
	router.HandleHandler("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var alerter audit.Alerter
	if cfg.Audit.WebhookURL != "" {
		alerter = notify.NewWebhookAlerter(cfg.Audit.WebhookURL, log)
	}
	watcher := audit.NewWatcher(auditor, alerter, m, cfg.Audit, log)
	go watcher.Run(ctx)

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT disabled: broker connection failed", zap.Error(err))
		} else {
			mqttConsumer := consumer.NewMQTTConsumer(cfg, mqttClient, pipeline, log)
			go func() {
				if err := mqttConsumer.Start(ctx); err != nil {
					log.Error("MQTT consumer stopped", zap.Error(err))
				}
			}()
			defer mqttClient.Disconnect()
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = database.Close(legacyDB)
	_ = database.Close(targetDB)
}
