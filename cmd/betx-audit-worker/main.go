package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/audit"
	"github.com/radieske/betx-platform/internal/shared/cache"
	"github.com/radieske/betx-platform/internal/shared/config"
	"github.com/radieske/betx-platform/internal/shared/db"
	"github.com/radieske/betx-platform/internal/shared/kafka"
	"github.com/radieske/betx-platform/internal/shared/logger"
	"github.com/radieske/betx-platform/internal/shared/metrics"
	"github.com/radieske/betx-platform/internal/store"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "betx-api" {
		cfg.ServiceName = "betx-audit-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	if cfg.KafkaBrokers == "" {
		log.Fatal("KAFKA_BROKERS is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// o feed precisa ficar no mesmo store lido pelo betx-api
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	topics := kafka.Topics{
		BetPlaced:                 cfg.TopicBetPlaced,
		TipPurchaseUpdated:        cfg.TopicTipPurchaseUpdated,
		TipsterApplicationUpdated: cfg.TopicTipsterApplicationUpdated,
	}

	// Kafka consumer: um group lendo os três tópicos de domínio
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.KafkaGroupID, topics.All()...)
	defer reader.Close()

	col := metrics.NewCollectors(prometheus.DefaultRegisterer)
	p := &audit.Processor{
		Log:    log,
		Reader: reader,
		Feed:   audit.NewFeed(st),
		Topics: topics,
		OnResult: func(topic, result string) {
			col.AuditConsumed.WithLabelValues(topic, result).Inc()
		},
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, st.Ping)
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	log.Info("betx-audit-worker started",
		zap.Strings("consume", topics.All()),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("store", cfg.StoreBackend),
	)

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("processor stopped", zap.Error(err))
	}
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}

// openStore usa o mesmo STORE_BACKEND do betx-api; memória não faz sentido aqui
func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil

	case config.BackendPostgres:
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewPostgres(pg)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return s, func() { _ = pg.Close() }, nil
	}
	return nil, nil, fmt.Errorf("store backend %q is not shared with betx-api", cfg.StoreBackend)
}
