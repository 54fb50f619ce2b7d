package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/radieske/betx-platform/internal/api/http"
	"github.com/radieske/betx-platform/internal/api/ws"
	"github.com/radieske/betx-platform/internal/audit"
	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/escrow"
	"github.com/radieske/betx-platform/internal/ledger"
	"github.com/radieske/betx-platform/internal/shared/cache"
	"github.com/radieske/betx-platform/internal/shared/config"
	"github.com/radieske/betx-platform/internal/shared/db"
	"github.com/radieske/betx-platform/internal/shared/kafka"
	"github.com/radieske/betx-platform/internal/shared/logger"
	"github.com/radieske/betx-platform/internal/shared/metrics"
	"github.com/radieske/betx-platform/internal/slip"
	"github.com/radieske/betx-platform/internal/store"
	"github.com/radieske/betx-platform/internal/tipster"
	"github.com/radieske/betx-platform/internal/wallet"
	"github.com/radieske/betx-platform/pkg/currency"
)

// publisher cobre os três eventos de domínio (Kafka ou Nop)
type publisher interface {
	slip.Publisher
	escrow.Publisher
	tipster.Publisher
	Close() error
}

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service",
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.StoreBackend),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// persistência dos snapshots
	st, rdb, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()
	log.Info("store ready", zap.String("backend", cfg.StoreBackend))

	// eventos
	var pub publisher = kafka.Nop{}
	if cfg.KafkaBrokers != "" {
		pub = kafka.NewProducer(cfg.KafkaBrokers, kafka.Topics{
			BetPlaced:                 cfg.TopicBetPlaced,
			TipPurchaseUpdated:        cfg.TopicTipPurchaseUpdated,
			TipsterApplicationUpdated: cfg.TopicTipsterApplicationUpdated,
		})
		log.Info("kafka producer ready", zap.String("brokers", cfg.KafkaBrokers))
	} else {
		log.Info("kafka disabled, events are dropped")
	}
	defer pub.Close()

	// push para a UI; com Redis/Postgres o ledger grava com check-and-set e pode rodar em
	// várias instâncias. Escrow e tipsters guardam estado em memória e exigem instância única.
	hub := ws.NewHub(originAllowed(cfg.CORSAllowedOrigins), log)
	var notifier ws.Notifier = hub
	if rdb != nil {
		ws.StartRedisSubscriber(ctx, rdb, hub)
		notifier = &ws.RedisRelay{R: rdb, Log: log}
	}

	// métricas
	col := metrics.NewCollectors(prometheus.DefaultRegisterer)

	// core
	walletLedger := ledger.NewWallet(st, log)
	walletLedger.OnMutation = func(op ledger.Op, c currency.Wallet) {
		col.LedgerMutations.WithLabelValues(string(op), c.String()).Inc()
	}
	walletLedger.OnChange = func(user string, b ledger.Balances[currency.Wallet]) {
		notifier.Notify(ws.Message{Type: ws.TypeBalances, UserKey: user, Payload: b})
	}

	tipsLedger := ledger.NewTips(st, log)
	tipsLedger.OnMutation = func(op ledger.Op, c currency.TipCoin) {
		col.LedgerMutations.WithLabelValues(string(op), c.String()).Inc()
	}
	tipsLedger.OnChange = func(user string, b ledger.Balances[currency.TipCoin]) {
		notifier.Notify(ws.Message{Type: ws.TypeTipBalances, UserKey: user, Payload: b})
	}

	book := slip.NewBook(walletLedger, pub, log)
	book.OnPlaced = func(r slip.Receipt) {
		col.BetsPlaced.WithLabelValues(string(r.Mode), r.Currency.String()).Inc()
	}

	engine := escrow.New(st, pub, log, escrow.Config{ConfirmationDelay: cfg.EscrowConfirmationDelay})
	defer engine.Close()
	engine.OnTransition = func(s escrow.Status) {
		col.EscrowTransitions.WithLabelValues(string(s)).Inc()
	}
	engine.OnChange = func(user string, p escrow.Purchase) {
		notifier.Notify(ws.Message{Type: ws.TypePurchase, UserKey: user, Payload: p})
	}

	tipsters := tipster.NewService(st, pub, log)
	tipsters.OnReview = func(stage string, approved bool) {
		outcome := stage + "_rejected"
		if approved {
			outcome = stage + "_verified"
		}
		col.TipsterReviews.WithLabelValues(outcome).Inc()
	}
	tipsters.OnChange = func(a tipster.Application) {
		notifier.Notify(ws.Message{Type: ws.TypeApplication, UserKey: a.Address, Payload: a})
	}

	api := &httpapi.API{
		Log:            log,
		Catalog:        catalog.Demo(time.Now()),
		Wallet:         wallet.NewService(walletLedger, log),
		TipsLedger:     tipsLedger,
		Slips:          book,
		Escrow:         engine,
		Tipsters:       tipsters,
		WS:             hub.HandleWS,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	// o feed só é preenchido quando há Kafka e o betx-audit-worker está no ar
	if cfg.KafkaBrokers != "" {
		api.Activity = audit.NewFeed(st)
	}

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, st.Ping)
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	// HTTP público
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("betx-api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}

// openStore escolhe o backend dos snapshots conforme STORE_BACKEND.
// O client Redis é devolvido também para o relay de WebSocket.
func openStore(ctx context.Context, cfg config.Config) (store.Store, *redis.Client, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory, "":
		return store.NewMemory(), nil, func() {}, nil

	case config.BackendRedis:
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, nil, err
		}
		return store.NewRedis(rdb, cfg.RedisPrefix), rdb, func() { _ = rdb.Close() }, nil

	case config.BackendPostgres:
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		s := store.NewPostgres(pg)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, nil, err
		}
		return s, nil, func() { _ = pg.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// originAllowed aplica ao upgrade do WebSocket a mesma lista do CORS
func originAllowed(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || slices.Contains(origins, "*") || slices.Contains(origins, o)
	}
}
