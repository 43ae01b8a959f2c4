package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "receiptmint/internal/http"
	"receiptmint/internal/ledger"
	"receiptmint/internal/ledger/hedera"
	"receiptmint/internal/platform/config"
	"receiptmint/internal/platform/httpserver"
	"receiptmint/internal/platform/kafka"
	"receiptmint/internal/platform/logger"
	platformmetrics "receiptmint/internal/platform/metrics"
	"receiptmint/internal/platform/redis"
	"receiptmint/internal/receipt/events"
	"receiptmint/internal/receipt/handler"
	"receiptmint/internal/receipt/idempotency"
	"receiptmint/internal/receipt/ipfs"
	"receiptmint/internal/receipt/loyalty"
	receiptmetrics "receiptmint/internal/receipt/metrics"
	"receiptmint/internal/receipt/mirror"
	"receiptmint/internal/receipt/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledgerClient, err := hedera.New(hedera.Config{
		Network:       cfg.Ledger.Network,
		OperatorID:    cfg.Ledger.OperatorID,
		OperatorKey:   cfg.Ledger.OperatorKey,
		MaxTxFeeHbar:  cfg.Ledger.MaxTxFeeHbar,
		ValidDuration: cfg.Ledger.TxValidDuration,
		Timeout:       cfg.Ledger.OperationTimeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = ledgerClient.Close() }()

	publisher, err := ipfs.NewPublisher(ipfs.PublisherConfig{
		PinningURL: cfg.Storage.PinningURL,
		GatewayURL: cfg.Storage.GatewayURL,
		JWT:        cfg.Storage.JWT,
		Timeout:    cfg.Storage.UploadTimeout,
	}, ipfs.WithPublisherLogger(log))
	if err != nil {
		return err
	}
	fetcher := ipfs.NewFetcher(cfg.Storage.GatewayURL, cfg.Mirror.FetchTimeout, nil)
	index := mirror.New(cfg.Mirror.URL, nil)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(receiptmetrics.New()),
	}
	checks := map[string]httpapi.HealthCheck{}

	producer, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := producer.Flush(flushCtx); err != nil {
				log.Warn("failed to flush receipt events", "error", err)
			}
			producer.Close()
		}()
		opts = append(opts, service.WithEventPublisher(events.NewPublisher(producer, cfg.Kafka.Topic, log)))
		checks["kafka"] = producer.Ping
		log.Info("receipt events enabled", "topic", cfg.Kafka.Topic)
	}

	if cfg.Loyalty.URL != "" {
		opts = append(opts, service.WithLoyalty(loyalty.New(cfg.Loyalty.URL, cfg.Loyalty.Timeout)))
		log.Info("loyalty notifications enabled", "url", cfg.Loyalty.URL)
	}

	svc, err := service.New(ledgerClient, publisher, index, fetcher, service.Config{
		CollectionID:   ledger.TokenID(cfg.Receipt.CollectionID),
		RewardTokenID:  ledger.TokenID(cfg.Reward.TokenID),
		RewardAmount:   cfg.Reward.Amount,
		RewardSymbol:   cfg.Reward.Symbol,
		RewardDecimals: cfg.Reward.Decimals,
		ImageURL:       cfg.Receipt.ImageURL,
		ExplorerURL:    cfg.Receipt.ExplorerURL,
		ListTimeout:    cfg.Mirror.ListTimeout,
		ResolveTimeout: cfg.Mirror.ResolveTimeout,
	}, opts...)
	if err != nil {
		return err
	}

	var store idempotency.Store = idempotency.NewMemoryStore()
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		store = idempotency.NewRedisStore(redisClient)
		checks["redis"] = redisClient.Health
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        platformmetrics.New(),
		Receipt:        handler.New(svc, log),
		MintMiddleware: []func(http.Handler) http.Handler{idempotency.Middleware(store, idempotency.Config{}, log)},
		Checks:         checks,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting receiptmint",
			"addr", cfg.Server.Addr,
			"network", cfg.Ledger.Network,
			"treasury", ledgerClient.Treasury(),
			"collection", cfg.Receipt.CollectionID,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	svc.Wait()
	return err
}
