package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"familyassets/internal/amqp"
	"familyassets/internal/backend"
	"familyassets/internal/cache"
	"familyassets/internal/cli"
	apphttp "familyassets/internal/http"
	"familyassets/internal/log"
	"familyassets/internal/stats"
	"familyassets/internal/store"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Error("Storage cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	// Change notifications are optional; without AMQP_URL the store runs alone.
	var (
		notifier   store.Notifier
		amqpClient *amqp.Client
		instanceID = uuid.NewString()
	)
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, instanceID, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		notifier = amqpClient
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	assets, err := store.Open(ctx, res.KV, store.Options{
		Key:      cfg.StorageKey,
		Seed:     cfg.SeedSampleData,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("Failed to open asset store", log.FieldError, err.Error())
		os.Exit(1)
	}

	summaryCache := cache.NewLRUCache[stats.Summary](16, cfg.CacheTTL)
	summaries := cache.NewLoader[stats.Summary](summaryCache)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(summaryCache)
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Store:          assets,
		Summaries:      summaries,
		TrendMonths:    cfg.TrendMonths,
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting familyassets server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if amqpClient != nil {
		g.Go(func() error {
			// Changes written by other instances reload the store and drop
			// cached summaries; this instance's own messages are skipped.
			handler := amqp.NewReloadHandler(instanceID, assets, summaries.Invalidate, logger)
			err := amqpClient.ConsumeWithRetry(gctx, handler)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Asset change consumer stopped", log.FieldError, err.Error(), log.FieldOperation, log.OpConsume)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
