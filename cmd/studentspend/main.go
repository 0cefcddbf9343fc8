package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"studentspend/internal/cache"
	"studentspend/internal/cli"
	"studentspend/internal/config"
	apphttp "studentspend/internal/http"
	"studentspend/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Server exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	repo, cleanup, err := cli.OpenRepository(ctx, logger, cfg)
	if err != nil {
		return err
	}

	caches := cache.NewManager(logger.Logger)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	ledger, err := cli.NewLedger(ctx, logger, cfg, repo, cli.LedgerOptions{
		Publisher: cli.NewPublisher(logger, cfg),
		Typing:    true,
		Caches:    caches,
	})
	if err != nil {
		_ = cleanup()
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Failed to close ledger", log.FieldError, err.Error())
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		Logger:             logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting studentspend server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"amqp_enabled", cfg.AMQPEnabled(),
			"expenses", len(ledger.Expenses()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
