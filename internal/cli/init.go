// Package cli provides common initialization shared by the binaries in cmd/.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"studentspend/internal/amqp"
	"studentspend/internal/assistant"
	"studentspend/internal/backend"
	"studentspend/internal/cache"
	"studentspend/internal/config"
	"studentspend/internal/core"
	"studentspend/internal/log"
	"studentspend/internal/services"
	"studentspend/internal/store"
)

// SetupLogger installs the process-wide logger at the given level.
func SetupLogger(level string) *log.Logger {
	return log.Setup(level)
}

// LoadEnvFile loads the .env file for local development.
// A missing file is fine; production sets the environment directly.
func LoadEnvFile() {
	config.LoadEnvFile()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Setup("error").Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// OpenRepository builds the configured store and wraps it in a Repository.
func OpenRepository(ctx context.Context, logger *log.Logger, cfg *config.Config) (*store.Repository, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	return store.NewRepository(res.KV), res.Cleanup, nil
}

// NewPublisher connects to the broker when one is configured. A broker that
// cannot be reached degrades to a no-op publisher instead of failing start-up.
func NewPublisher(logger *log.Logger, cfg *config.Config) services.Publisher {
	if !cfg.AMQPEnabled() {
		return services.NopPublisher{}
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.WithComponent(log.ComponentAMQP).Warn("Failed to initialize AMQP client, continuing without notifications",
			log.FieldError, err.Error())
		return services.NopPublisher{}
	}
	logger.WithComponent(log.ComponentAMQP).Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}

// LedgerOptions bundles what NewLedger needs beyond the repository.
type LedgerOptions struct {
	Publisher services.Publisher
	// Typing enables the assistant's simulated typing delay.
	Typing bool
	// Caches receives the stats cache so it can be cleaned periodically.
	Caches *cache.Manager
}

// NewLedger wires a loaded LedgerService from configuration.
func NewLedger(ctx context.Context, logger *log.Logger, cfg *config.Config, repo *store.Repository, opts LedgerOptions) (*services.LedgerService, error) {
	statsCache := cache.NewLRUCache[core.Stats](cfg.StatsCacheSize, cfg.StatsCacheTTL)
	if opts.Caches != nil {
		opts.Caches.Register(statsCache)
	}

	svcOpts := []services.Option{
		services.WithLogger(logger.WithComponent(log.ComponentLedger)),
		services.WithStatsCache(statsCache),
		services.WithPublisher(opts.Publisher),
	}
	if opts.Typing {
		svcOpts = append(svcOpts, services.WithTypist(assistant.NewTypist(cfg.TypingDelay, cfg.TypingJitter, nil)))
	}

	ledger := services.NewLedgerService(repo, svcOpts...)
	if err := ledger.Load(ctx); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
