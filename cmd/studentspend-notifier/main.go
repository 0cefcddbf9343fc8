package main

import (
	"context"
	"os"
	"time"

	"studentspend/internal/amqp"
	"studentspend/internal/cache"
	"studentspend/internal/cli"
	"studentspend/internal/log"
	"studentspend/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	seen := cache.NewLRUCache[struct{}](1024, time.Hour)
	caches := cache.NewManager(logger.Logger)
	caches.Register(seen)
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	w := worker.NewNotificationWorker(worker.NewWriterSink(os.Stdout), seen, logger)
	if err := w.Run(ctx, client); err != nil {
		logger.Error("Notifier stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
}
