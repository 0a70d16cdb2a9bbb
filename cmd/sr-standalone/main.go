package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/vmtuan/stockroom/internal/config"
	"github.com/vmtuan/stockroom/internal/event"
	"github.com/vmtuan/stockroom/internal/http"
	"github.com/vmtuan/stockroom/internal/job"
	"github.com/vmtuan/stockroom/internal/log"
	"github.com/vmtuan/stockroom/internal/relay"
	"github.com/vmtuan/stockroom/internal/repository"
	"github.com/vmtuan/stockroom/internal/storage/db"
	"github.com/vmtuan/stockroom/internal/storage/mq"
	"github.com/vmtuan/stockroom/internal/telemetry"
	"github.com/vmtuan/stockroom/internal/worker"
	"github.com/vmtuan/stockroom/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Relay    config.Relay
		Jobs     config.Jobs
		Worker   config.Worker
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	productRepository := repository.NewProductRepository(dbClient)
	jobRepository := repository.NewJobRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, jobRepository, cfg.Worker.LowStockThreshold)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := job.NewService(cfg.Jobs, logger, dbClient, jobRepository)
		if err := svc.RegisterHandler(job.NewLowStockAlertHandler(logger, productRepository)); err != nil {
			panic(fmt.Errorf("error registering low stock alert handler: %w", err))
		}
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "job service started")

		<-interruptChan

		logger.InfoContext(ctx, "job service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "job service is stopped")
	})

	wg.Go(func() {
		svc := worker.NewStockCheckService(cfg.Worker, logger, productRepository)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "stock check service started")

		<-interruptChan

		logger.InfoContext(ctx, "stock check service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "stock check service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, dbClient)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
