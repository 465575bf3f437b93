package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-eduhr/internal/config"
	"go-eduhr/internal/messaging/kafka"
	"go-eduhr/internal/messaging/kafka/producer"
	"go-eduhr/internal/shared/connection"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	outboxPurgeSchedule  = "@daily"
	outboxPurgeRetention = 7 * 24 * time.Hour
)

func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connectPostgres(cfg)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.Database.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(outboxPurgeSchedule, func() {
		purged, err := outboxRepo.PurgeSent(ctx, outboxPurgeRetention)
		if err != nil {
			logger.Error("purge sent outbox events failed", zap.Error(err))
			return
		}
		logger.Info("purged sent outbox events", zap.Int64("deleted", purged))
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		producer.WorkerConfig{
			PollInterval: cfg.Kafka.OutboxPollInterval,
			BatchSize:    cfg.Kafka.OutboxBatchSize,
		},
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
