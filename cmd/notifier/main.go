// Command notifier consumes relayed notification events from Kafka and marks
// the stored notifications as delivered.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cateringhub/internal/domain/notifications"
	"cateringhub/internal/infra/broker/kafka"
	"cateringhub/internal/infra/config"
	mongostore "cateringhub/internal/infra/db/mongo"
	"cateringhub/internal/infra/delivery"
	"cateringhub/internal/infra/inbox"
	"cateringhub/internal/infra/obs"
	"cateringhub/internal/infra/outbox"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		obs.NewLogger("").Warn("dotenv load failed", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLoggerWithLevel(cfg.Env, cfg.LogLevel)
	if !cfg.KafkaEnabled() || cfg.StorageMode != config.StorageMongo {
		logger.Error("notifier requires KAFKA_BROKERS and STORAGE_MODE=mongo")
		os.Exit(1)
	}

	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("connect mongo failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Close(closeCtx)
	}()

	inboxStore, err := inbox.NewMongoStore(ctx, client.DB, cfg.KafkaConsumerGroup)
	if err != nil {
		logger.Error("inbox setup failed", "error", err)
		os.Exit(1)
	}

	handler := delivery.Handler{
		UoW:    mongostore.Factory{DB: client.DB},
		Inbox:  inboxStore,
		Sender: delivery.LogSender{Logger: logger},
		Logger: logger,
	}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, kafka.NewConsumerConfig("cateringhub-notifier"), handler)
	if err != nil {
		logger.Error("kafka consumer failed", "error", err)
		os.Exit(1)
	}
	consumer.Backoff = cfg.RetryBackoff
	consumer.Logger = logger
	defer consumer.Close()

	topic := outbox.TopicFor(cfg.KafkaTopicPrefix, notifications.CreatedEventName)
	logger.Info("notifier starting", "topic", topic, "group", cfg.KafkaConsumerGroup)
	if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("notifier stopped")
}
