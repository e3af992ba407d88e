// Worker consumes notification events from Kafka and pushes them to Loki, or
// logs them when LOKI_URL is empty. KAFKA_BROKERS is required.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"promanage/backend/internal/config"
	"promanage/backend/internal/logging"
	"promanage/backend/internal/notification"
	"promanage/backend/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, "promanage-worker")

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		logger.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.NotificationTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink func(context.Context, []byte) error
	if cfg.LokiURL != "" {
		sink = loki.NewClient(cfg.LokiURL).PushEventJSON
	} else {
		stdout := notification.LogPublisher{Logger: logger}
		sink = func(ctx context.Context, raw []byte) error {
			ev, err := notification.Decode(raw)
			if err != nil {
				return err
			}
			return stdout.Publish(ctx, ev)
		}
	}

	logger.Info("worker consuming", "topic", cfg.NotificationTopic, "group", cfg.KafkaGroupID, "loki", cfg.LokiURL)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("worker stopped")
				return
			}
			logger.Warn("kafka read failed", "component", "worker", "error", err)
			continue
		}

		pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := sink(pushCtx, msg.Value); err != nil {
			logger.Warn("notification sink failed", "component", "worker", "offset", msg.Offset, "error", err)
		}
		cancel()
	}
}
