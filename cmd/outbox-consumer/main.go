package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/infra"
)

// Downstream consumer for the wallet event stream. Reads the published
// Kafka topics and logs each event; real consumers (CRM, analytics, RG
// monitoring) hang off the same topics.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.KafkaEnabled {
		return fmt.Errorf("KAFKA_ENABLED must be true for the consumer")
	}

	topics := []string{
		string(domain.EventTransactionPosted),
		string(domain.EventGrantCreated),
		string(domain.EventGrantCompleted),
		string(domain.EventGrantCancelled),
	}

	var wg sync.WaitGroup
	for _, topic := range topics {
		consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, topic, "wallet-events", cfg.KafkaEnabled, logger)
		wg.Add(1)
		go func(topic string, c *infra.KafkaConsumer) {
			defer wg.Done()
			defer c.Close()
			consume(ctx, topic, c, logger)
		}(topic, consumer)
	}

	logger.Info("outbox consumer started", "topics", topics, "brokers", cfg.KafkaBrokers)
	wg.Wait()
	logger.Info("outbox consumer stopped")
	return nil
}

func consume(ctx context.Context, topic string, c *infra.KafkaConsumer, logger *slog.Logger) {
	for {
		msg, err := c.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("read message", "topic", topic, "error", err)
			continue
		}

		var envelope struct {
			EventID       string          `json:"event_id"`
			AggregateType string          `json:"aggregate_type"`
			AggregateID   string          `json:"aggregate_id"`
			EventType     string          `json:"event_type"`
			Payload       json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			logger.Error("decode event", "topic", topic, "error", err)
			continue
		}

		logger.Info("wallet event",
			"topic", topic,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"aggregate_type", envelope.AggregateType,
			"aggregate_id", envelope.AggregateID,
		)
	}
}
