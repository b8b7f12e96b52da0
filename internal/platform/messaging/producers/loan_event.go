package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/fundflow-lending-core/internal/config"
)

type LoanEventMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new loan event producer and ensures topic exists
func NewLoanEventMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LoanEventMessageProducer, error) {
	if cfg.LoanEventTopic == "" {
		return nil, fmt.Errorf("kafka loan event topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for loan event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.LoanEventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure loan event topic %s exists: %w", cfg.LoanEventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.LoanEventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.LoanEventTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.LoanEventTopic, "count", len(messages))
			}
		},
	}

	return &LoanEventMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.LoanEventTopic,
	}, nil
}

func (p *LoanEventMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for loan event producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message via loan event producer",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s via loan event producer: %w", p.topic, err)
	}

	p.logger.Debug("Published message via loan event producer",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *LoanEventMessageProducer) Close() error {
	p.logger.Info("Closing loan event Kafka message producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close loan event kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
