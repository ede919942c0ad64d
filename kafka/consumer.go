package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/logging"
)

// Consumer wraps a Kafka reader for the wallet transactions topic
type Consumer struct {
	reader *kafka.Reader
	topic  string
	logger *logging.Logger
}

// NewConsumer creates a Kafka consumer bound to the input topic
func NewConsumer(brokers []string, topic, consumerGroup string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if consumerGroup == "" {
		return nil, fmt.Errorf("consumer group cannot be empty")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        consumerGroup,
		MinBytes:       1,    // Process immediately
		MaxBytes:       10e6, // Maximum bytes to read (10MB)
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	logger := logging.NewLogger("scoring-service", "kafka-consumer")
	logger.KafkaEvent("consumer_initialized", map[string]interface{}{
		"brokers": brokers,
		"topic":   topic,
		"group":   consumerGroup,
	})

	return &Consumer{
		reader: reader,
		topic:  topic,
		logger: logger,
	}, nil
}

// ReadMessage blocks until the next message arrives, the context is
// cancelled, or the transport fails.
func (c *Consumer) ReadMessage(ctx context.Context) (kafka.Message, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka read on %s: %w", c.topic, err)
	}
	return msg, nil
}

// Close closes the underlying Kafka reader
func (c *Consumer) Close() error {
	c.logger.KafkaEvent("consumer_closing", map[string]interface{}{"topic": c.topic})
	return c.reader.Close()
}
