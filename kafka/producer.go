package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/logging"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/models"
)

// Producer publishes score envelopes to the success and failure topics
type Producer struct {
	successWriter *kafka.Writer
	failureWriter *kafka.Writer
	logger        *logging.Logger
}

// NewProducer creates topic-bound writers for both output topics
func NewProducer(brokers []string, successTopic, failureTopic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if successTopic == "" || failureTopic == "" {
		return nil, fmt.Errorf("output topics cannot be empty")
	}

	logger := logging.NewLogger("scoring-service", "kafka-producer")

	return &Producer{
		successWriter: newWriter(brokers, successTopic),
		failureWriter: newWriter(brokers, failureTopic),
		logger:        logger,
	}, nil
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           100 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// PublishSuccess sends a success envelope, keyed by wallet address
func (p *Producer) PublishSuccess(ctx context.Context, envelope *models.WalletScoreSuccess) error {
	if err := p.publish(ctx, p.successWriter, envelope.WalletAddress, envelope); err != nil {
		return err
	}
	p.logger.ScorePublished(envelope.WalletAddress, p.successWriter.Topic)
	return nil
}

// PublishFailure sends a failure envelope, keyed by wallet address
func (p *Producer) PublishFailure(ctx context.Context, envelope *models.WalletScoreFailure) error {
	if err := p.publish(ctx, p.failureWriter, envelope.WalletAddress, envelope); err != nil {
		return err
	}
	p.logger.ScorePublished(envelope.WalletAddress, p.failureWriter.Topic)
	return nil
}

func (p *Producer) publish(ctx context.Context, writer *kafka.Writer, key string, envelope interface{}) error {
	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write to %s: %w", writer.Topic, err)
	}
	return nil
}

// Close closes both underlying Kafka writers
func (p *Producer) Close() error {
	var firstErr error
	if err := p.successWriter.Close(); err != nil {
		firstErr = err
	}
	if err := p.failureWriter.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
