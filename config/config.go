package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// BackoffStrategy selects how the processor waits before reconnecting
// after a transport failure.
type BackoffStrategy string

const (
	BackoffFixed       BackoffStrategy = "fixed"
	BackoffExponential BackoffStrategy = "exponential"
)

// NoDexDataPolicy selects what the processor publishes when a message
// carries no dexes protocol block at all.
type NoDexDataPolicy string

const (
	// NoDexSuccessEmpty publishes a success envelope with an empty
	// categories list.
	NoDexSuccessEmpty NoDexDataPolicy = "success_empty"
	// NoDexFailure publishes a failure envelope with a "no dex data" error.
	NoDexFailure NoDexDataPolicy = "failure"
)

// Config holds all configuration values for the scoring service
type Config struct {
	KafkaBrokers       []string
	KafkaInputTopic    string
	KafkaSuccessTopic  string
	KafkaFailureTopic  string
	KafkaConsumerGroup string

	HTTPPort int

	BackoffStrategy BackoffStrategy
	BackoffInterval time.Duration
	BackoffMax      time.Duration

	NoDexDataPolicy NoDexDataPolicy
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	httpPort, err := getEnvInt("HTTP_PORT", 8080)
	if err != nil {
		return Config{}, err
	}

	backoffSeconds, err := getEnvInt("BACKOFF_SECONDS", 5)
	if err != nil {
		return Config{}, err
	}

	backoffMaxSeconds, err := getEnvInt("BACKOFF_MAX_SECONDS", 60)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		KafkaBrokers:       getEnvCSV("KAFKA_BROKERS", "localhost:9092"),
		KafkaInputTopic:    getEnvString("KAFKA_INPUT_TOPIC", "wallet-transactions"),
		KafkaSuccessTopic:  getEnvString("KAFKA_SUCCESS_TOPIC", "wallet-scores-success"),
		KafkaFailureTopic:  getEnvString("KAFKA_FAILURE_TOPIC", "wallet-scores-failure"),
		KafkaConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "reputation-scorer-group"),

		HTTPPort: httpPort,

		BackoffStrategy: BackoffStrategy(getEnvString("BACKOFF_STRATEGY", string(BackoffFixed))),
		BackoffInterval: time.Duration(backoffSeconds) * time.Second,
		BackoffMax:      time.Duration(backoffMaxSeconds) * time.Second,

		NoDexDataPolicy: NoDexDataPolicy(getEnvString("NO_DEX_DATA_POLICY", string(NoDexSuccessEmpty))),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks configuration values for consistency
func (c Config) Validate() error {
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS cannot be empty")
	}
	if c.KafkaInputTopic == "" || c.KafkaSuccessTopic == "" || c.KafkaFailureTopic == "" {
		return fmt.Errorf("kafka topics cannot be empty")
	}
	if c.KafkaConsumerGroup == "" {
		return fmt.Errorf("KAFKA_CONSUMER_GROUP cannot be empty")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}

	switch c.BackoffStrategy {
	case BackoffFixed, BackoffExponential:
	default:
		return fmt.Errorf("invalid BACKOFF_STRATEGY: %q (must be %q or %q)",
			c.BackoffStrategy, BackoffFixed, BackoffExponential)
	}
	if c.BackoffInterval <= 0 {
		return fmt.Errorf("BACKOFF_SECONDS must be positive")
	}
	if c.BackoffMax < c.BackoffInterval {
		return fmt.Errorf("BACKOFF_MAX_SECONDS must be >= BACKOFF_SECONDS")
	}

	switch c.NoDexDataPolicy {
	case NoDexSuccessEmpty, NoDexFailure:
	default:
		return fmt.Errorf("invalid NO_DEX_DATA_POLICY: %q (must be %q or %q)",
			c.NoDexDataPolicy, NoDexSuccessEmpty, NoDexFailure)
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getEnvCSV(key, defaultValue string) []string {
	raw := getEnvString(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
