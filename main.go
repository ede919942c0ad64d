package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/config"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/handlers"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/kafka"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/logging"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/processor"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/stats"
)

func main() {
	logger := logging.NewLogger("scoring-service", "main")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	logger.SystemEvent("config_loaded", map[string]interface{}{
		"input_topic":   cfg.KafkaInputTopic,
		"success_topic": cfg.KafkaSuccessTopic,
		"failure_topic": cfg.KafkaFailureTopic,
	})

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaInputTopic, cfg.KafkaConsumerGroup)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka consumer")
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaSuccessTopic, cfg.KafkaFailureTopic)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}

	tracker := stats.NewTracker()
	proc := processor.New(consumer, producer, tracker, cfg)

	ctx, cancel := context.WithCancel(context.Background())

	processorDone := make(chan struct{})
	go func() {
		defer close(processorDone)
		proc.Run(ctx)
	}()

	srv := handlers.NewServer(cfg.HTTPPort, tracker, func() string {
		return proc.State().String()
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
		}
	}()

	logger.SystemEvent("service_started", map[string]interface{}{
		"http_port": cfg.HTTPPort,
	})

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.SystemEvent("shutdown_signal_received", nil)

	// Stop pulling new messages; in-flight work finishes before Run returns
	cancel()
	select {
	case <-processorDone:
	case <-time.After(10 * time.Second):
		logger.Warn("Processor shutdown timed out")
	}

	if err := consumer.Close(); err != nil {
		logger.WithError(err).Error("Error closing Kafka consumer")
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Error("Error closing Kafka producer")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error shutting down HTTP server")
	}

	logger.SystemEvent("service_stopped", nil)
}
