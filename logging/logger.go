package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp     time.Time              `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	Service       string                 `json:"service"`
	Component     string                 `json:"component,omitempty"`
	WalletAddress string                 `json:"wallet_address,omitempty"`
	Topic         string                 `json:"topic,omitempty"`
	Operation     string                 `json:"operation,omitempty"`
	Duration      string                 `json:"duration,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
	Caller        string                 `json:"caller,omitempty"`
}

// Logger provides structured logging functionality
type Logger struct {
	level     LogLevel
	service   string
	component string
	output    *log.Logger
	context   map[string]interface{}
}

// NewLogger creates a new structured logger
func NewLogger(service, component string) *Logger {
	return &Logger{
		level:     getLogLevelFromEnv(),
		service:   service,
		component: component,
		output:    log.New(os.Stdout, "", 0),
		context:   make(map[string]interface{}),
	}
}

// WithContext returns a new logger with additional context fields
func (l *Logger) WithContext(fields map[string]interface{}) *Logger {
	newLogger := &Logger{
		level:     l.level,
		service:   l.service,
		component: l.component,
		output:    l.output,
		context:   make(map[string]interface{}),
	}

	for k, v := range l.context {
		newLogger.context[k] = v
	}
	for k, v := range fields {
		newLogger.context[k] = v
	}

	return newLogger
}

// WithWallet returns a new logger with wallet address context
func (l *Logger) WithWallet(walletAddress string) *Logger {
	return l.WithContext(map[string]interface{}{
		"wallet_address": walletAddress,
	})
}

// WithTopic returns a new logger with Kafka topic context
func (l *Logger) WithTopic(topic string) *Logger {
	return l.WithContext(map[string]interface{}{
		"topic": topic,
	})
}

// WithOperation returns a new logger with operation context
func (l *Logger) WithOperation(operation string) *Logger {
	return l.WithContext(map[string]interface{}{
		"operation": operation,
	})
}

// WithError returns a new logger with error context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithContext(map[string]interface{}{
		"error": err.Error(),
	})
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...map[string]interface{}) {
	l.log(DEBUG, message, fields...)
}

// Info logs an info message
func (l *Logger) Info(message string, fields ...map[string]interface{}) {
	l.log(INFO, message, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...map[string]interface{}) {
	l.log(WARN, message, fields...)
}

// Error logs an error message
func (l *Logger) Error(message string, fields ...map[string]interface{}) {
	l.log(ERROR, message, fields...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string, fields ...map[string]interface{}) {
	l.log(FATAL, message, fields...)
	os.Exit(1)
}

// MessageProcessed logs the outcome of one processed wallet message
func (l *Logger) MessageProcessed(walletAddress string, duration time.Duration, success bool) {
	fields := map[string]interface{}{
		"wallet_address": walletAddress,
		"duration":       duration.String(),
		"success":        success,
	}

	if success {
		l.Info("Wallet message processed", fields)
	} else {
		l.Error("Wallet message processing failed", fields)
	}
}

// ScorePublished logs a published score envelope
func (l *Logger) ScorePublished(walletAddress, topic string) {
	l.Info("Score published", map[string]interface{}{
		"wallet_address": walletAddress,
		"topic":          topic,
	})
}

// KafkaEvent logs Kafka transport events (connect, reconnect, close)
func (l *Logger) KafkaEvent(event string, details map[string]interface{}) {
	fields := map[string]interface{}{
		"event": event,
	}
	for k, v := range details {
		fields[k] = v
	}
	l.Info("Kafka event", fields)
}

// PanicRecovery logs panic recovery events
func (l *Logger) PanicRecovery(walletAddress string, panicValue interface{}, stackTrace string) {
	l.Error("Panic recovered", map[string]interface{}{
		"wallet_address": walletAddress,
		"panic_value":    fmt.Sprintf("%v", panicValue),
		"stack_trace":    stackTrace,
	})
}

// SystemEvent logs system lifecycle events
func (l *Logger) SystemEvent(event string, details map[string]interface{}) {
	fields := map[string]interface{}{
		"event": event,
	}
	for k, v := range details {
		fields[k] = v
	}
	l.Info("System event", fields)
}

// log writes a structured log entry
func (l *Logger) log(level LogLevel, message string, fields ...map[string]interface{}) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   message,
		Service:   l.service,
		Component: l.component,
		Fields:    make(map[string]interface{}),
	}

	// Add caller information for ERROR and FATAL levels
	if level >= ERROR {
		if pc, file, line, ok := runtime.Caller(2); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				entry.Caller = fmt.Sprintf("%s:%d %s", file, line, fn.Name())
			}
		}
	}

	merge := func(k string, v interface{}) {
		switch k {
		case "wallet_address":
			if addr, ok := v.(string); ok {
				entry.WalletAddress = addr
				return
			}
		case "topic":
			if topic, ok := v.(string); ok {
				entry.Topic = topic
				return
			}
		case "operation":
			if op, ok := v.(string); ok {
				entry.Operation = op
				return
			}
		case "duration":
			if dur, ok := v.(string); ok {
				entry.Duration = dur
				return
			}
		case "error":
			if errStr, ok := v.(string); ok {
				entry.Error = errStr
				return
			}
		}
		entry.Fields[k] = v
	}

	for k, v := range l.context {
		merge(k, v)
	}
	for _, fieldMap := range fields {
		for k, v := range fieldMap {
			merge(k, v)
		}
	}

	if len(entry.Fields) == 0 {
		entry.Fields = nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		l.output.Printf("Failed to marshal log entry: %v, message: %s", err, message)
		return
	}

	l.output.Println(string(data))
}

// getLogLevelFromEnv gets log level from environment variable
func getLogLevelFromEnv() LogLevel {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}
