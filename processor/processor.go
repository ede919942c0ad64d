package processor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/config"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/logging"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/models"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/scoring"
	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/stats"
)

// State represents the processor lifecycle state
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateReconnecting
	StateStopping
	StateStopped
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateReconnecting:
		return "reconnecting"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MessageSource supplies inbound wallet transaction messages
type MessageSource interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// ResultPublisher publishes score envelopes to the output channels
type ResultPublisher interface {
	PublishSuccess(ctx context.Context, envelope *models.WalletScoreSuccess) error
	PublishFailure(ctx context.Context, envelope *models.WalletScoreFailure) error
}

// ScoreCalculator turns a wallet message into a score result
type ScoreCalculator interface {
	Calculate(msg *models.WalletTransactionMessage) (*models.ScoreResult, error)
}

// zscoreDigits is the fixed decimal precision of the published score
const zscoreDigits = 18

// Processor drives the consume -> validate -> score -> publish cycle.
// One message is processed at a time, in delivery order; per-message
// failures publish a failure envelope and never stop the loop.
type Processor struct {
	consumer  MessageSource
	publisher ResultPublisher
	tracker   *stats.Tracker
	engine    ScoreCalculator
	logger    *logging.Logger

	noDexPolicy     config.NoDexDataPolicy
	backoffStrategy config.BackoffStrategy
	backoffInterval time.Duration
	backoffMax      time.Duration

	state atomic.Int32
	now   func() time.Time
}

// New creates a processor wired to the given collaborators
func New(consumer MessageSource, publisher ResultPublisher, tracker *stats.Tracker, cfg config.Config) *Processor {
	p := &Processor{
		consumer:  consumer,
		publisher: publisher,
		tracker:   tracker,
		engine:    scoring.NewEngine(),
		logger:    logging.NewLogger("scoring-service", "processor"),

		noDexPolicy:     cfg.NoDexDataPolicy,
		backoffStrategy: cfg.BackoffStrategy,
		backoffInterval: cfg.BackoffInterval,
		backoffMax:      cfg.BackoffMax,

		now: time.Now,
	}
	p.state.Store(int32(StateStarting))
	return p
}

// State returns the current lifecycle state
func (p *Processor) State() State {
	return State(p.state.Load())
}

func (p *Processor) setState(s State) {
	if p.state.Swap(int32(s)) != int32(s) {
		p.logger.SystemEvent("state_changed", map[string]interface{}{"state": s.String()})
	}
}

// Run consumes messages until the context is cancelled. Transport
// failures trigger backoff and reconnection; they never terminate the
// loop. Messages already fully processed are not discarded on shutdown.
func (p *Processor) Run(ctx context.Context) {
	p.setState(StateRunning)
	attempt := 0

	for {
		msg, err := p.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				p.setState(StateStopping)
				p.setState(StateStopped)
				return
			}

			attempt++
			p.setState(StateReconnecting)
			wait := p.backoffDelay(attempt)
			p.logger.WithError(err).Warn("Transport failure, retrying", map[string]interface{}{
				"attempt":  attempt,
				"backoff":  wait.String(),
				"strategy": string(p.backoffStrategy),
			})

			select {
			case <-ctx.Done():
				p.setState(StateStopping)
				p.setState(StateStopped)
				return
			case <-time.After(wait):
			}
			continue
		}

		attempt = 0
		p.setState(StateRunning)
		p.handleMessage(ctx, msg.Value)
	}
}

// backoffDelay computes the wait before a reconnection attempt
func (p *Processor) backoffDelay(attempt int) time.Duration {
	if p.backoffStrategy == config.BackoffFixed {
		return p.backoffInterval
	}

	shift := attempt - 1
	if shift > 16 {
		shift = 16
	}
	wait := p.backoffInterval << uint(shift)
	if wait <= 0 || wait > p.backoffMax {
		wait = p.backoffMax
	}
	return wait
}

// handleMessage processes a single inbound payload. Stats are updated
// exactly once per message; panics are contained here.
func (p *Processor) handleMessage(ctx context.Context, payload []byte) {
	start := p.now()
	wallet := models.WalletAddressOf(payload)

	recorded := false
	record := func(success bool) {
		if recorded {
			return
		}
		recorded = true
		if success {
			p.tracker.RecordSuccess(p.now().Unix())
		} else {
			p.tracker.RecordFailure(p.now().Unix())
		}
		p.logger.MessageProcessed(wallet, p.now().Sub(start), success)
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.PanicRecovery(wallet, r, string(debug.Stack()))
			p.publishFailure(ctx, wallet, fmt.Errorf("unexpected processing error: %v", r))
			record(false)
		}
	}()

	msg, err := models.ParseWalletTransactionMessage(payload)
	if err != nil {
		p.publishFailure(ctx, wallet, err)
		record(false)
		return
	}
	wallet = msg.WalletAddress

	result, err := p.engine.Calculate(msg)
	if err != nil {
		if errors.Is(err, scoring.ErrNoScorableData) {
			p.handleNoDexData(ctx, wallet, record)
			return
		}
		p.publishFailure(ctx, wallet, err)
		record(false)
		return
	}

	envelope := p.buildSuccessEnvelope(wallet, result)
	if err := p.publisher.PublishSuccess(ctx, envelope); err != nil {
		p.logger.WithWallet(wallet).WithError(err).Error("Failed to publish success envelope")
		record(false)
		return
	}
	record(true)
}

// handleNoDexData applies the configured policy for messages without a
// dexes protocol block.
func (p *Processor) handleNoDexData(ctx context.Context, wallet string, record func(bool)) {
	if p.noDexPolicy == config.NoDexFailure {
		p.publishFailure(ctx, wallet, scoring.ErrNoScorableData)
		record(false)
		return
	}

	envelope := &models.WalletScoreSuccess{
		WalletAddress: wallet,
		Zscore:        decimal.Zero.StringFixed(zscoreDigits),
		Timestamp:     p.now().Unix(),
		Categories:    []models.CategoryScore{},
	}
	if err := p.publisher.PublishSuccess(ctx, envelope); err != nil {
		p.logger.WithWallet(wallet).WithError(err).Error("Failed to publish empty-score envelope")
		record(false)
		return
	}
	record(true)
}

func (p *Processor) buildSuccessEnvelope(wallet string, result *models.ScoreResult) *models.WalletScoreSuccess {
	return &models.WalletScoreSuccess{
		WalletAddress: wallet,
		Zscore:        decimal.NewFromFloat(result.FinalScore).StringFixed(zscoreDigits),
		Timestamp:     p.now().Unix(),
		Categories: []models.CategoryScore{
			{
				Category:         models.ProtocolTypeDexes,
				Score:            result.FinalScore,
				TransactionCount: result.Features.TotalTransactionCount,
				Features:         result.Features,
			},
		},
	}
}

func (p *Processor) publishFailure(ctx context.Context, wallet string, cause error) {
	envelope := &models.WalletScoreFailure{
		WalletAddress: wallet,
		Timestamp:     p.now().Unix(),
		Error:         cause.Error(),
	}
	if err := p.publisher.PublishFailure(ctx, envelope); err != nil {
		p.logger.WithWallet(wallet).WithError(err).Error("Failed to publish failure envelope")
	}
}
