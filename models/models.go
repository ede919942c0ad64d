package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Transaction action types scored by the engine. Other actions are
// counted but carry no sub-score.
const (
	ActionAddLiquidity    = "add_liquidity"
	ActionRemoveLiquidity = "remove_liquidity"
	ActionSwap            = "swap"
)

// ProtocolTypeDexes is the protocol bucket the scoring engine consumes.
const ProtocolTypeDexes = "dexes"

// UnknownWallet is reported on failure envelopes when the inbound
// message carries no usable wallet address.
const UnknownWallet = "N/A"

// Transaction represents a single on-chain action
type Transaction struct {
	Action       string                 `json:"action" validate:"required"`
	Timestamp    int64                  `json:"timestamp" validate:"gte=0"`
	Caller       string                 `json:"caller,omitempty"`
	Protocol     string                 `json:"protocol,omitempty"`
	PoolID       string                 `json:"poolId,omitempty"`
	PoolName     string                 `json:"poolName,omitempty"`
	TokenIn      map[string]interface{} `json:"tokenIn,omitempty"`
	TokenOut     map[string]interface{} `json:"tokenOut,omitempty"`
	TokenAddress string                 `json:"token_address,omitempty"`
	Amount       *decimal.Decimal       `json:"amount,omitempty"`
	BlockNumber  *int64                 `json:"block_number,omitempty"`
}

// ProtocolData groups the transactions of one protocol family
type ProtocolData struct {
	ProtocolType string        `json:"protocolType" validate:"required"`
	Transactions []Transaction `json:"transactions" validate:"dive"`
}

// WalletTransactionMessage is the incoming Kafka message payload
type WalletTransactionMessage struct {
	WalletAddress string         `json:"wallet_address" validate:"required"`
	Data          []ProtocolData `json:"data" validate:"dive"`
}

// ScoreFeatures holds the feature set produced by the scoring engine
type ScoreFeatures struct {
	ActiveDays            int      `json:"active_days"`
	LPScore               float64  `json:"lp_score"`
	SwapScore             float64  `json:"swap_score"`
	TotalTransactionCount int      `json:"total_transaction_count"`
	UserTags              []string `json:"user_tags"`
}

// ScoreResult is the scoring engine output for one wallet message
type ScoreResult struct {
	FinalScore float64       `json:"final_score"`
	Features   ScoreFeatures `json:"features"`
}

// CategoryScore is one scored protocol category in the success output
type CategoryScore struct {
	Category         string        `json:"category"`
	Score            float64       `json:"score"`
	TransactionCount int           `json:"transaction_count"`
	Features         ScoreFeatures `json:"features"`
}

// WalletScoreSuccess is the success output message.
// Zscore carries 18 decimal digits for downstream numeric compatibility.
type WalletScoreSuccess struct {
	WalletAddress string          `json:"wallet_address"`
	Zscore        string          `json:"zscore"`
	Timestamp     int64           `json:"timestamp"`
	Categories    []CategoryScore `json:"categories"`
}

// WalletScoreFailure is the failure output message
type WalletScoreFailure struct {
	WalletAddress string `json:"wallet_address"`
	Timestamp     int64  `json:"timestamp"`
	Error         string `json:"error"`
}

var validate = validator.New()

// ParseWalletTransactionMessage decodes and validates an inbound message payload
func ParseWalletTransactionMessage(data []byte) (*WalletTransactionMessage, error) {
	var msg WalletTransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message JSON: %w", err)
	}
	if err := validate.Struct(&msg); err != nil {
		return nil, fmt.Errorf("message validation failed: %w", err)
	}
	return &msg, nil
}

// WalletAddressOf extracts the wallet address from a raw payload without
// full validation, for failure envelopes on malformed messages.
func WalletAddressOf(data []byte) string {
	var probe struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.WalletAddress == "" {
		return UnknownWallet
	}
	return probe.WalletAddress
}
