package scoring

import (
	"errors"

	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/models"
)

// ErrNoScorableData is returned when a wallet message carries no dexes
// protocol block. Distinct from a present-but-empty transaction list,
// which scores to zero with an inactive tag.
var ErrNoScorableData = errors.New("no dex activity data")

// User tags applied by the engine
const (
	TagConsistentLP     = "consistent_lp"
	TagConsistentTrader = "consistent_trader"
	TagInactive         = "inactive"
)

const secondsPerDay = 86400

// Engine calculates wallet reputation scores from DEX activity
type Engine struct {
	lpWeight   float64
	swapWeight float64
}

// NewEngine creates a scoring engine with the production weights
func NewEngine() *Engine {
	return &Engine{
		lpWeight:   0.6,
		swapWeight: 0.4,
	}
}

// Calculate computes the reputation score for one wallet message.
// The final score weights the LP and swap sub-scores when both are
// present; a single active sub-score passes through unweighted.
func (e *Engine) Calculate(msg *models.WalletTransactionMessage) (*models.ScoreResult, error) {
	dex := findDexData(msg.Data)
	if dex == nil {
		return nil, ErrNoScorableData
	}

	if len(dex.Transactions) == 0 {
		return &models.ScoreResult{
			FinalScore: 0,
			Features: models.ScoreFeatures{
				UserTags: []string{TagInactive},
			},
		}, nil
	}

	var lpCount, swapCount int
	for _, tx := range dex.Transactions {
		switch tx.Action {
		case models.ActionAddLiquidity, models.ActionRemoveLiquidity:
			lpCount++
		case models.ActionSwap:
			swapCount++
		}
	}

	tags := make([]string, 0, 2)
	if lpCount > 0 {
		tags = append(tags, TagConsistentLP)
	}
	if swapCount > 0 {
		tags = append(tags, TagConsistentTrader)
	}

	lpScore := float64(lpCount) * 100
	swapScore := float64(swapCount) * 100

	var finalScore float64
	switch {
	case lpScore > 0 && swapScore > 0:
		finalScore = lpScore*e.lpWeight + swapScore*e.swapWeight
	case lpScore > 0:
		finalScore = lpScore
	case swapScore > 0:
		finalScore = swapScore
	default:
		finalScore = 0
		tags = appendUnique(tags, TagInactive)
	}

	return &models.ScoreResult{
		FinalScore: finalScore,
		Features: models.ScoreFeatures{
			ActiveDays:            activeDays(dex.Transactions),
			LPScore:               lpScore,
			SwapScore:             swapScore,
			TotalTransactionCount: len(dex.Transactions),
			UserTags:              tags,
		},
	}, nil
}

// findDexData locates the dexes protocol block, if any
func findDexData(data []models.ProtocolData) *models.ProtocolData {
	for i := range data {
		if data[i].ProtocolType == models.ProtocolTypeDexes {
			return &data[i]
		}
	}
	return nil
}

// activeDays counts distinct UTC calendar dates across the transactions
func activeDays(txs []models.Transaction) int {
	days := make(map[int64]struct{}, len(txs))
	for _, tx := range txs {
		days[tx.Timestamp/secondsPerDay] = struct{}{}
	}
	return len(days)
}

func appendUnique(tags []string, tag string) []string {
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}
