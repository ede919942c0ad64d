package scoring

import (
	"encoding/json"
	"testing"

	"github.com/Jhsoul69/DeFi-Reputation-Scoring-Server/models"
)

const dayStart = int64(1700006400) // UTC midnight

func makeTxs(action string, count int, firstDay int) []models.Transaction {
	txs := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		txs = append(txs, models.Transaction{
			Action:    action,
			Timestamp: dayStart + int64(firstDay+i)*86400,
		})
	}
	return txs
}

func dexMessage(txs []models.Transaction) *models.WalletTransactionMessage {
	return &models.WalletTransactionMessage{
		WalletAddress: "0xwallet",
		Data: []models.ProtocolData{
			{ProtocolType: models.ProtocolTypeDexes, Transactions: txs},
		},
	}
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func TestCalculateMixedActivity(t *testing.T) {
	// 6 swaps on days 0-5, 4 liquidity adds on days 5-8: ten
	// transactions across nine distinct days.
	txs := append(makeTxs(models.ActionSwap, 6, 0), makeTxs(models.ActionAddLiquidity, 4, 5)...)

	result, err := NewEngine().Calculate(dexMessage(txs))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.Features.LPScore != 400 {
		t.Errorf("Expected lp_score 400, got %v", result.Features.LPScore)
	}
	if result.Features.SwapScore != 600 {
		t.Errorf("Expected swap_score 600, got %v", result.Features.SwapScore)
	}
	if result.FinalScore != 480 {
		t.Errorf("Expected final_score 480, got %v", result.FinalScore)
	}
	if result.Features.ActiveDays != 9 {
		t.Errorf("Expected 9 active days, got %d", result.Features.ActiveDays)
	}
	if result.Features.TotalTransactionCount != 10 {
		t.Errorf("Expected 10 total transactions, got %d", result.Features.TotalTransactionCount)
	}
	if !hasTag(result.Features.UserTags, TagConsistentLP) || !hasTag(result.Features.UserTags, TagConsistentTrader) {
		t.Errorf("Expected consistent_lp and consistent_trader tags, got %v", result.Features.UserTags)
	}
	if hasTag(result.Features.UserTags, TagInactive) {
		t.Errorf("Active wallet must not carry inactive tag, got %v", result.Features.UserTags)
	}
}

func TestCalculateNoDexData(t *testing.T) {
	msg := &models.WalletTransactionMessage{
		WalletAddress: "0xwallet",
		Data: []models.ProtocolData{
			{ProtocolType: "lending", Transactions: makeTxs("borrow", 3, 0)},
		},
	}

	result, err := NewEngine().Calculate(msg)
	if err != ErrNoScorableData {
		t.Fatalf("Expected ErrNoScorableData, got result=%v err=%v", result, err)
	}
}

func TestCalculateEmptyTransactions(t *testing.T) {
	result, err := NewEngine().Calculate(dexMessage(nil))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.FinalScore != 0 {
		t.Errorf("Expected final_score 0, got %v", result.FinalScore)
	}
	if result.Features.ActiveDays != 0 || result.Features.TotalTransactionCount != 0 {
		t.Errorf("Expected zero counts, got %+v", result.Features)
	}
	if len(result.Features.UserTags) != 1 || result.Features.UserTags[0] != TagInactive {
		t.Errorf("Expected user_tags [inactive], got %v", result.Features.UserTags)
	}
}

func TestCalculateSingleSubScore(t *testing.T) {
	t.Run("lp only", func(t *testing.T) {
		result, err := NewEngine().Calculate(dexMessage(makeTxs(models.ActionRemoveLiquidity, 3, 0)))
		if err != nil {
			t.Fatalf("Calculate failed: %v", err)
		}
		if result.FinalScore != result.Features.LPScore || result.FinalScore != 300 {
			t.Errorf("Expected final_score == lp_score == 300, got final=%v lp=%v",
				result.FinalScore, result.Features.LPScore)
		}
		if hasTag(result.Features.UserTags, TagConsistentTrader) {
			t.Errorf("LP-only wallet must not be tagged consistent_trader, got %v", result.Features.UserTags)
		}
	})

	t.Run("swap only", func(t *testing.T) {
		result, err := NewEngine().Calculate(dexMessage(makeTxs(models.ActionSwap, 2, 0)))
		if err != nil {
			t.Fatalf("Calculate failed: %v", err)
		}
		if result.FinalScore != result.Features.SwapScore || result.FinalScore != 200 {
			t.Errorf("Expected final_score == swap_score == 200, got final=%v swap=%v",
				result.FinalScore, result.Features.SwapScore)
		}
	})
}

func TestCalculateUnknownActionsCountedOnly(t *testing.T) {
	txs := append(makeTxs("stake", 5, 0), makeTxs(models.ActionSwap, 1, 5)...)

	result, err := NewEngine().Calculate(dexMessage(txs))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.Features.LPScore != 0 {
		t.Errorf("Expected lp_score 0, got %v", result.Features.LPScore)
	}
	if result.Features.SwapScore != 100 {
		t.Errorf("Expected swap_score 100, got %v", result.Features.SwapScore)
	}
	if result.Features.TotalTransactionCount != 6 {
		t.Errorf("Expected 6 total transactions, got %d", result.Features.TotalTransactionCount)
	}
	// Active days span all DEX transactions, not just the scored subsets
	if result.Features.ActiveDays != 6 {
		t.Errorf("Expected 6 active days, got %d", result.Features.ActiveDays)
	}
}

func TestCalculateOnlyUnknownActionsIsInactive(t *testing.T) {
	result, err := NewEngine().Calculate(dexMessage(makeTxs("stake", 3, 0)))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.FinalScore != 0 {
		t.Errorf("Expected final_score 0, got %v", result.FinalScore)
	}
	if !hasTag(result.Features.UserTags, TagInactive) {
		t.Errorf("Expected inactive tag, got %v", result.Features.UserTags)
	}
	if result.Features.TotalTransactionCount != 3 {
		t.Errorf("Expected 3 total transactions, got %d", result.Features.TotalTransactionCount)
	}
}

func TestCalculateActiveDaysDistinctDates(t *testing.T) {
	// Three transactions inside the same UTC day, one the next day
	txs := []models.Transaction{
		{Action: models.ActionSwap, Timestamp: dayStart},
		{Action: models.ActionSwap, Timestamp: dayStart + 3600},
		{Action: models.ActionSwap, Timestamp: dayStart + 86399},
		{Action: models.ActionSwap, Timestamp: dayStart + 86400},
	}

	result, err := NewEngine().Calculate(dexMessage(txs))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.Features.ActiveDays != 2 {
		t.Errorf("Expected 2 active days, got %d", result.Features.ActiveDays)
	}
}

func TestCalculateInvariants(t *testing.T) {
	inputs := [][]models.Transaction{
		nil,
		makeTxs(models.ActionSwap, 7, 0),
		makeTxs(models.ActionAddLiquidity, 1, 0),
		append(makeTxs(models.ActionSwap, 2, 0), makeTxs(models.ActionAddLiquidity, 2, 0)...),
		makeTxs("unknown", 4, 0),
	}

	engine := NewEngine()
	for i, txs := range inputs {
		result, err := engine.Calculate(dexMessage(txs))
		if err != nil {
			t.Fatalf("input %d: Calculate failed: %v", i, err)
		}

		if result.FinalScore < 0 || result.Features.LPScore < 0 || result.Features.SwapScore < 0 {
			t.Errorf("input %d: scores must be non-negative, got %+v", i, result)
		}

		inactive := hasTag(result.Features.UserTags, TagInactive)
		if inactive != (result.FinalScore == 0) {
			t.Errorf("input %d: inactive tag must appear exactly when final_score is 0, got score=%v tags=%v",
				i, result.FinalScore, result.Features.UserTags)
		}

		seen := make(map[string]bool)
		for _, tag := range result.Features.UserTags {
			if seen[tag] {
				t.Errorf("input %d: duplicate tag %s in %v", i, tag, result.Features.UserTags)
			}
			seen[tag] = true
		}
	}
}

func TestCalculateDeterminism(t *testing.T) {
	msg := dexMessage(append(makeTxs(models.ActionSwap, 6, 0), makeTxs(models.ActionAddLiquidity, 4, 5)...))
	engine := NewEngine()

	first, err := engine.Calculate(msg)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	second, err := engine.Calculate(msg)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Errorf("Scoring is not deterministic:\n%s\n%s", firstJSON, secondJSON)
	}
}
